package classpatch

import (
	"encoding/binary"
	"math"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
)

// Rule names as they appear in a Report.
const (
	RuleServerMeansClient = "server-means-client"
	RuleSkipExit          = "skip-exit"
	RuleSkipGui           = "skip-gui"
)

const (
	serverField   = "SERVER"
	clientField   = "CLIENT"
	exitMethod    = "exit"
	launchGui     = "launchGui"
	entryPoint    = "main"
	operandOffset = 1
)

// rule is one entry of the rewrite table. rewrite must return exactly
// ins.length bytes.
type rule struct {
	name    string
	applies func(Options) bool
	match   func(p *patcher, ins instruction) bool
	rewrite func(p *patcher, ins instruction) ([]byte, error)
}

var rules = []rule{
	{
		name:    RuleServerMeansClient,
		applies: func(o Options) bool { return o.ServerMeansClient },
		match: func(p *patcher, ins instruction) bool {
			if ins.op != opGetstatic {
				return false
			}
			ref, ok := p.class.member(p.operand(ins), tagFieldref)
			return ok && ref.name == serverField
		},
		rewrite: func(p *patcher, ins instruction) ([]byte, error) {
			ref, _ := p.class.member(p.operand(ins), tagFieldref)
			index, err := p.fieldref(ref.classIndex, clientField, ref.descriptorIndex)
			if err != nil {
				return nil, err
			}
			out := []byte{opGetstatic, 0, 0}
			binary.BigEndian.PutUint16(out[operandOffset:], index)
			return out, nil
		},
	},
	{
		name:    RuleSkipExit,
		applies: always,
		match: func(p *patcher, ins instruction) bool {
			_, ok := p.exitDiscard(ins)
			return ok
		},
		rewrite: func(p *patcher, ins instruction) ([]byte, error) {
			seq, _ := p.exitDiscard(ins)
			return padded(ins.length, seq...), nil
		},
	},
	{
		name:    RuleSkipGui,
		applies: always,
		match: func(p *patcher, ins instruction) bool {
			if ins.op != opInvokespecial {
				return false
			}
			ref, ok := p.class.member(p.operand(ins), tagMethodref, tagInterfaceMethodref)
			return ok && ref.name == launchGui
		},
		rewrite: func(p *patcher, ins instruction) ([]byte, error) {
			ref, _ := p.class.member(p.operand(ins), tagMethodref, tagInterfaceMethodref)
			seq := []byte{opReturn}
			if args, _, ok := argumentWords(ref.descriptor); ok {
				receiverAndArgs := append([]int{1}, args...)
				if pops, fits := discard(receiverAndArgs, ins.length-1); fits {
					seq = append(pops, opReturn)
				}
			}
			return padded(ins.length, seq...), nil
		},
	},
}

func always(Options) bool { return true }

// exitDiscard matches a static void "exit" call and returns the pops that
// replace it.
func (p *patcher) exitDiscard(ins instruction) ([]byte, bool) {
	if ins.op != opInvokestatic {
		return nil, false
	}
	ref, ok := p.class.member(p.operand(ins), tagMethodref, tagInterfaceMethodref)
	if !ok || ref.name != exitMethod {
		return nil, false
	}
	args, void, ok := argumentWords(ref.descriptor)
	if !ok || !void {
		return nil, false
	}
	return discard(args, ins.length)
}

// fieldref returns the pool index of a Fieldref to name on the given class
// with the given descriptor, appending the entries that do not exist yet.
func (p *patcher) fieldref(classIndex uint16, name string, descriptorIndex uint16) (uint16, error) {
	nameIndex, err := p.lookupOrAppend(constant{tag: tagUtf8, utf8: name})
	if err != nil {
		return 0, err
	}
	natIndex, err := p.lookupOrAppend(constant{tag: tagNameAndType, a: nameIndex, b: descriptorIndex})
	if err != nil {
		return 0, err
	}
	return p.lookupOrAppend(constant{tag: tagFieldref, a: classIndex, b: natIndex})
}

func (p *patcher) lookupOrAppend(c constant) (uint16, error) {
	for i, existing := range p.class.pool {
		if i > 0 && existing == c {
			return uint16(i), nil
		}
	}
	if len(p.class.pool) >= math.MaxUint16 {
		return 0, zerr.Wrap(domain.ErrClassFormat, "constant pool is full")
	}
	p.class.pool = append(p.class.pool, c)
	p.appended = append(p.appended, c)
	return uint16(len(p.class.pool) - 1), nil
}
