// Package classpatch rewrites the entry point of an installer class so that it
// runs without a user interface and without terminating the host process.
//
// Every rewrite replaces one instruction with a sequence of the same length, so
// branch offsets, exception tables and stack map frames stay valid. The only
// structural change is an append to the constant pool when a referenced field
// does not exist yet.
package classpatch

import (
	"encoding/binary"
	"slices"

	"go.trai.ch/zerr"
)

// Options controls which rules apply.
type Options struct {
	// ServerMeansClient redirects reads of the SERVER install target to CLIENT.
	ServerMeansClient bool
}

// Edit records one rewritten instruction.
type Edit struct {
	Rule   string
	Method string
	Offset int
}

// Report describes what a Patch call changed.
type Report struct {
	Edits []Edit
	// Missed lists the enabled rules that matched no instruction.
	Missed []string
}

// Applied reports whether the named rule rewrote at least one instruction.
func (r Report) Applied(name string) bool {
	return slices.ContainsFunc(r.Edits, func(e Edit) bool { return e.Rule == name })
}

type patcher struct {
	class     *classFile
	out       []byte
	appended  []constant
	codeStart int
}

// operand returns the u2 operand following ins's opcode.
func (p *patcher) operand(ins instruction) uint16 {
	if ins.length < 3 {
		return 0
	}
	at := p.codeStart + ins.pc + operandOffset
	return binary.BigEndian.Uint16(p.class.data[at:])
}

// Patch applies the rewrite rules to every method named "main" in class and
// returns the new class bytes. A rule with nothing to match is not an error; it
// is listed in the Report. class is not modified.
func Patch(class []byte, opts Options) ([]byte, Report, error) {
	cf, err := parseClass(class)
	if err != nil {
		return nil, Report{}, err
	}

	p := &patcher{class: cf, out: slices.Clone(class)}
	var report Report

	for _, m := range cf.methods {
		if m.name != entryPoint {
			continue
		}
		code := class[m.codeStart : m.codeStart+m.codeLength]
		instructions, err := decode(code)
		if err != nil {
			return nil, Report{}, zerr.With(err, "method", m.name+m.descriptor)
		}

		p.codeStart = m.codeStart
		for _, ins := range instructions {
			edit, err := p.apply(ins, opts)
			if err != nil {
				return nil, Report{}, zerr.With(err, "method", m.name+m.descriptor)
			}
			if edit != "" {
				report.Edits = append(report.Edits, Edit{Rule: edit, Method: m.name + m.descriptor, Offset: ins.pc})
			}
		}
	}

	for _, r := range rules {
		if r.applies(opts) && !report.Applied(r.name) {
			report.Missed = append(report.Missed, r.name)
		}
	}

	return p.finish(), report, nil
}

// apply rewrites ins with the first matching rule and returns its name.
func (p *patcher) apply(ins instruction, opts Options) (string, error) {
	for _, r := range rules {
		if !r.applies(opts) || !r.match(p, ins) {
			continue
		}
		replacement, err := r.rewrite(p, ins)
		if err != nil {
			return "", err
		}
		copy(p.out[p.codeStart+ins.pc:p.codeStart+ins.pc+ins.length], replacement)
		return r.name, nil
	}
	return "", nil
}

// finish splices appended constants onto the end of the pool.
func (p *patcher) finish() []byte {
	if len(p.appended) == 0 {
		return p.out
	}

	var extra []byte
	for _, c := range p.appended {
		extra = appendConstant(extra, c)
	}

	out := make([]byte, 0, len(p.out)+len(extra))
	out = append(out, p.out[:p.class.poolEnd]...)
	out = append(out, extra...)
	out = append(out, p.out[p.class.poolEnd:]...)
	binary.BigEndian.PutUint16(out[poolCountOffset:], uint16(len(p.class.pool)))
	return out
}

func appendConstant(b []byte, c constant) []byte {
	b = append(b, c.tag)
	switch c.tag {
	case tagUtf8:
		b = binary.BigEndian.AppendUint16(b, uint16(len(c.utf8)))
		b = append(b, c.utf8...)
	default:
		b = binary.BigEndian.AppendUint16(b, c.a)
		b = binary.BigEndian.AppendUint16(b, c.b)
	}
	return b
}
