package classpatch

import (
	"encoding/binary"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
)

// Opcodes the rules read or emit.
const (
	opNop           = 0x00
	opPop           = 0x57
	opPop2          = 0x58
	opReturn        = 0xb1
	opGetstatic     = 0xb2
	opInvokespecial = 0xb7
	opInvokestatic  = 0xb8
	opTableswitch   = 0xaa
	opLookupswitch  = 0xab
	opWide          = 0xc4
	opIinc          = 0x84
)

// Instruction lengths in bytes, including the opcode. Zero marks an undefined
// opcode; -1 marks a variable-length instruction.
var opLengths = func() [256]int8 {
	var l [256]int8
	set := func(from, to int, n int8) {
		for op := from; op <= to; op++ {
			l[op] = n
		}
	}
	set(0x00, 0x0f, 1) // nop .. dconst_1
	l[0x10] = 2        // bipush
	l[0x11] = 3        // sipush
	l[0x12] = 2        // ldc
	set(0x13, 0x14, 3) // ldc_w, ldc2_w
	set(0x15, 0x19, 2) // iload .. aload
	set(0x1a, 0x35, 1) // iload_0 .. saload
	set(0x36, 0x3a, 2) // istore .. astore
	set(0x3b, 0x83, 1) // istore_0 .. lxor
	l[opIinc] = 3
	set(0x85, 0x98, 1) // i2l .. dcmpg
	set(0x99, 0xa8, 3) // ifeq .. jsr
	l[0xa9] = 2        // ret
	l[opTableswitch] = -1
	l[opLookupswitch] = -1
	set(0xac, 0xb1, 1) // ireturn .. return
	set(0xb2, 0xb8, 3) // getstatic .. invokestatic
	set(0xb9, 0xba, 5) // invokeinterface, invokedynamic
	l[0xbb] = 3        // new
	l[0xbc] = 2        // newarray
	l[0xbd] = 3        // anewarray
	set(0xbe, 0xbf, 1) // arraylength, athrow
	set(0xc0, 0xc1, 3) // checkcast, instanceof
	set(0xc2, 0xc3, 1) // monitorenter, monitorexit
	l[opWide] = -1
	l[0xc5] = 4        // multianewarray
	set(0xc6, 0xc7, 3) // ifnull, ifnonnull
	set(0xc8, 0xc9, 5) // goto_w, jsr_w
	l[0xca] = 1        // breakpoint
	set(0xfe, 0xff, 1) // impdep1, impdep2
	return l
}()

// instruction is one decoded instruction; pc is relative to the code start.
type instruction struct {
	pc     int
	op     byte
	length int
}

// decode splits a method's bytecode into instructions.
func decode(code []byte) ([]instruction, error) {
	var out []instruction
	for pc := 0; pc < len(code); {
		op := code[pc]
		n, err := instructionLength(code, pc)
		if err != nil {
			return nil, err
		}
		if pc+n > len(code) {
			return nil, zerr.With(zerr.Wrap(domain.ErrClassFormat, "instruction overruns code"), "pc", pc)
		}
		out = append(out, instruction{pc: pc, op: op, length: n})
		pc += n
	}
	return out, nil
}

func instructionLength(code []byte, pc int) (int, error) {
	op := code[pc]
	switch n := opLengths[op]; n {
	case 0:
		return 0, zerr.With(zerr.Wrap(domain.ErrClassFormat, "undefined opcode"), "opcode", op)
	case -1:
		return variableLength(code, pc)
	default:
		return int(n), nil
	}
}

func variableLength(code []byte, pc int) (int, error) {
	op := code[pc]
	if op == opWide {
		if pc+1 >= len(code) {
			return 0, zerr.With(zerr.Wrap(domain.ErrClassFormat, "truncated wide instruction"), "pc", pc)
		}
		if code[pc+1] == opIinc {
			return 6, nil
		}
		return 4, nil
	}

	// Switch operands are 4-byte aligned relative to the start of the code.
	pad := (4 - (pc+1)%4) % 4
	base := pc + 1 + pad
	word := func(i int) (int32, bool) {
		at := base + 4*i
		if at+4 > len(code) {
			return 0, false
		}
		return int32(binary.BigEndian.Uint32(code[at:])), true
	}

	truncated := zerr.With(zerr.Wrap(domain.ErrClassFormat, "truncated switch"), "pc", pc)
	if op == opTableswitch {
		low, ok1 := word(1)
		high, ok2 := word(2)
		if !ok1 || !ok2 || high < low {
			return 0, truncated
		}
		return 1 + pad + 12 + 4*int(int64(high)-int64(low)+1), nil
	}

	pairs, ok := word(1)
	if !ok || pairs < 0 {
		return 0, truncated
	}
	return 1 + pad + 8 + 8*int(pairs), nil
}

// argumentWords returns the operand stack categories of a method descriptor's
// parameters, in push order. ok is false for malformed descriptors.
func argumentWords(descriptor string) (words []int, returnsVoid, ok bool) {
	if len(descriptor) < 3 || descriptor[0] != '(' {
		return nil, false, false
	}
	i := 1
	for i < len(descriptor) && descriptor[i] != ')' {
		start := i
		for i < len(descriptor) && descriptor[i] == '[' {
			i++
		}
		if i >= len(descriptor) {
			return nil, false, false
		}
		switch descriptor[i] {
		case 'J', 'D':
			if i == start {
				words = append(words, 2)
			} else {
				words = append(words, 1)
			}
			i++
		case 'B', 'C', 'F', 'I', 'S', 'Z':
			words = append(words, 1)
			i++
		case 'L':
			for i < len(descriptor) && descriptor[i] != ';' {
				i++
			}
			if i >= len(descriptor) {
				return nil, false, false
			}
			words = append(words, 1)
			i++
		default:
			return nil, false, false
		}
	}
	if i >= len(descriptor) {
		return nil, false, false
	}
	return words, descriptor[i+1:] == "V", true
}

// discard returns pop instructions that remove the given stack categories,
// top of stack last in words. ok is false when more than budget bytes are needed.
func discard(words []int, budget int) ([]byte, bool) {
	var seq []byte
	for i := len(words) - 1; i >= 0; i-- {
		switch {
		case words[i] == 2:
			seq = append(seq, opPop2)
		case i > 0 && words[i-1] == 1:
			seq = append(seq, opPop2)
			i--
		default:
			seq = append(seq, opPop)
		}
	}
	if len(seq) > budget {
		return nil, false
	}
	return seq, true
}

// padded left-pads seq with nops to length n.
func padded(n int, seq ...byte) []byte {
	out := make([]byte, n)
	copy(out[n-len(seq):], seq)
	return out
}
