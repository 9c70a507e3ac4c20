package classpatch_test

import "encoding/binary"

const (
	installerClass = "net/minecraftforge/installer/SimpleInstaller"
	actionsClass   = "net/minecraftforge/installer/actions/Actions"
	actionsDesc    = "L" + actionsClass + ";"
)

// classBuilder assembles minimal class files for patcher tests.
type classBuilder struct {
	pool    []byte
	next    uint16
	methods [][]byte
	this    uint16
	super   uint16
}

func newClassBuilder() *classBuilder {
	b := &classBuilder{next: 1}
	b.this = b.class(installerClass)
	b.super = b.class("java/lang/Object")
	return b
}

func (b *classBuilder) add(entry []byte, slots uint16) uint16 {
	index := b.next
	b.pool = append(b.pool, entry...)
	b.next += slots
	return index
}

func (b *classBuilder) utf8(s string) uint16 {
	e := []byte{1}
	e = binary.BigEndian.AppendUint16(e, uint16(len(s)))
	e = append(e, s...)
	return b.add(e, 1)
}

func (b *classBuilder) pair(tag byte, x, y uint16) uint16 {
	e := []byte{tag}
	e = binary.BigEndian.AppendUint16(e, x)
	e = binary.BigEndian.AppendUint16(e, y)
	return b.add(e, 1)
}

func (b *classBuilder) class(name string) uint16 {
	n := b.utf8(name)
	e := binary.BigEndian.AppendUint16([]byte{7}, n)
	return b.add(e, 1)
}

func (b *classBuilder) nat(name, desc string) uint16 {
	return b.pair(12, b.utf8(name), b.utf8(desc))
}

// fieldrefOn adds a Fieldref that shares an existing class and descriptor entry.
func (b *classBuilder) fieldrefOn(classIndex uint16, name string, descIndex uint16) uint16 {
	return b.pair(9, classIndex, b.pair(12, b.utf8(name), descIndex))
}

func (b *classBuilder) methodref(owner, name, desc string) uint16 {
	return b.pair(10, b.class(owner), b.nat(name, desc))
}

// long adds a Long constant, which occupies two pool slots.
func (b *classBuilder) long(v uint64) uint16 {
	e := binary.BigEndian.AppendUint64([]byte{5}, v)
	return b.add(e, 2)
}

func (b *classBuilder) method(name, desc string, code []byte) {
	m := binary.BigEndian.AppendUint16(nil, 0x0009)
	m = binary.BigEndian.AppendUint16(m, b.utf8(name))
	m = binary.BigEndian.AppendUint16(m, b.utf8(desc))
	m = binary.BigEndian.AppendUint16(m, 1)
	m = binary.BigEndian.AppendUint16(m, b.utf8("Code"))
	m = binary.BigEndian.AppendUint32(m, uint32(12+len(code)))
	m = binary.BigEndian.AppendUint16(m, 4) // max_stack
	m = binary.BigEndian.AppendUint16(m, 2) // max_locals
	m = binary.BigEndian.AppendUint32(m, uint32(len(code)))
	m = append(m, code...)
	m = binary.BigEndian.AppendUint16(m, 0) // exception_table_length
	m = binary.BigEndian.AppendUint16(m, 0) // attributes_count
	b.methods = append(b.methods, m)
}

func (b *classBuilder) bytes() []byte {
	out := binary.BigEndian.AppendUint32(nil, 0xCAFEBABE)
	out = binary.BigEndian.AppendUint16(out, 0)
	out = binary.BigEndian.AppendUint16(out, 52)
	out = binary.BigEndian.AppendUint16(out, b.next)
	out = append(out, b.pool...)
	out = binary.BigEndian.AppendUint16(out, 0x0021)
	out = binary.BigEndian.AppendUint16(out, b.this)
	out = binary.BigEndian.AppendUint16(out, b.super)
	out = binary.BigEndian.AppendUint16(out, 0) // interfaces
	out = binary.BigEndian.AppendUint16(out, 0) // fields
	out = binary.BigEndian.AppendUint16(out, uint16(len(b.methods)))
	for _, m := range b.methods {
		out = append(out, m...)
	}
	out = binary.BigEndian.AppendUint16(out, 0) // attributes
	return out
}

// poolEnd returns the offset just past the constant pool of a built class.
func (b *classBuilder) poolEnd() int {
	return 10 + len(b.pool)
}

func u2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func code(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func op(bytes ...byte) []byte {
	return bytes
}

func withIndex(opcode byte, index uint16) []byte {
	return append([]byte{opcode}, u2(index)...)
}
