package classpatch

import (
	"encoding/binary"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
)

const classMagic = 0xCAFEBABE

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// poolCountOffset is the offset of constant_pool_count in a class file.
const poolCountOffset = 8

// constant is one decoded constant pool entry. a and b hold the entry's index
// operands; utf8 holds the raw bytes of Utf8 entries.
type constant struct {
	tag  byte
	utf8 string
	a, b uint16
}

// method is a method whose Code attribute has been located.
type method struct {
	name       string
	descriptor string
	codeStart  int
	codeLength int
}

// classFile is the parsed view of a class. Offsets refer to data.
type classFile struct {
	data    []byte
	pool    []constant
	poolEnd int
	methods []method
}

// reader is a bounds-checked big-endian cursor over class bytes.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = zerr.With(zerr.Wrap(domain.ErrClassFormat, "unexpected end of class data"), "offset", r.pos)
		return false
	}
	return true
}

func (r *reader) u1() byte {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.pos += n
	}
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v
}

// parseClass decodes the parts of a class file the patcher needs: the constant
// pool and the location of every method's bytecode.
func parseClass(data []byte) (*classFile, error) {
	r := &reader{data: data}
	if magic := r.u4(); r.err == nil && magic != classMagic {
		return nil, zerr.With(zerr.Wrap(domain.ErrClassFormat, "bad magic"), "magic", magic)
	}
	r.skip(4) // minor_version, major_version

	pool, err := parsePool(r)
	if err != nil {
		return nil, err
	}
	cf := &classFile{data: data, pool: pool, poolEnd: r.pos}

	r.skip(6) // access_flags, this_class, super_class
	interfaces := int(r.u2())
	r.skip(2 * interfaces)

	fields := int(r.u2())
	for range fields {
		r.skip(6)
		skipAttributes(r)
	}

	methods := int(r.u2())
	for range methods {
		m, err := cf.parseMethod(r)
		if err != nil {
			return nil, err
		}
		if m.codeStart > 0 {
			cf.methods = append(cf.methods, m)
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	return cf, nil
}

func parsePool(r *reader) ([]constant, error) {
	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	if count == 0 {
		return nil, zerr.Wrap(domain.ErrClassFormat, "empty constant pool")
	}

	pool := make([]constant, count)
	for i := 1; i < count; i++ {
		tag := r.u1()
		c := constant{tag: tag}
		switch tag {
		case tagUtf8:
			n := int(r.u2())
			c.utf8 = string(r.bytes(n))
		case tagInteger, tagFloat:
			r.skip(4)
		case tagLong, tagDouble:
			r.skip(8)
			pool[i] = c
			i++
			continue
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			c.a = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			c.a = r.u2()
			c.b = r.u2()
		case tagMethodHandle:
			c.a = uint16(r.u1())
			c.b = r.u2()
		default:
			if r.err != nil {
				return nil, r.err
			}
			err := zerr.With(zerr.Wrap(domain.ErrClassFormat, "unknown constant pool tag"), "tag", tag)
			return nil, zerr.With(err, "index", i)
		}
		if r.err != nil {
			return nil, r.err
		}
		pool[i] = c
	}
	return pool, nil
}

func skipAttributes(r *reader) {
	count := int(r.u2())
	for range count {
		r.skip(2)
		r.skip(int(r.u4()))
	}
}

func (cf *classFile) parseMethod(r *reader) (method, error) {
	r.skip(2) // access_flags
	m := method{
		name:       cf.utf8(r.u2()),
		descriptor: cf.utf8(r.u2()),
	}

	attributes := int(r.u2())
	for range attributes {
		name := cf.utf8(r.u2())
		length := int(r.u4())
		if r.err != nil {
			return m, r.err
		}
		start := r.pos
		r.skip(length)
		if name != "Code" || r.err != nil {
			continue
		}

		code := &reader{data: cf.data[:start+length], pos: start}
		code.skip(4) // max_stack, max_locals
		codeLength := int(code.u4())
		code.skip(codeLength)
		if code.err != nil {
			return m, code.err
		}
		m.codeStart = start + 8
		m.codeLength = codeLength
	}
	return m, r.err
}

// utf8 returns the Utf8 constant at index, or "" when index does not name one.
func (cf *classFile) utf8(index uint16) string {
	if int(index) >= len(cf.pool) || cf.pool[index].tag != tagUtf8 {
		return ""
	}
	return cf.pool[index].utf8
}

// entry returns the constant at index if it carries the given tag.
func (cf *classFile) entry(index uint16, tags ...byte) (constant, bool) {
	if index == 0 || int(index) >= len(cf.pool) {
		return constant{}, false
	}
	c := cf.pool[index]
	for _, t := range tags {
		if c.tag == t {
			return c, true
		}
	}
	return constant{}, false
}

// memberRef is a resolved Fieldref, Methodref or InterfaceMethodref.
type memberRef struct {
	classIndex      uint16
	descriptorIndex uint16
	name            string
	descriptor      string
}

func (cf *classFile) member(index uint16, tags ...byte) (memberRef, bool) {
	ref, ok := cf.entry(index, tags...)
	if !ok {
		return memberRef{}, false
	}
	nat, ok := cf.entry(ref.b, tagNameAndType)
	if !ok {
		return memberRef{}, false
	}
	return memberRef{
		classIndex:      ref.a,
		descriptorIndex: nat.b,
		name:            cf.utf8(nat.a),
		descriptor:      cf.utf8(nat.b),
	}, true
}
