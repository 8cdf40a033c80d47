// Package dwarftest builds small DWARF fixtures in memory.
//
// Tests describe compile units and type definitions through a Builder and
// receive either a ready dwarf.Data or the raw .debug_abbrev/.debug_info
// section bytes, which can be wrapped into container formats (ELF, wasm)
// to exercise file-level code paths. No compiler or fixture binary is
// required.
//
// The encoder is single pass: an attribute may only reference a DIE that was
// declared earlier in the same unit. Declare base types first, then the
// aggregates built from them.
package dwarftest

import (
	"bytes"
	"debug/dwarf"
	"encoding/binary"
	"fmt"
)

// DW_LANG codes for the producers exercised in fixtures.
const (
	LangC    = 0x0002
	LangC99  = 0x000c
	LangCxx  = 0x0004
	LangRust = 0x001c
)

// DW_ATE encodings for base types.
const (
	EncBool     = 0x02
	EncFloat    = 0x04
	EncSigned   = 0x05
	EncUnsigned = 0x07
)

// DWARF v4 form codes the encoder emits.
const (
	formString      = 0x08
	formUdata       = 0x0f
	formRef4        = 0x13
	formFlagPresent = 0x19
)

// headerLen is the size of a DWARF32 v4 unit header: length(4) + version(2) +
// abbrev offset(4) + address size(1).
const headerLen = 11

// DIE is one debug information entry under construction. Helpers return the
// entry they create so callers can hold references for DW_AT_type attributes
// and nest further definitions.
type DIE struct {
	tag      dwarf.Tag
	attrs    []attrVal
	children []*DIE
	owner    *DIE   // compile unit root
	offset   uint32 // unit-relative, assigned during encode
}

type attrVal struct {
	id  dwarf.Attr
	val any
}

// Builder accumulates compile units for one debug info fixture.
type Builder struct {
	units []*DIE
}

// Output holds the serialized debug sections.
type Output struct {
	Abbrev []byte
	Info   []byte
}

// Data assembles the sections into a dwarf.Data.
func (o *Output) Data() (*dwarf.Data, error) {
	return dwarf.New(o.Abbrev, nil, nil, o.Info, nil, nil, nil, nil)
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Unit adds a compile unit produced from the given language and returns its
// root DIE. Top-level definitions are added through the returned entry.
func (b *Builder) Unit(lang int64, name string) *DIE {
	root := &DIE{tag: dwarf.TagCompileUnit}
	root.owner = root
	root.set(dwarf.AttrName, name)
	root.set(dwarf.AttrLanguage, uint64(lang))
	b.units = append(b.units, root)
	return root
}

// Data encodes the builder and assembles a dwarf.Data in one step.
func (b *Builder) Data() (*dwarf.Data, error) {
	out, err := b.Encode()
	if err != nil {
		return nil, err
	}
	return out.Data()
}

// Encode serializes all units. Abbreviation declarations are shared across
// units in a single table at offset zero.
func (b *Builder) Encode() (*Output, error) {
	table := newAbbrevTable()
	for _, u := range b.units {
		table.register(u)
	}

	var info bytes.Buffer
	for _, u := range b.units {
		if err := encodeUnit(&info, u, table); err != nil {
			return nil, err
		}
	}
	return &Output{Abbrev: table.encode(), Info: info.Bytes()}, nil
}

func (d *DIE) add(tag dwarf.Tag) *DIE {
	c := &DIE{tag: tag, owner: d.owner}
	d.children = append(d.children, c)
	return c
}

func (d *DIE) set(id dwarf.Attr, v any) *DIE {
	d.attrs = append(d.attrs, attrVal{id: id, val: v})
	return d
}

// Namespace adds a namespace entry. Types added to it resolve under
// "namespace::Name" qualified paths.
func (d *DIE) Namespace(name string) *DIE {
	return d.add(dwarf.TagNamespace).set(dwarf.AttrName, name)
}

// BaseType adds a scalar type with a DW_ATE encoding, e.g. EncUnsigned.
func (d *DIE) BaseType(name string, size uint64, enc uint64) *DIE {
	return d.add(dwarf.TagBaseType).
		set(dwarf.AttrName, name).
		set(dwarf.AttrByteSize, size).
		set(dwarf.AttrEncoding, enc)
}

// Struct adds a complete structure type of the given storage size.
func (d *DIE) Struct(name string, size uint64) *DIE {
	return d.add(dwarf.TagStructType).
		set(dwarf.AttrName, name).
		set(dwarf.AttrByteSize, size)
}

// Class adds a complete class type of the given storage size.
func (d *DIE) Class(name string, size uint64) *DIE {
	return d.add(dwarf.TagClassType).
		set(dwarf.AttrName, name).
		set(dwarf.AttrByteSize, size)
}

// Union adds a complete union type of the given storage size.
func (d *DIE) Union(name string, size uint64) *DIE {
	return d.add(dwarf.TagUnionType).
		set(dwarf.AttrName, name).
		set(dwarf.AttrByteSize, size)
}

// Enum adds an enumeration type of the given storage size.
func (d *DIE) Enum(name string, size uint64) *DIE {
	return d.add(dwarf.TagEnumerationType).
		set(dwarf.AttrName, name).
		set(dwarf.AttrByteSize, size)
}

// Typedef adds a name alias for an already-declared type.
func (d *DIE) Typedef(name string, to *DIE) *DIE {
	return d.add(dwarf.TagTypedef).
		set(dwarf.AttrName, name).
		set(dwarf.AttrType, to)
}

// Declaration adds an incomplete structure: a forward declaration carrying
// no layout.
func (d *DIE) Declaration(name string) *DIE {
	return d.add(dwarf.TagStructType).
		set(dwarf.AttrName, name).
		set(dwarf.AttrDeclaration, true)
}

// Member adds a field to a struct, class, or union entry. Pass name "" for
// an anonymous member.
func (d *DIE) Member(name string, offset uint64, typ *DIE) *DIE {
	return d.add(dwarf.TagMember).
		set(dwarf.AttrName, name).
		set(dwarf.AttrDataMemberLoc, offset).
		set(dwarf.AttrType, typ)
}

// Align records an explicit DW_AT_alignment on the entry.
func (d *DIE) Align(n uint64) *DIE {
	return d.set(dwarf.AttrAlignment, n)
}

func encodeUnit(out *bytes.Buffer, root *DIE, table *abbrevTable) error {
	var body bytes.Buffer
	if err := encodeDIE(&body, root, table); err != nil {
		return err
	}

	// unit_length excludes the length field itself
	length := headerLen - 4 + body.Len()
	var hdr [headerLen]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(length))
	binary.LittleEndian.PutUint16(hdr[4:6], 4)
	binary.LittleEndian.PutUint32(hdr[6:10], 0)
	hdr[10] = 8
	out.Write(hdr[:])
	out.Write(body.Bytes())
	return nil
}

func encodeDIE(body *bytes.Buffer, d *DIE, table *abbrevTable) error {
	d.offset = uint32(headerLen + body.Len())
	writeUleb(body, table.code(d))

	for _, a := range d.attrs {
		switch v := a.val.(type) {
		case string:
			body.WriteString(v)
			body.WriteByte(0)
		case uint64:
			writeUleb(body, v)
		case bool:
			// flag_present carries no data
		case *DIE:
			if v.owner != d.owner {
				return fmt.Errorf("%v of %v references a DIE from another unit", a.id, d.tag)
			}
			if v.offset == 0 {
				return fmt.Errorf("%v of %v references a DIE that is not yet encoded, declare it earlier", a.id, d.tag)
			}
			var ref [4]byte
			binary.LittleEndian.PutUint32(ref[:], v.offset)
			body.Write(ref[:])
		default:
			return fmt.Errorf("unsupported attribute value %T", a.val)
		}
	}

	if len(d.children) > 0 {
		for _, c := range d.children {
			if err := encodeDIE(body, c, table); err != nil {
				return err
			}
		}
		body.WriteByte(0) // end of children
	}
	return nil
}

type abbrevTable struct {
	codes  map[string]uint64
	shapes []shape
}

type shape struct {
	tag         dwarf.Tag
	hasChildren bool
	attrs       []attrForm
}

type attrForm struct {
	id   dwarf.Attr
	form byte
}

func newAbbrevTable() *abbrevTable {
	return &abbrevTable{codes: make(map[string]uint64)}
}

func (t *abbrevTable) register(d *DIE) {
	key, sh := shapeOf(d)
	if _, ok := t.codes[key]; !ok {
		t.shapes = append(t.shapes, sh)
		t.codes[key] = uint64(len(t.shapes))
	}
	for _, c := range d.children {
		t.register(c)
	}
}

func (t *abbrevTable) code(d *DIE) uint64 {
	key, _ := shapeOf(d)
	return t.codes[key]
}

func shapeOf(d *DIE) (string, shape) {
	sh := shape{tag: d.tag, hasChildren: len(d.children) > 0}
	key := fmt.Sprintf("%d/%t", d.tag, sh.hasChildren)
	for _, a := range d.attrs {
		af := attrForm{id: a.id, form: formFor(a.val)}
		sh.attrs = append(sh.attrs, af)
		key += fmt.Sprintf("/%d:%d", af.id, af.form)
	}
	return key, sh
}

func formFor(v any) byte {
	switch v.(type) {
	case string:
		return formString
	case uint64:
		return formUdata
	case bool:
		return formFlagPresent
	case *DIE:
		return formRef4
	}
	return 0
}

func (t *abbrevTable) encode() []byte {
	var buf bytes.Buffer
	for i, sh := range t.shapes {
		writeUleb(&buf, uint64(i+1))
		writeUleb(&buf, uint64(sh.tag))
		if sh.hasChildren {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		for _, af := range sh.attrs {
			writeUleb(&buf, uint64(af.id))
			writeUleb(&buf, uint64(af.form))
		}
		buf.WriteByte(0)
		buf.WriteByte(0)
	}
	buf.WriteByte(0) // end of table
	return buf.Bytes()
}

func writeUleb(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}
