package dwarftest

import (
	"debug/dwarf"
	"testing"
)

func TestEncodeRoundTrip(t *testing.T) {
	b := NewBuilder()

	cu := b.Unit(LangC, "fixture.c")
	u32 := cu.BaseType("unsigned int", 4, EncUnsigned)
	st := cu.Struct("Point", 8)
	st.Member("x", 0, u32)
	st.Member("y", 4, u32)
	cu.Typedef("PointAlias", st)
	cu.Declaration("Opaque")

	rs := b.Unit(LangRust, "lib.rs")
	u8 := rs.BaseType("u8", 1, EncUnsigned)
	ns := rs.Namespace("mirror")
	inner := ns.Struct("Wrapped", 2)
	inner.Member("lo", 0, u8)
	inner.Member("hi", 1, u8)

	d, err := b.Data()
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}

	var structOff, typedefOff, declOff dwarf.Offset
	var units, namespaces int
	r := d.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			t.Fatalf("reader failed: %v", err)
		}
		if e == nil {
			break
		}
		name, _ := e.Val(dwarf.AttrName).(string)
		switch {
		case e.Tag == dwarf.TagCompileUnit:
			units++
		case e.Tag == dwarf.TagNamespace:
			namespaces++
		case e.Tag == dwarf.TagStructType && name == "Point":
			structOff = e.Offset
		case e.Tag == dwarf.TagStructType && name == "Opaque":
			declOff = e.Offset
		case e.Tag == dwarf.TagTypedef && name == "PointAlias":
			typedefOff = e.Offset
		}
	}
	if units != 2 {
		t.Errorf("units = %d, want 2", units)
	}
	if namespaces != 1 {
		t.Errorf("namespaces = %d, want 1", namespaces)
	}

	typ, err := d.Type(structOff)
	if err != nil {
		t.Fatalf("Type(struct) failed: %v", err)
	}
	st2, ok := typ.(*dwarf.StructType)
	if !ok {
		t.Fatalf("Type(struct) = %T, want *dwarf.StructType", typ)
	}
	if st2.Size() != 8 {
		t.Errorf("struct size = %d, want 8", st2.Size())
	}
	if len(st2.Field) != 2 || st2.Field[1].Name != "y" || st2.Field[1].ByteOffset != 4 {
		t.Errorf("unexpected fields: %+v", st2.Field)
	}

	typ, err = d.Type(typedefOff)
	if err != nil {
		t.Fatalf("Type(typedef) failed: %v", err)
	}
	if typ.Size() != 8 {
		t.Errorf("typedef size = %d, want 8", typ.Size())
	}

	typ, err = d.Type(declOff)
	if err != nil {
		t.Fatalf("Type(declaration) failed: %v", err)
	}
	if st3, ok := typ.(*dwarf.StructType); !ok || !st3.Incomplete {
		t.Errorf("declaration should decode as incomplete struct, got %#v", typ)
	}
}

func TestForwardReferenceRejected(t *testing.T) {
	b := NewBuilder()
	cu := b.Unit(LangC, "fixture.c")
	td := cu.add(dwarf.TagTypedef).set(dwarf.AttrName, "Early")
	late := cu.Struct("Late", 4)
	td.set(dwarf.AttrType, late)

	// move the typedef's target after it in declaration order
	if _, err := b.Encode(); err == nil {
		t.Fatal("expected error for forward reference")
	}
}

func TestCrossUnitReferenceRejected(t *testing.T) {
	b := NewBuilder()
	a := b.Unit(LangC, "a.c")
	u32 := a.BaseType("unsigned int", 4, EncUnsigned)
	c := b.Unit(LangC, "b.c")
	c.Typedef("Alias", u32)

	if _, err := b.Encode(); err == nil {
		t.Fatal("expected error for cross-unit reference")
	}
}
