package core

import (
	"testing"
)

func TestObjectTypes(t *testing.T) {
	tests := []struct {
		obj      Object
		typ      ObjectType
		typeName string
		str      string
	}{
		{Null{}, ObjNull, "Null", "null"},
		{Bool(true), ObjBool, "Bool", "true"},
		{Int(-42), ObjInt, "Int", "-42"},
		{Real(2.5), ObjReal, "Real", "2.5"},
		{String("hi"), ObjString, "String", "hi"},
		{Name("Type"), ObjName, "Name", "/Type"},
		{Array{Int(1), Name("A")}, ObjArray, "Array", "[1 /A]"},
		{Dict{"B": Int(2), "A": Bool(false)}, ObjDict, "Dict", "<</A false /B 2>>"},
		{IndirectRef{Number: 12, Generation: 1}, ObjIndirect, "IndirectRef", "12 1 R"},
		{&Stream{Dict: Dict{}, Data: []byte("abc")}, ObjStream, "Stream", "stream <<>> (3 bytes)"},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			if tt.obj.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", tt.obj.Type(), tt.typ)
			}
			if tt.obj.Type().String() != tt.typeName {
				t.Errorf("Type().String() = %q, want %q", tt.obj.Type().String(), tt.typeName)
			}
			if tt.obj.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.obj.String(), tt.str)
			}
		})
	}

	if got := ObjectType(99).String(); got != "Unknown" {
		t.Errorf("ObjectType(99).String() = %q", got)
	}
}

func TestDictAccessors(t *testing.T) {
	stream := &Stream{Dict: Dict{}}
	d := Dict{
		"Name":   Name("Catalog"),
		"Int":    Int(7),
		"Neg":    Int(-1),
		"Dict":   Dict{"X": Null{}},
		"Array":  Array{Int(1)},
		"String": String("s"),
		"Stream": stream,
		"Ref":    IndirectRef{Number: 3},
	}

	if v, ok := d.GetName("Name"); !ok || v != "Catalog" {
		t.Errorf("GetName() = %v, %v", v, ok)
	}
	if _, ok := d.GetName("Int"); ok {
		t.Error("GetName() accepted an integer")
	}
	if v, ok := d.GetInt("Int"); !ok || v != 7 {
		t.Errorf("GetInt() = %v, %v", v, ok)
	}
	if v, ok := d.GetDict("Dict"); !ok || !v.Has("X") {
		t.Errorf("GetDict() = %v, %v", v, ok)
	}
	if v, ok := d.GetArray("Array"); !ok || v.Len() != 1 {
		t.Errorf("GetArray() = %v, %v", v, ok)
	}
	if v, ok := d.GetString("String"); !ok || v != "s" {
		t.Errorf("GetString() = %v, %v", v, ok)
	}
	if v, ok := d.GetStream("Stream"); !ok || v != stream {
		t.Errorf("GetStream() = %v, %v", v, ok)
	}
	if v, ok := d.GetIndirectRef("Ref"); !ok || v.Number != 3 {
		t.Errorf("GetIndirectRef() = %v, %v", v, ok)
	}

	if v, ok := d.GetOffset("Int"); !ok || v != 7 {
		t.Errorf("GetOffset(Int) = %v, %v", v, ok)
	}
	if _, ok := d.GetOffset("Neg"); ok {
		t.Error("GetOffset() accepted a negative value")
	}
	if _, ok := d.GetOffset("Missing"); ok {
		t.Error("GetOffset() found a missing key")
	}

	d.Set("New", Bool(true))
	if !d.Has("New") {
		t.Error("Set() did not store the value")
	}
	d.Delete("New")
	if d.Has("New") || d.Get("New") != nil {
		t.Error("Delete() left the value")
	}
}

func TestArrayAccessors(t *testing.T) {
	a := Array{Int(5), Name("N")}

	if a.Get(-1) != nil || a.Get(2) != nil {
		t.Error("Get() out of range returned a value")
	}
	if v, ok := a.GetInt(0); !ok || v != 5 {
		t.Errorf("GetInt(0) = %v, %v", v, ok)
	}
	if _, ok := a.GetInt(1); ok {
		t.Error("GetInt(1) accepted a name")
	}
	if v, ok := a.GetName(1); !ok || v != "N" {
		t.Errorf("GetName(1) = %v, %v", v, ok)
	}
}
