package wyil

import (
	"strconv"
	"strings"
)

// A Type is a WyIL type. The set of types is closed; it consists of
// exactly the types declared in this file.
type Type interface {
	String() string
	typ()
}

// Int is the unbounded integer type.
type Int struct{}

type Bool struct{}

type Null struct{}

type Void struct{}

// Array is a dynamically sized array of Elem.
type Array struct {
	Elem Type
}

// Reference is a reference to a heap cell holding Elem.
type Reference struct {
	Elem Type
}

type Field struct {
	Name string
	Type Type
}

type Record struct {
	Fields []Field
}

// Nominal is a named type. The fixed-width integer types of the
// standard library, i8 through u64, are nominal types.
type Nominal struct {
	Name string
}

func (Int) typ()       {}
func (Bool) typ()      {}
func (Null) typ()      {}
func (Void) typ()      {}
func (Array) typ()     {}
func (Reference) typ() {}
func (Record) typ()    {}
func (Nominal) typ()   {}

func (Int) String() string        { return "int" }
func (Bool) String() string       { return "bool" }
func (Null) String() string       { return "null" }
func (Void) String() string       { return "void" }
func (t Array) String() string    { return t.Elem.String() + "[]" }
func (t Reference) String() string { return "&" + t.Elem.String() }
func (t Nominal) String() string  { return t.Name }

func (t Record) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, f := range t.Fields {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Type.String())
		b.WriteString(" ")
		b.WriteString(f.Name)
	}
	b.WriteString("}")
	return b.String()
}

// IntegerBits reports the width and signedness of a fixed-width
// integer type named like i8, u16, i32 or u64.
func (t Nominal) IntegerBits() (bits int, signed bool, ok bool) {
	if len(t.Name) < 2 {
		return 0, false, false
	}
	switch t.Name[0] {
	case 'i':
		signed = true
	case 'u':
	default:
		return 0, false, false
	}
	n, err := strconv.Atoi(t.Name[1:])
	if err != nil {
		return 0, false, false
	}
	switch n {
	case 8, 16, 32, 64:
		return n, signed, true
	default:
		return 0, false, false
	}
}

// IsInteger reports whether t is the unbounded integer type or a
// fixed-width integer type.
func IsInteger(t Type) bool {
	switch t := t.(type) {
	case Int:
		return true
	case Nominal:
		_, _, ok := t.IntegerBits()
		return ok
	default:
		return false
	}
}
