// Package width selects the narrowest fixed-width C integer type that
// can hold a range of values.
package width

import (
	"fmt"
	"sort"
	"unsafe"

	"golang.org/x/exp/constraints"
	"honnef.co/go/wyec/vrp"
	"honnef.co/go/wyec/wyil"
)

// A Kind is a fixed-width integer representation.
type Kind struct {
	// Name is the C type name, such as int16_t.
	Name string
	// Nominal is the name of the corresponding WyIL type, such as i16.
	Nominal string
	Bits    int
	Signed  bool
	Range   vrp.IntegerRange
}

func (k Kind) String() string { return k.Name }

func kindOf[T constraints.Integer](name string) Kind {
	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8
	signed := ^zero < 0
	prefix := "u"
	if signed {
		prefix = "i"
	}
	return Kind{
		Name:    name,
		Nominal: fmt.Sprintf("%s%d", prefix, bits),
		Bits:    bits,
		Signed:  signed,
		Range:   vrp.WidthRange(bits, signed),
	}
}

var kinds = []Kind{
	kindOf[uint8]("uint8_t"),
	kindOf[int8]("int8_t"),
	kindOf[uint16]("uint16_t"),
	kindOf[int16]("int16_t"),
	kindOf[uint32]("uint32_t"),
	kindOf[int32]("int32_t"),
	kindOf[uint64]("uint64_t"),
	kindOf[int64]("int64_t"),
}

// DefaultTable returns every known kind, narrowest first and unsigned
// before signed at each width.
func DefaultTable() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Lookup returns the kind with the given C name.
func Lookup(name string) (Kind, bool) {
	for _, k := range kinds {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}

// Nominal returns the kind of the WyIL integer type with the given
// name.
func Nominal(name string) (Kind, bool) {
	for _, k := range kinds {
		if k.Nominal == name {
			return k, true
		}
	}
	return Kind{}, false
}

// A Selector picks kinds from a width table.
type Selector struct {
	table    []Kind
	fallback Kind
}

// NewSelector returns a selector over table. The table is ordered by
// width, keeping the given order among kinds of equal width. It panics
// if table is empty.
func NewSelector(table []Kind) *Selector {
	if len(table) == 0 {
		panic("NewSelector called with empty table")
	}
	s := &Selector{table: make([]Kind, len(table))}
	copy(s.table, table)
	sort.SliceStable(s.table, func(i, j int) bool {
		return s.table[i].Bits < s.table[j].Bits
	})
	s.fallback = s.table[len(s.table)-1]
	return s
}

func (s *Selector) Table() []Kind {
	out := make([]Kind, len(s.table))
	copy(out, s.table)
	return out
}

// Fallback returns the widest kind of the table. It is used for ranges
// with an infinite bound, which no kind can hold.
func (s *Selector) Fallback() Kind { return s.fallback }

// Select returns the first kind of the table whose range contains r. A
// range with an infinite bound gets the fallback. Select reports false
// if r is finite and no kind of the table can hold it.
func (s *Selector) Select(r vrp.IntegerRange) (Kind, bool) {
	for _, k := range s.table {
		if vrp.Contains(k.Range, r) {
			return k, true
		}
	}
	if r.Low().Infinite() || r.High().Infinite() {
		return s.fallback, true
	}
	return Kind{}, false
}

// SelectFor is like Select, but first clamps r to the range of t if t
// is a fixed-width integer type.
func (s *Selector) SelectFor(r vrp.IntegerRange, t wyil.Type) (Kind, bool) {
	if n, ok := t.(wyil.Nominal); ok {
		if k, ok := Nominal(n.Name); ok {
			if c, ok := vrp.Intersect(r, k.Range); ok {
				r = c
			} else {
				r = k.Range
			}
		}
	}
	return s.Select(r)
}
