package width

import (
	"math/big"
	"testing"

	"honnef.co/go/wyec/vrp"
	"honnef.co/go/wyec/wyil"
)

func TestDefaultTable(t *testing.T) {
	want := []struct {
		name, nominal string
		bits          int
		signed        bool
		rng           string
	}{
		{"uint8_t", "u8", 8, false, "[0, 255]"},
		{"int8_t", "i8", 8, true, "[-128, 127]"},
		{"uint16_t", "u16", 16, false, "[0, 65535]"},
		{"int16_t", "i16", 16, true, "[-32768, 32767]"},
		{"uint32_t", "u32", 32, false, "[0, 4294967295]"},
		{"int32_t", "i32", 32, true, "[-2147483648, 2147483647]"},
		{"uint64_t", "u64", 64, false, "[0, 18446744073709551615]"},
		{"int64_t", "i64", 64, true, "[-9223372036854775808, 9223372036854775807]"},
	}
	got := DefaultTable()
	if len(got) != len(want) {
		t.Fatalf("got %d kinds, want %d", len(got), len(want))
	}
	for i, w := range want {
		k := got[i]
		if k.Name != w.name || k.Nominal != w.nominal || k.Bits != w.bits || k.Signed != w.signed || k.Range.String() != w.rng {
			t.Errorf("kind %d: got %+v, want %+v", i, k, w)
		}
		if l, ok := Lookup(w.name); !ok || l.Name != w.name {
			t.Errorf("Lookup(%s) = %v, %t", w.name, l, ok)
		}
		if n, ok := Nominal(w.nominal); !ok || n.Name != w.name {
			t.Errorf("Nominal(%s) = %v, %t", w.nominal, n, ok)
		}
	}
	if _, ok := Lookup("int128_t"); ok {
		t.Errorf("Lookup found int128_t")
	}
}

func TestSelect(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 64)
	tests := []struct {
		r    vrp.IntegerRange
		want string
	}{
		{vrp.Int64Range(5, 10), "uint8_t"},
		{vrp.Int64Range(0, 255), "uint8_t"},
		{vrp.Int64Range(-1, 1), "int8_t"},
		{vrp.Int64Range(0, 256), "uint16_t"},
		{vrp.Int64Range(-129, 0), "int16_t"},
		{vrp.WidthRange(32, true), "int32_t"},
		{vrp.Int64Range(0, 1<<62), "uint64_t"},
		{vrp.Top, "int64_t"},
		{vrp.NewRange(vrp.NewBound(0), vrp.PosInf), "int64_t"},
		// Finite, but wider than any kind.
		{vrp.NewRange(vrp.NewBound(0), vrp.NewBigBound(huge)), ""},
	}
	s := NewSelector(DefaultTable())
	for _, tt := range tests {
		got, ok := s.Select(tt.r)
		if ok != (tt.want != "") || got.Name != tt.want {
			t.Errorf("Select(%s) = %s, %t, want %q", tt.r, got, ok, tt.want)
		}
	}
}

func TestSelectMonotone(t *testing.T) {
	ranges := []vrp.IntegerRange{
		vrp.Int64Range(0, 0),
		vrp.Int64Range(0, 200),
		vrp.Int64Range(-100, 100),
		vrp.Int64Range(-100, 300),
		vrp.Int64Range(0, 70000),
		vrp.Int64Range(-70000, 70000),
		vrp.Int64Range(0, 1<<40),
		vrp.Top,
	}
	s := NewSelector(DefaultTable())
	for _, a := range ranges {
		for _, b := range ranges {
			if !vrp.Contains(b, a) {
				continue
			}
			ka, _ := s.Select(a)
			kb, _ := s.Select(b)
			if ka.Bits > kb.Bits {
				t.Errorf("%s ⊆ %s, but %s is wider than %s", a, b, ka, kb)
			}
			if !vrp.Contains(ka.Range, a) && ka.Name != s.Fallback().Name {
				t.Errorf("%s cannot hold %s", ka, a)
			}
		}
	}
}

func TestNewSelectorOrder(t *testing.T) {
	table := []Kind{}
	for _, name := range []string{"int64_t", "int16_t", "uint8_t", "int8_t"} {
		k, _ := Lookup(name)
		table = append(table, k)
	}
	s := NewSelector(table)
	var got []string
	for _, k := range s.Table() {
		got = append(got, k.Name)
	}
	want := []string{"uint8_t", "int8_t", "int16_t", "int64_t"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if s.Fallback().Name != "int64_t" {
		t.Errorf("got fallback %s, want int64_t", s.Fallback())
	}
	// No 32-bit kind: a 32-bit range needs the fallback.
	if got, _ := s.Select(vrp.WidthRange(32, true)); got.Name != "int64_t" {
		t.Errorf("got %s, want int64_t", got)
	}

	// Signed first at equal width.
	k16, _ := Lookup("int16_t")
	u16, _ := Lookup("uint16_t")
	s = NewSelector([]Kind{k16, u16})
	if got, _ := s.Select(vrp.Int64Range(0, 10)); got.Name != "int16_t" {
		t.Errorf("got %s, want int16_t", got)
	}
}

func TestNewSelectorEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewSelector accepted an empty table")
		}
	}()
	NewSelector(nil)
}

func TestSelectFor(t *testing.T) {
	u8 := wyil.Nominal{Name: "u8"}
	i32 := wyil.Nominal{Name: "i32"}
	tests := []struct {
		r    vrp.IntegerRange
		t    wyil.Type
		want string
	}{
		{vrp.Top, u8, "uint8_t"},
		{vrp.Int64Range(-5, 5), u8, "uint8_t"},
		{vrp.Int64Range(300, 400), u8, "uint8_t"},
		{vrp.Top, i32, "int32_t"},
		{vrp.NewRange(vrp.NegInf, vrp.NewBound(99)), i32, "int32_t"},
		{vrp.Int64Range(5, 10), i32, "uint8_t"},
		{vrp.Top, wyil.Int{}, "int64_t"},
		{vrp.Int64Range(5, 10), wyil.Int{}, "uint8_t"},
	}
	s := NewSelector(DefaultTable())
	for _, tt := range tests {
		if got, ok := s.SelectFor(tt.r, tt.t); !ok || got.Name != tt.want {
			t.Errorf("SelectFor(%s, %s) = %s, want %s", tt.r, tt.t, got, tt.want)
		}
	}
}

func TestSelectReducedTable(t *testing.T) {
	var table []Kind
	for _, name := range []string{"uint8_t", "int8_t", "uint16_t", "int16_t", "uint32_t", "int32_t"} {
		k, _ := Lookup(name)
		table = append(table, k)
	}
	s := NewSelector(table)
	if k, ok := s.Select(vrp.Int64Range(0, 1<<40)); ok {
		t.Errorf("Select([0, 2^40]) = %s, want no kind", k)
	}
	if k, ok := s.SelectFor(vrp.Top, wyil.Nominal{Name: "i64"}); ok {
		t.Errorf("SelectFor(Top, i64) = %s, want no kind", k)
	}
	if k, ok := s.Select(vrp.Top); !ok || k.Name != "int32_t" {
		t.Errorf("Select(Top) = %s, %t, want the int32_t fallback", k, ok)
	}
	if k, ok := s.Select(vrp.Int64Range(-5, 70000)); !ok || k.Name != "int32_t" {
		t.Errorf("got %s, %t, want int32_t", k, ok)
	}
}
