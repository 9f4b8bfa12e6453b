package vrp

import (
	"fmt"
	"testing"

	"honnef.co/go/wyec/wyil"
)

func TestBoundCmp(t *testing.T) {
	tests := []struct {
		a, b Bound
		want int
	}{
		{NegInf, NegInf, 0},
		{PosInf, PosInf, 0},
		{NegInf, PosInf, -1},
		{PosInf, NegInf, 1},
		{NewBound(5), PosInf, -1},
		{NewBound(5), NegInf, 1},
		{NegInf, NewBound(-1000), -1},
		{NewBound(3), NewBound(3), 0},
		{NewBound(-3), NewBound(3), -1},
	}
	for _, tt := range tests {
		if got := tt.a.Cmp(tt.b); got != tt.want {
			t.Errorf("%s.Cmp(%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBoundArithmetic(t *testing.T) {
	if PosInf.Inc() != PosInf || PosInf.Dec() != PosInf {
		t.Errorf("∞ ± 1 should be ∞")
	}
	if NegInf.Inc() != NegInf || NegInf.Dec() != NegInf {
		t.Errorf("-∞ ± 1 should be -∞")
	}
	if got := NewBound(41).Inc(); got.Cmp(NewBound(42)) != 0 {
		t.Errorf("41+1 = %s", got)
	}
	b := NewBound(7)
	n := b.Int()
	n.SetInt64(0)
	if b.Cmp(NewBound(7)) != 0 {
		t.Errorf("modifying the result of Int changed the bound")
	}
	if NegInf.Int() != nil {
		t.Errorf("infinite bound has an integer value")
	}
}

func TestRangeString(t *testing.T) {
	tests := []struct {
		r    IntegerRange
		want string
	}{
		{Top, "[-∞, ∞]"},
		{Int64Range(0, 10), "[0, 10]"},
		{NewRange(NegInf, NewBound(99)), "[-∞, 99]"},
		{WidthRange(8, true), "[-128, 127]"},
		{WidthRange(16, false), "[0, 65535]"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}

func TestNewRangeInverted(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewRange accepted an inverted range")
		}
	}()
	Int64Range(3, 2)
}

func TestForType(t *testing.T) {
	tests := []struct {
		t    wyil.Type
		want string
		ok   bool
	}{
		{wyil.Int{}, "[-∞, ∞]", true},
		{wyil.Nominal{Name: "i32"}, "[-2147483648, 2147483647]", true},
		{wyil.Nominal{Name: "u8"}, "[0, 255]", true},
		{wyil.Nominal{Name: "u64"}, "[0, 18446744073709551615]", true},
		{wyil.Nominal{Name: "nat"}, "", false},
		{wyil.Bool{}, "", false},
	}
	for _, tt := range tests {
		r, ok := ForType(tt.t)
		if ok != tt.ok {
			t.Errorf("ForType(%s): got ok = %t, want %t", tt.t, ok, tt.ok)
			continue
		}
		if ok && r.String() != tt.want {
			t.Errorf("ForType(%s) = %s, want %s", tt.t, r, tt.want)
		}
	}
}

// grid is a set of ranges covering the interesting relationships
// between small intervals, including unbounded ones.
var grid = []IntegerRange{
	Top,
	NewRange(NegInf, NewBound(0)),
	NewRange(NewBound(0), PosInf),
	NewRange(NewBound(2), PosInf),
	Int64Range(-3, 3),
	Int64Range(-3, -1),
	Int64Range(0, 0),
	Int64Range(0, 2),
	Int64Range(1, 1),
	Int64Range(1, 4),
	Int64Range(3, 5),
}

const sampleLow, sampleHigh = -6, 6

func member(r IntegerRange, x int64) bool {
	return Contains(r, Int64Range(x, x))
}

func holds(op wyil.Comparator, x, y int64) bool {
	switch op {
	case wyil.EQ:
		return x == y
	case wyil.NEQ:
		return x != y
	case wyil.LT:
		return x < y
	case wyil.LTEQ:
		return x <= y
	case wyil.GT:
		return x > y
	case wyil.GTEQ:
		return x >= y
	default:
		panic(fmt.Sprintf("unhandled comparator %s", op))
	}
}

func TestSplitSound(t *testing.T) {
	for op := wyil.EQ; op <= wyil.GTEQ; op++ {
		for _, a := range grid {
			for _, b := range grid {
				tr, fa := Split(op, a, b)
				for _, o := range []Outcome{tr, fa} {
					if !o.Reachable {
						continue
					}
					if !Contains(a, o.Left) || !Contains(b, o.Right) {
						t.Errorf("%s %s %s: refinement %s, %s loosens an operand", a, op, b, o.Left, o.Right)
					}
				}
				for x := int64(sampleLow); x <= sampleHigh; x++ {
					if !member(a, x) {
						continue
					}
					for y := int64(sampleLow); y <= sampleHigh; y++ {
						if !member(b, y) {
							continue
						}
						o, branch := fa, "false"
						if holds(op, x, y) {
							o, branch = tr, "true"
						}
						if !o.Reachable || !member(o.Left, x) || !member(o.Right, y) {
							t.Errorf("%s %s %s: %s branch with x=%d, y=%d excluded by %+v", a, op, b, branch, x, y, o)
						}
					}
				}
			}
		}
	}
}

func TestSplitNarrows(t *testing.T) {
	i32 := WidthRange(32, true)
	tr, fa := LessThan(i32, Int64Range(100, 100))
	if want := "[-2147483648, 99]"; !tr.Reachable || tr.Left.String() != want {
		t.Errorf("true branch of x < 100: got %+v, want left %s", tr, want)
	}
	if want := "[100, 2147483647]"; !fa.Reachable || fa.Left.String() != want {
		t.Errorf("false branch of x < 100: got %+v, want left %s", fa, want)
	}

	tr, _ = LessThan(Int64Range(5, 10), Int64Range(0, 5))
	if tr.Reachable {
		t.Errorf("[5, 10] < [0, 5] should be unreachable, got %+v", tr)
	}

	tr, fa = GreaterThanOrEquals(Int64Range(0, 10), Int64Range(3, 3))
	if tr.Left.String() != "[3, 10]" || fa.Left.String() != "[0, 2]" {
		t.Errorf("x >= 3 on [0, 10]: got %s and %s", tr.Left, fa.Left)
	}
}

func TestEqualsEmpty(t *testing.T) {
	tr, fa := Equals(Int64Range(0, 2), Int64Range(5, 7))
	if tr.Reachable {
		t.Errorf("equality of disjoint ranges should be unreachable, got %+v", tr)
	}
	if !fa.Reachable || !fa.Left.Equal(Int64Range(0, 2)) || !fa.Right.Equal(Int64Range(5, 7)) {
		t.Errorf("false branch should be unchanged, got %+v", fa)
	}

	tr, fa = NotEquals(Int64Range(0, 2), Int64Range(5, 7))
	if fa.Reachable {
		t.Errorf("false branch of != on disjoint ranges should be unreachable")
	}
	if !tr.Reachable {
		t.Errorf("true branch of != on disjoint ranges should be reachable")
	}
}

func TestUnionContains(t *testing.T) {
	for _, a := range grid {
		for _, b := range grid {
			u := Union(a, b)
			if !Contains(u, a) || !Contains(u, b) {
				t.Errorf("Union(%s, %s) = %s does not contain both", a, b, u)
			}
			if !Union(a, b).Equal(Union(b, a)) {
				t.Errorf("Union(%s, %s) is not commutative", a, b)
			}
			if r, ok := Intersect(a, b); ok {
				if !Contains(a, r) || !Contains(b, r) {
					t.Errorf("Intersect(%s, %s) = %s is not contained in both", a, b, r)
				}
			}
			// Monotonicity: growing an argument never shrinks the union.
			if !Contains(Union(Union(a, b), a), Union(a, b)) {
				t.Errorf("Union is not monotone in %s, %s", a, b)
			}
		}
		if !Contains(Top, a) {
			t.Errorf("Top does not contain %s", a)
		}
		if !Union(a, a).Equal(a) {
			t.Errorf("Union(%s, %s) is not idempotent", a, a)
		}
	}
}
