package vrp

import (
	"fmt"
	"math/big"

	"honnef.co/go/wyec/wyil"
)

// An IntegerRange is the closed, non-empty interval [Low, High] of the
// integers a slot may hold. The zero value is not a valid range.
type IntegerRange struct {
	low, high Bound
}

// Top is the unconstrained range.
var Top = IntegerRange{NegInf, PosInf}

// NewRange returns [low, high]. It panics if low > high.
func NewRange(low, high Bound) IntegerRange {
	if low.Cmp(high) == 1 {
		panic(fmt.Sprintf("inverted range [%s, %s]", low, high))
	}
	return IntegerRange{low, high}
}

func Singleton(n *big.Int) IntegerRange {
	b := NewBigBound(n)
	return IntegerRange{b, b}
}

func Int64Range(low, high int64) IntegerRange {
	return NewRange(NewBound(low), NewBound(high))
}

// WidthRange returns the range representable by a two's complement
// integer of the given width.
func WidthRange(bits int, signed bool) IntegerRange {
	one := big.NewInt(1)
	if signed {
		max := new(big.Int).Lsh(one, uint(bits-1))
		min := new(big.Int).Neg(max)
		max.Sub(max, one)
		return IntegerRange{NewBigBound(min), NewBigBound(max)}
	}
	max := new(big.Int).Lsh(one, uint(bits))
	max.Sub(max, one)
	return IntegerRange{NewBound(0), NewBigBound(max)}
}

// ForType returns the range of values of type t. The unbounded int type
// maps to Top and the fixed-width nominal integer types to their
// representable ranges. Other types have no range.
func ForType(t wyil.Type) (IntegerRange, bool) {
	switch t := t.(type) {
	case wyil.Int:
		return Top, true
	case wyil.Nominal:
		bits, signed, ok := t.IntegerBits()
		if !ok {
			return IntegerRange{}, false
		}
		return WidthRange(bits, signed), true
	default:
		return IntegerRange{}, false
	}
}

// Of returns the singleton range of an integer constant.
func Of(c wyil.Constant) (IntegerRange, bool) {
	ic, ok := c.(wyil.IntConst)
	if !ok {
		return IntegerRange{}, false
	}
	return Singleton(new(big.Int).Set(ic.Value)), true
}

func (r IntegerRange) Low() Bound  { return r.low }
func (r IntegerRange) High() Bound { return r.high }

func (r IntegerRange) IsTop() bool {
	return r.low == NegInf && r.high == PosInf
}

func (r IntegerRange) Equal(o IntegerRange) bool {
	return r.low.Cmp(o.low) == 0 && r.high.Cmp(o.high) == 0
}

func (r IntegerRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.low, r.high)
}

// Union returns the smallest range containing both a and b.
func Union(a, b IntegerRange) IntegerRange {
	return IntegerRange{MinBound(a.low, b.low), MaxBound(a.high, b.high)}
}

// Contains reports whether b is a subset of a.
func Contains(a, b IntegerRange) bool {
	return b.low.Cmp(a.low) >= 0 && b.high.Cmp(a.high) <= 0
}

// Intersect returns the intersection of a and b. It reports false if
// the intersection is empty.
func Intersect(a, b IntegerRange) (IntegerRange, bool) {
	return clamp(MaxBound(a.low, b.low), MinBound(a.high, b.high))
}

func clamp(low, high Bound) (IntegerRange, bool) {
	if low.Cmp(high) == 1 {
		return IntegerRange{}, false
	}
	return IntegerRange{low, high}, true
}

// An Outcome is the refinement of the two operands of a comparison on
// one branch. If Reachable is false, no values of the operands satisfy
// the branch and Left and Right are meaningless.
type Outcome struct {
	Left, Right IntegerRange
	Reachable   bool
}

func unchanged(a, b IntegerRange) Outcome {
	return Outcome{a, b, true}
}

func outcome(aLow, aHigh, bLow, bHigh Bound) Outcome {
	l, ok1 := clamp(aLow, aHigh)
	r, ok2 := clamp(bLow, bHigh)
	if !ok1 || !ok2 {
		return Outcome{}
	}
	return Outcome{l, r, true}
}

func (o Outcome) swap() Outcome {
	return Outcome{o.Right, o.Left, o.Reachable}
}

// The splitters refine the operands a and b of a comparison, returning
// the refinement on the branch where the comparison holds and on the
// branch where it does not. Every refined range is a subset of the
// corresponding operand.

func Equals(a, b IntegerRange) (t, f Outcome) {
	if r, ok := Intersect(a, b); ok {
		t = Outcome{r, r, true}
	}
	return t, unchanged(a, b)
}

func NotEquals(a, b IntegerRange) (t, f Outcome) {
	f, t = Equals(a, b)
	return t, f
}

// lt refines a and b under a < b.
func lt(a, b IntegerRange) Outcome {
	return outcome(a.low, MinBound(a.high, b.high.Dec()), MaxBound(b.low, a.low.Inc()), b.high)
}

// le refines a and b under a <= b.
func le(a, b IntegerRange) Outcome {
	return outcome(a.low, MinBound(a.high, b.high), MaxBound(b.low, a.low), b.high)
}

func LessThan(a, b IntegerRange) (t, f Outcome) {
	return lt(a, b), le(b, a).swap()
}

func LessThanOrEquals(a, b IntegerRange) (t, f Outcome) {
	return le(a, b), lt(b, a).swap()
}

func GreaterThan(a, b IntegerRange) (t, f Outcome) {
	return lt(b, a).swap(), le(a, b)
}

func GreaterThanOrEquals(a, b IntegerRange) (t, f Outcome) {
	return le(b, a).swap(), lt(a, b)
}

// Split applies the splitter for op.
func Split(op wyil.Comparator, a, b IntegerRange) (t, f Outcome) {
	switch op {
	case wyil.EQ:
		return Equals(a, b)
	case wyil.NEQ:
		return NotEquals(a, b)
	case wyil.LT:
		return LessThan(a, b)
	case wyil.LTEQ:
		return LessThanOrEquals(a, b)
	case wyil.GT:
		return GreaterThan(a, b)
	case wyil.GTEQ:
		return GreaterThanOrEquals(a, b)
	default:
		panic(fmt.Sprintf("unhandled comparator %s", op))
	}
}
