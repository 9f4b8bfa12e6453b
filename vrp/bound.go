package vrp

import "math/big"

// A Bound is an integer extended with negative and positive infinity.
// Bounds are immutable.
type Bound struct {
	infinity int8
	integer  *big.Int
}

var NegInf = Bound{infinity: -1}
var PosInf = Bound{infinity: 1}

func NewBound(n int64) Bound {
	return NewBigBound(big.NewInt(n))
}

// NewBigBound returns the finite bound n. n must not be modified
// afterwards.
func NewBigBound(n *big.Int) Bound {
	return Bound{integer: n}
}

func (b1 Bound) Infinite() bool {
	return b1.infinity != 0
}

// Int returns the value of a finite bound, or nil.
func (b1 Bound) Int() *big.Int {
	if b1.Infinite() {
		return nil
	}
	return new(big.Int).Set(b1.integer)
}

// Inc returns b1+1. Infinite bounds are unchanged.
func (b1 Bound) Inc() Bound {
	if b1.Infinite() {
		return b1
	}
	return NewBigBound(new(big.Int).Add(b1.integer, big.NewInt(1)))
}

// Dec returns b1-1. Infinite bounds are unchanged.
func (b1 Bound) Dec() Bound {
	if b1.Infinite() {
		return b1
	}
	return NewBigBound(new(big.Int).Sub(b1.integer, big.NewInt(1)))
}

func (b1 Bound) Sign() int {
	if b1.infinity != 0 {
		return int(b1.infinity)
	}
	return b1.integer.Sign()
}

func (b1 Bound) Cmp(b2 Bound) int {
	if b1.infinity == b2.infinity && b1.infinity != 0 {
		return 0
	}
	if b1 == PosInf {
		return 1
	}
	if b1 == NegInf {
		return -1
	}
	if b2 == NegInf {
		return 1
	}
	if b2 == PosInf {
		return -1
	}
	return b1.integer.Cmp(b2.integer)
}

func (b1 Bound) String() string {
	if b1 == NegInf {
		return "-∞"
	}
	if b1 == PosInf {
		return "∞"
	}
	return b1.integer.String()
}

func MinBound(bs ...Bound) Bound {
	if len(bs) == 0 {
		panic("MinBound called with no arguments")
	}
	ret := bs[0]
	for _, b := range bs[1:] {
		if b.Cmp(ret) == -1 {
			ret = b
		}
	}
	return ret
}

func MaxBound(bs ...Bound) Bound {
	if len(bs) == 0 {
		panic("MaxBound called with no arguments")
	}
	ret := bs[0]
	for _, b := range bs[1:] {
		if b.Cmp(ret) == 1 {
			ret = b
		}
	}
	return ret
}
