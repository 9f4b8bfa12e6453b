package vrp

import "testing"

func frameOf(rs ...*IntegerRange) *Frame {
	f := NewFrame(len(rs))
	for n, r := range rs {
		if r != nil {
			f.Write(n, *r)
		}
	}
	return f
}

func rng(low, high int64) *IntegerRange {
	r := Int64Range(low, high)
	return &r
}

func TestFrameJoin(t *testing.T) {
	a := frameOf(rng(0, 5), rng(1, 1), nil, rng(3, 3))
	b := frameOf(rng(7, 9), nil, rng(2, 2), rng(3, 3))

	j := a.Join(b)
	if got, want := j.String(), "{%0: [0, 9], %3: [3, 3]}"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if !j.Equal(b.Join(a)) {
		t.Errorf("Join is not commutative")
	}
	if !a.Join(a).Equal(a) {
		t.Errorf("Join is not idempotent: %s", a.Join(a))
	}
	// Join must not modify its operands.
	if got, want := a.String(), "{%0: [0, 5], %1: [1, 1], %3: [3, 3]}"; got != want {
		t.Errorf("Join modified its receiver: got %s, want %s", got, want)
	}
}

func TestFrameJoinLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("joining frames of different lengths did not panic")
		}
	}()
	NewFrame(1).Join(NewFrame(2))
}

func TestFrameHavoc(t *testing.T) {
	f := frameOf(rng(0, 5), nil)
	f.Havoc(0)
	f.Havoc(1)
	if r, ok := f.Read(0); !ok || !r.IsTop() {
		t.Errorf("havocked slot: got %s, %t, want Top", r, ok)
	}
	if _, ok := f.Read(1); ok {
		t.Errorf("havoc defined an undefined slot")
	}
}

func TestFrameClone(t *testing.T) {
	f := frameOf(rng(0, 5))
	c := f.Clone()
	c.Write(0, Top)
	if r, _ := f.Read(0); !r.Equal(Int64Range(0, 5)) {
		t.Errorf("writing to a clone changed the original: %s", r)
	}
	if f.Equal(c) {
		t.Errorf("frames with different ranges compare equal")
	}
	c.Undefine(0)
	if _, ok := c.Read(0); ok {
		t.Errorf("Undefine left the slot defined")
	}
	if c.Equal(NewFrame(2)) {
		t.Errorf("frames of different lengths compare equal")
	}
}
