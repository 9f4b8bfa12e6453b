package vrp

import (
	"fmt"
	"strings"
)

type slot struct {
	r       IntegerRange
	defined bool
}

// A Frame maps each variable slot of a unit to its range, or to nothing
// if the slot is undefined at that point. Frames have a fixed length.
type Frame struct {
	slots []slot
}

// NewFrame returns a frame of n undefined slots.
func NewFrame(n int) *Frame {
	return &Frame{slots: make([]slot, n)}
}

func (f *Frame) Len() int { return len(f.slots) }

func (f *Frame) Write(n int, r IntegerRange) {
	f.slots[n] = slot{r, true}
}

// Undefine removes the mapping of slot n.
func (f *Frame) Undefine(n int) {
	f.slots[n] = slot{}
}

func (f *Frame) Read(n int) (IntegerRange, bool) {
	s := f.slots[n]
	return s.r, s.defined
}

// Havoc resets slot n to Top if it is defined.
func (f *Frame) Havoc(n int) {
	if f.slots[n].defined {
		f.slots[n].r = Top
	}
}

// Join returns the pointwise union of f and o. A slot undefined in
// either frame is undefined in the result.
func (f *Frame) Join(o *Frame) *Frame {
	if len(f.slots) != len(o.slots) {
		panic(fmt.Sprintf("joining frames of length %d and %d", len(f.slots), len(o.slots)))
	}
	out := NewFrame(len(f.slots))
	for i, s := range f.slots {
		t := o.slots[i]
		if s.defined && t.defined {
			out.slots[i] = slot{Union(s.r, t.r), true}
		}
	}
	return out
}

func (f *Frame) Clone() *Frame {
	out := &Frame{slots: make([]slot, len(f.slots))}
	copy(out.slots, f.slots)
	return out
}

func (f *Frame) Equal(o *Frame) bool {
	if len(f.slots) != len(o.slots) {
		return false
	}
	for i, s := range f.slots {
		t := o.slots[i]
		if s.defined != t.defined {
			return false
		}
		if s.defined && !s.r.Equal(t.r) {
			return false
		}
	}
	return true
}

func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	for i, s := range f.slots {
		if !s.defined {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%%%d: %s", i, s.r)
	}
	b.WriteString("}")
	return b.String()
}
