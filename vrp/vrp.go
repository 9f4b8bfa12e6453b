// Package vrp implements an integer range analysis for WyIL units.
//
// The analysis walks a unit's bytecode forward in address order,
// joining frames where control merges and refining the ranges of the
// operands of every conditional branch. Instructions whose effect on
// integer values is not modelled reset their target to the
// unconstrained range; instructions with no transfer function at all
// are reported as errors.
package vrp

import (
	"fmt"
	"log"
	"strings"

	"honnef.co/go/wyec/wyil"
)

const debugging = false

func debugf(f string, args ...any) {
	if debugging {
		log.Printf(f, args...)
	}
}

// DefaultMaxJoins is the number of times the frame at a single program
// point may change before its growing ranges are widened to Top.
const DefaultMaxJoins = 8

type Options struct {
	// MaxJoins overrides DefaultMaxJoins if positive.
	MaxJoins int
}

func (opts Options) maxJoins() int {
	if opts.MaxJoins > 0 {
		return opts.MaxJoins
	}
	return DefaultMaxJoins
}

// UnsupportedInstructionError reports a code for which no transfer
// function exists.
type UnsupportedInstructionError struct {
	Unit  string
	Path  string
	Index wyil.Index
	Code  wyil.Code
}

func (err *UnsupportedInstructionError) Error() string {
	return fmt.Sprintf("%s: #%s: no transfer function for %s", err.Unit, err.Path, err.Code)
}

// Result is the frame map of one unit body.
type Result struct {
	Unit   string
	CFG    *wyil.CFG
	Frames map[wyil.Index]*Frame
}

// Frame returns the frame at program point i. Unreachable points have
// no frame.
func (r *Result) Frame(i wyil.Index) (*Frame, bool) {
	f, ok := r.Frames[i]
	return f, ok
}

// Range returns the union of the ranges of slot n over every program
// point where it is defined.
func (r *Result) Range(n int) (IntegerRange, bool) {
	var out IntegerRange
	found := false
	for _, i := range r.CFG.Points {
		f, ok := r.Frames[i]
		if !ok || n >= f.Len() {
			continue
		}
		rng, ok := f.Read(n)
		if !ok {
			continue
		}
		if !found {
			out, found = rng, true
		} else {
			out = Union(out, rng)
		}
	}
	return out, found
}

func (r *Result) String() string {
	var b strings.Builder
	for _, i := range r.CFG.Points {
		fmt.Fprintf(&b, "#%s\t%s\t", r.CFG.Path(i), i.Code())
		if f, ok := r.Frames[i]; ok {
			b.WriteString(f.String())
		} else {
			b.WriteString("unreachable")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// AnalyzeFunction computes the frame map of the body of fm. The initial
// frame gives every integer parameter the range of its declared type;
// each precondition clause then refines it in turn.
func AnalyzeFunction(fm *wyil.FunctionOrMethod, opts Options) (*Result, error) {
	debugf("Analyzing %s\n", fm.Name)
	f := NewFrame(fm.NumSlots())
	for n, p := range fm.Params {
		if r, ok := ForType(p.Type); ok {
			f.Write(n, r)
		}
	}
	for _, pre := range fm.Precondition {
		a := newAnalyzer(fm.Name, pre, fm.Var, opts)
		if err := a.run(f); err != nil {
			return nil, err
		}
		if a.exit == nil {
			// No clause return is reachable, so neither is the body.
			return &Result{Unit: fm.Name, CFG: wyil.BuildCFG(fm.Code), Frames: map[wyil.Index]*Frame{}}, nil
		}
		f = a.exit
	}
	a := newAnalyzer(fm.Name, fm.Code, fm.Var, opts)
	if err := a.run(f); err != nil {
		return nil, err
	}
	return a.result(), nil
}

// AnalyzeType computes the frame map of the invariant of td. Slot 0
// holds the value being checked.
func AnalyzeType(td *wyil.TypeDecl, opts Options) (*Result, error) {
	debugf("Analyzing type %s\n", td.Name)
	f := NewFrame(td.NumSlots())
	if r, ok := ForType(td.Type); ok {
		f.Write(0, r)
	}
	a := newAnalyzer(td.Name, td.Invariant, td.Var, opts)
	if err := a.run(f); err != nil {
		return nil, err
	}
	return a.result(), nil
}

type analyzer struct {
	unit     string
	vars     func(n int) (wyil.Variable, bool)
	cfg      *wyil.CFG
	frames   map[wyil.Index]*Frame
	changes  map[wyil.Index]int
	maxJoins int

	// pos is the position of the point being walked. restart is the
	// lowest position of an already walked point whose frame changed
	// during the current step, or -1.
	pos     int
	restart int

	// exit is the join of the frames reaching return codes.
	exit *Frame
}

func newAnalyzer(unit string, b *wyil.Block, vars func(int) (wyil.Variable, bool), opts Options) *analyzer {
	return &analyzer{
		unit:     unit,
		vars:     vars,
		cfg:      wyil.BuildCFG(b),
		frames:   map[wyil.Index]*Frame{},
		changes:  map[wyil.Index]int{},
		maxJoins: opts.maxJoins(),
	}
}

func (a *analyzer) result() *Result {
	return &Result{Unit: a.unit, CFG: a.cfg, Frames: a.frames}
}

func (a *analyzer) run(init *Frame) error {
	entry, ok := a.cfg.Entry()
	if !ok {
		return nil
	}
	a.frames[entry] = init.Clone()
	for a.pos = 0; a.pos < len(a.cfg.Points); a.pos++ {
		i := a.cfg.Points[a.pos]
		f, ok := a.frames[i]
		if !ok {
			continue
		}
		a.restart = -1
		if err := a.transfer(i, f.Clone()); err != nil {
			return err
		}
		if a.restart != -1 {
			debugf("restarting at #%s\n", a.cfg.Path(a.cfg.Points[a.restart]))
			a.pos = a.restart - 1
		}
	}
	return nil
}

// transfer applies the effect of the code at i to f, which it owns, and
// propagates the resulting frames to the successors of i.
func (a *analyzer) transfer(i wyil.Index, f *Frame) error {
	debugf("transfer(%s) on %s", i.Code(), f)
	switch c := i.Code().(type) {
	case *wyil.Const:
		if r, ok := Of(c.Constant); ok {
			f.Write(c.Target, r)
		} else {
			f.Undefine(c.Target)
		}
		a.fallThrough(i, f)
	case *wyil.Assign:
		if r, ok := f.Read(c.Operand); ok {
			f.Write(c.Target, r)
		} else if a.isInteger(c.Operand) && a.isInteger(c.Target) {
			// The source holds an integer the frame does not track.
			f.Write(c.Target, Top)
		} else {
			f.Undefine(c.Target)
		}
		a.fallThrough(i, f)
	case *wyil.Goto:
		a.jump(c.Target, f)
	case *wyil.If:
		a.branch(i, c, f)
	case *wyil.Switch:
		a.switchOn(c, f)
	case *wyil.Label, *wyil.Nop, *wyil.Debug:
		a.fallThrough(i, f)
	case *wyil.Loop:
		if j, ok := a.cfg.Enter(i); ok {
			a.joinInto(j, f)
		}
	case *wyil.Return:
		if a.exit == nil {
			a.exit = f
		} else {
			a.exit = a.exit.Join(f)
		}
	case *wyil.Fail:
	case *wyil.Invoke, *wyil.IndirectInvoke, *wyil.Invert, *wyil.Lambda,
		*wyil.Dereference, *wyil.NewObject, *wyil.SetOperator, *wyil.ListOperator,
		*wyil.BinaryOperator, *wyil.UnaryOperator, *wyil.Convert, *wyil.NewList,
		*wyil.NewRecord, *wyil.NewSet, *wyil.NewMap, *wyil.NewTuple:
		op, _ := wyil.AsOperation(c)
		if op.Target != wyil.NoSlot {
			a.havoc(f, op.Target)
		}
		a.fallThrough(i, f)
	case *wyil.FieldLoad, *wyil.TupleLoad, *wyil.IndexOf, *wyil.LengthOf,
		*wyil.SubList, *wyil.Update:
		return &UnsupportedInstructionError{a.unit, a.cfg.Path(i), i, c}
	default:
		panic(fmt.Sprintf("unhandled code %T", c))
	}
	return nil
}

// havoc resets the target of a code whose result is not modelled. An
// integer variable becomes Top even if it was undefined, so that its
// range covers the value it now holds.
func (a *analyzer) havoc(f *Frame, n int) {
	if a.isInteger(n) {
		f.Write(n, Top)
		return
	}
	f.Havoc(n)
}

func (a *analyzer) isInteger(n int) bool {
	v, ok := a.vars(n)
	return ok && wyil.IsInteger(v.Type)
}

func (a *analyzer) branch(i wyil.Index, c *wyil.If, f *Frame) {
	l, lok := f.Read(c.Left)
	r, rok := f.Read(c.Right)
	if !lok || !rok {
		a.jump(c.Target, f.Clone())
		a.fallThrough(i, f)
		return
	}
	t, e := Split(c.Op, l, r)
	if t.Reachable {
		tf := f.Clone()
		if refine(tf, c.Left, c.Right, t) {
			a.jump(c.Target, tf)
		}
	}
	if e.Reachable && refine(f, c.Left, c.Right, e) {
		a.fallThrough(i, f)
	}
}

// refine writes the operand refinements of o into f. It reports false
// if the refinements are contradictory.
func refine(f *Frame, left, right int, o Outcome) bool {
	if left == right {
		r, ok := Intersect(o.Left, o.Right)
		if !ok {
			return false
		}
		f.Write(left, r)
		return true
	}
	f.Write(left, o.Left)
	f.Write(right, o.Right)
	return true
}

func (a *analyzer) switchOn(c *wyil.Switch, f *Frame) {
	operand, defined := f.Read(c.Operand)
	for _, cs := range c.Cases {
		cf := f.Clone()
		if defined {
			if v, ok := Of(cs.Value); ok {
				r, ok := Intersect(operand, v)
				if !ok {
					continue
				}
				cf.Write(c.Operand, r)
			}
		}
		a.jump(cs.Target, cf)
	}
	a.jump(c.Default, f)
}

func (a *analyzer) fallThrough(i wyil.Index, f *Frame) {
	if j, ok := a.cfg.Next(i); ok {
		a.joinInto(j, f)
	}
}

func (a *analyzer) jump(label string, f *Frame) {
	j, ok := a.cfg.Label(label)
	if !ok {
		panic(fmt.Sprintf("unresolved label %s in %s", label, a.unit))
	}
	a.joinInto(j, f)
}

// joinInto merges f, which it takes ownership of, into the frame at j.
func (a *analyzer) joinInto(j wyil.Index, f *Frame) {
	old, ok := a.frames[j]
	if !ok {
		a.frames[j] = f
		a.changed(j)
		return
	}
	nf := old.Join(f)
	if nf.Equal(old) {
		return
	}
	a.changes[j]++
	if a.changes[j] > a.maxJoins {
		widen(nf, old)
	}
	debugf("join at #%s: %s ∨ %s = %s", a.cfg.Path(j), old, f, nf)
	a.frames[j] = nf
	a.changed(j)
}

func (a *analyzer) changed(j wyil.Index) {
	n := a.cfg.Order(j)
	if n <= a.pos && (a.restart == -1 || n < a.restart) {
		a.restart = n
	}
}

// widen sets every slot of f whose range differs from old to Top.
func widen(f, old *Frame) {
	for n := 0; n < f.Len(); n++ {
		r, ok := f.Read(n)
		if !ok {
			continue
		}
		if o, ok := old.Read(n); ok && o.Equal(r) {
			continue
		}
		f.Write(n, Top)
	}
}
