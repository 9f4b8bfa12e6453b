package wyil

import "fmt"

// MalformedError reports a unit that violates the structural rules the
// analysis relies on.
type MalformedError struct {
	Unit string
	Msg  string
}

func (err *MalformedError) Error() string {
	return fmt.Sprintf("%s: malformed unit: %s", err.Unit, err.Msg)
}

type unit interface {
	DeclName() string
	NumSlots() int
}

// Check verifies that every label of every unit in f resolves, that no
// label is defined twice within one block tree and that every slot is
// in range. It returns the first violation found.
func Check(f *File) error {
	seen := map[string]bool{}
	for _, d := range f.Decls {
		if seen[d.DeclName()] {
			return &MalformedError{d.DeclName(), "declared more than once"}
		}
		seen[d.DeclName()] = true

		var err error
		switch d := d.(type) {
		case *FunctionOrMethod:
			err = checkFunction(d)
		case *TypeDecl:
			err = checkBlock(d, d.Invariant)
		default:
			panic(fmt.Sprintf("unhandled declaration %T", d))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func checkFunction(fm *FunctionOrMethod) error {
	for _, b := range fm.Precondition {
		if err := checkBlock(fm, b); err != nil {
			return err
		}
	}
	if err := checkBlock(fm, fm.Code); err != nil {
		return err
	}
	var err error
	Inspect(fm.Body, func(node any) bool {
		if err != nil {
			return false
		}
		var n int
		switch node := node.(type) {
		case *DeclStmt:
			n = node.Var
		case *AliasStmt:
			n = node.Var
		case *VarExpr:
			n = node.Var
		case *QuantifierExpr:
			n = node.Var
		default:
			return true
		}
		if n < 0 || n >= fm.NumSlots() {
			err = &MalformedError{fm.Name, fmt.Sprintf("variable %d out of range", n)}
		}
		return true
	})
	return err
}

func checkBlock(u unit, b *Block) error {
	if b == nil {
		return nil
	}
	malformed := func(i Index, format string, args ...any) error {
		return &MalformedError{u.DeclName(), fmt.Sprintf("%s: ", i.Code()) + fmt.Sprintf(format, args...)}
	}

	labels := map[string]bool{}
	var err error
	b.Walk(func(i Index) {
		if l, ok := i.Code().(*Label); ok && err == nil {
			if labels[l.Name] {
				err = malformed(i, "label %s defined more than once", l.Name)
			}
			labels[l.Name] = true
		}
	})
	if err != nil {
		return err
	}

	b.Walk(func(i Index) {
		if err != nil {
			return
		}
		c := i.Code()
		if c == nil {
			err = &MalformedError{u.DeclName(), "nil code"}
			return
		}
		var targets []string
		switch c := c.(type) {
		case *Goto:
			targets = []string{c.Target}
		case *If:
			if c.Left == NoSlot || c.Right == NoSlot {
				err = malformed(i, "missing operand")
				return
			}
			targets = []string{c.Target}
		case *Switch:
			for _, cs := range c.Cases {
				targets = append(targets, cs.Target)
			}
			targets = append(targets, c.Default)
		case *Const:
			if c.Target == NoSlot {
				err = malformed(i, "missing target")
				return
			}
		case *Assign:
			if c.Target == NoSlot || c.Operand == NoSlot {
				err = malformed(i, "missing operand")
				return
			}
		}
		for _, t := range targets {
			if !labels[t] {
				err = malformed(i, "unresolved label %s", t)
				return
			}
		}
		defs, uses := Slots(c)
		for _, n := range append(defs, uses...) {
			if n < 0 || n >= u.NumSlots() {
				err = malformed(i, "slot %d out of range", n)
				return
			}
		}
	})
	return err
}
