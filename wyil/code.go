package wyil

import (
	"fmt"
	"strings"
)

// NoSlot marks a code operand or target that is absent, such as the
// target of a call whose result is discarded.
const NoSlot = -1

// A Code is a single bytecode instruction. The set of codes is closed.
//
// Control transfers name their destination by label; the label table
// built by BuildLabelMap resolves labels to program points.
type Code interface {
	String() string
	code()
}

// Comparator is the comparison performed by an If code.
type Comparator int

const (
	EQ Comparator = iota
	NEQ
	LT
	LTEQ
	GT
	GTEQ
)

var comparatorNames = [...]string{
	EQ:   "eq",
	NEQ:  "ne",
	LT:   "lt",
	LTEQ: "le",
	GT:   "gt",
	GTEQ: "ge",
}

func (op Comparator) String() string {
	if op < 0 || int(op) >= len(comparatorNames) {
		return fmt.Sprintf("Comparator(%d)", int(op))
	}
	return comparatorNames[op]
}

// ParseComparator returns the comparator with the given mnemonic.
func ParseComparator(s string) (Comparator, bool) {
	for i, name := range comparatorNames {
		if name == s {
			return Comparator(i), true
		}
	}
	return 0, false
}

// Const loads a constant into Target.
type Const struct {
	Target   int
	Constant Constant
}

// Assign copies Operand into Target.
type Assign struct {
	Target  int
	Operand int
}

type Goto struct {
	Target string
}

// If branches to Target when Left Op Right holds and falls through
// otherwise.
type If struct {
	Left, Right int
	Op          Comparator
	Target      string
}

type Case struct {
	Value  Constant
	Target string
}

// Switch branches to the first case whose value equals Operand, or to
// Default.
type Switch struct {
	Operand int
	Cases   []Case
	Default string
}

type Label struct {
	Name string
}

type Nop struct{}

type Debug struct {
	Operand int
}

type Return struct {
	Operands []int
}

type Fail struct{}

// Loop repeatedly executes Body. Control leaves a loop only through an
// explicit jump; falling off the end of Body returns to the Loop code.
type Loop struct {
	Body *Block
}

func (*Const) code()  {}
func (*Assign) code() {}
func (*Goto) code()   {}
func (*If) code()     {}
func (*Switch) code() {}
func (*Label) code()  {}
func (*Nop) code()    {}
func (*Debug) code()  {}
func (*Return) code() {}
func (*Fail) code()   {}
func (*Loop) code()   {}

func (c *Const) String() string  { return fmt.Sprintf("const %s = %s", slot(c.Target), c.Constant) }
func (c *Assign) String() string { return fmt.Sprintf("assign %s = %s", slot(c.Target), slot(c.Operand)) }
func (c *Goto) String() string   { return "goto " + c.Target }
func (c *If) String() string {
	return fmt.Sprintf("if %s %s %s goto %s", slot(c.Left), c.Op, slot(c.Right), c.Target)
}
func (c *Label) String() string { return c.Name + ":" }
func (*Nop) String() string      { return "nop" }
func (c *Debug) String() string { return "debug " + slot(c.Operand) }
func (*Fail) String() string     { return "fail" }
func (*Loop) String() string     { return "loop" }

func (c *Switch) String() string {
	var b strings.Builder
	b.WriteString("switch ")
	b.WriteString(slot(c.Operand))
	for _, cs := range c.Cases {
		fmt.Fprintf(&b, " %s:%s", cs.Value, cs.Target)
	}
	b.WriteString(" default:")
	b.WriteString(c.Default)
	return b.String()
}

func (c *Return) String() string {
	if len(c.Operands) == 0 {
		return "return"
	}
	return "return " + slots(c.Operands)
}

func slot(n int) string {
	if n == NoSlot {
		return "_"
	}
	return fmt.Sprintf("%%%d", n)
}

func slots(ns []int) string {
	s := make([]string, len(ns))
	for i, n := range ns {
		s[i] = slot(n)
	}
	return strings.Join(s, ", ")
}

// Operation is the common shape of the codes that compute a value the
// range analysis does not model: an optional target, a list of operand
// slots, and an auxiliary operand such as a callee, field or operator
// name.
type Operation struct {
	Target   int
	Operands []int
	Aux      string
}

func (op *Operation) operation() *Operation { return op }

func (op *Operation) format(mnemonic string) string {
	var b strings.Builder
	b.WriteString(mnemonic)
	if op.Aux != "" {
		b.WriteString(".")
		b.WriteString(op.Aux)
	}
	b.WriteString(" ")
	b.WriteString(slot(op.Target))
	if len(op.Operands) > 0 {
		b.WriteString(" = ")
		b.WriteString(slots(op.Operands))
	}
	return b.String()
}

// Operand-computing codes whose result the range analysis havocs.
type (
	Invoke         struct{ Operation }
	IndirectInvoke struct{ Operation }
	Invert         struct{ Operation }
	Lambda         struct{ Operation }
	Dereference    struct{ Operation }
	NewObject      struct{ Operation }
	SetOperator    struct{ Operation }
	ListOperator   struct{ Operation }
	BinaryOperator struct{ Operation }
	UnaryOperator  struct{ Operation }
	Convert        struct{ Operation }
	NewList        struct{ Operation }
	NewRecord      struct{ Operation }
	NewSet         struct{ Operation }
	NewMap         struct{ Operation }
	NewTuple       struct{ Operation }
)

// Field and element access codes. No range transfer exists for them.
type (
	FieldLoad struct{ Operation }
	TupleLoad struct{ Operation }
	IndexOf   struct{ Operation }
	LengthOf  struct{ Operation }
	SubList   struct{ Operation }
	Update    struct{ Operation }
)

func (*Invoke) code()         {}
func (*IndirectInvoke) code() {}
func (*Invert) code()         {}
func (*Lambda) code()         {}
func (*Dereference) code()    {}
func (*NewObject) code()      {}
func (*SetOperator) code()    {}
func (*ListOperator) code()   {}
func (*BinaryOperator) code() {}
func (*UnaryOperator) code()  {}
func (*Convert) code()        {}
func (*NewList) code()        {}
func (*NewRecord) code()      {}
func (*NewSet) code()         {}
func (*NewMap) code()         {}
func (*NewTuple) code()       {}
func (*FieldLoad) code()      {}
func (*TupleLoad) code()      {}
func (*IndexOf) code()        {}
func (*LengthOf) code()       {}
func (*SubList) code()        {}
func (*Update) code()         {}

func (c *Invoke) String() string         { return c.format("invoke") }
func (c *IndirectInvoke) String() string { return c.format("indirectinvoke") }
func (c *Invert) String() string         { return c.format("invert") }
func (c *Lambda) String() string         { return c.format("lambda") }
func (c *Dereference) String() string    { return c.format("deref") }
func (c *NewObject) String() string      { return c.format("newobject") }
func (c *SetOperator) String() string    { return c.format("setop") }
func (c *ListOperator) String() string   { return c.format("listop") }
func (c *BinaryOperator) String() string { return c.format("binop") }
func (c *UnaryOperator) String() string  { return c.format("unop") }
func (c *Convert) String() string        { return c.format("convert") }
func (c *NewList) String() string        { return c.format("newlist") }
func (c *NewRecord) String() string      { return c.format("newrecord") }
func (c *NewSet) String() string         { return c.format("newset") }
func (c *NewMap) String() string         { return c.format("newmap") }
func (c *NewTuple) String() string       { return c.format("newtuple") }
func (c *FieldLoad) String() string      { return c.format("fieldload") }
func (c *TupleLoad) String() string      { return c.format("tupleload") }
func (c *IndexOf) String() string        { return c.format("indexof") }
func (c *LengthOf) String() string       { return c.format("lengthof") }
func (c *SubList) String() string        { return c.format("sublist") }
func (c *Update) String() string         { return c.format("update") }

// NewOperation returns the operation code with the given mnemonic, as
// printed by its String method.
func NewOperation(mnemonic string, op Operation) (Code, bool) {
	switch mnemonic {
	case "invoke":
		return &Invoke{op}, true
	case "indirectinvoke":
		return &IndirectInvoke{op}, true
	case "invert":
		return &Invert{op}, true
	case "lambda":
		return &Lambda{op}, true
	case "deref":
		return &Dereference{op}, true
	case "newobject":
		return &NewObject{op}, true
	case "setop":
		return &SetOperator{op}, true
	case "listop":
		return &ListOperator{op}, true
	case "binop":
		return &BinaryOperator{op}, true
	case "unop":
		return &UnaryOperator{op}, true
	case "convert":
		return &Convert{op}, true
	case "newlist":
		return &NewList{op}, true
	case "newrecord":
		return &NewRecord{op}, true
	case "newset":
		return &NewSet{op}, true
	case "newmap":
		return &NewMap{op}, true
	case "newtuple":
		return &NewTuple{op}, true
	case "fieldload":
		return &FieldLoad{op}, true
	case "tupleload":
		return &TupleLoad{op}, true
	case "indexof":
		return &IndexOf{op}, true
	case "lengthof":
		return &LengthOf{op}, true
	case "sublist":
		return &SubList{op}, true
	case "update":
		return &Update{op}, true
	default:
		return nil, false
	}
}

// AsOperation returns the Operation embedded in c, if any.
func AsOperation(c Code) (*Operation, bool) {
	op, ok := c.(interface{ operation() *Operation })
	if !ok {
		return nil, false
	}
	return op.operation(), true
}

// Slots returns the slots c writes and the slots c reads. NoSlot
// entries are omitted.
func Slots(c Code) (defs, uses []int) {
	add := func(s []int, n int) []int {
		if n == NoSlot {
			return s
		}
		return append(s, n)
	}
	switch c := c.(type) {
	case *Const:
		defs = add(defs, c.Target)
	case *Assign:
		defs = add(defs, c.Target)
		uses = add(uses, c.Operand)
	case *If:
		uses = add(uses, c.Left)
		uses = add(uses, c.Right)
	case *Switch:
		uses = add(uses, c.Operand)
	case *Debug:
		uses = add(uses, c.Operand)
	case *Return:
		for _, n := range c.Operands {
			uses = add(uses, n)
		}
	case *Goto, *Label, *Nop, *Fail, *Loop:
	default:
		op, ok := AsOperation(c)
		if !ok {
			panic(fmt.Sprintf("unhandled code %T", c))
		}
		defs = add(defs, op.Target)
		for _, n := range op.Operands {
			uses = add(uses, n)
		}
	}
	return defs, uses
}
