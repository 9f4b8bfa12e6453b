package wyil

import (
	"math/big"
	"strconv"
)

// A Constant is a literal value.
type Constant interface {
	String() string
	constant()
}

type IntConst struct {
	Value *big.Int
}

type BoolConst struct {
	Value bool
}

type NullConst struct{}

func (IntConst) constant()  {}
func (BoolConst) constant() {}
func (NullConst) constant() {}

func (c IntConst) String() string  { return c.Value.String() }
func (c BoolConst) String() string { return strconv.FormatBool(c.Value) }
func (NullConst) String() string   { return "null" }

// NewInt returns the integer constant n.
func NewInt(n int64) IntConst {
	return IntConst{Value: big.NewInt(n)}
}
