package cgen

import (
	"fmt"
	"strings"

	"honnef.co/go/wyec/wyil"
)

// needsBrackets reports whether e must be bracketed when it is the
// operand of an operator or a field access.
func needsBrackets(e wyil.Expr) bool {
	switch e.(type) {
	case *wyil.BinaryExpr, *wyil.ConvertExpr, *wyil.NewExpr, *wyil.DerefExpr, *wyil.IsExpr:
		return true
	default:
		return false
	}
}

func (u *unitWriter) operand(e wyil.Expr) string {
	if needsBrackets(e) {
		return "(" + u.expr(e) + ")"
	}
	return u.expr(e)
}

func (u *unitWriter) exprs(es []wyil.Expr) string {
	s := make([]string, len(es))
	for i, e := range es {
		s[i] = u.expr(e)
	}
	return strings.Join(s, ", ")
}

func (u *unitWriter) constant(c wyil.Constant) string {
	switch c := c.(type) {
	case wyil.IntConst:
		return c.Value.String()
	case wyil.BoolConst:
		if c.Value {
			return "true"
		}
		return "false"
	case wyil.NullConst:
		return "NULL"
	default:
		panic(fmt.Sprintf("unhandled constant %T", c))
	}
}

func (u *unitWriter) expr(e wyil.Expr) string {
	switch e := e.(type) {
	case *wyil.ConstExpr:
		return u.constant(e.Value)
	case *wyil.VarExpr:
		return u.varName(e.Var)
	case *wyil.UnaryExpr:
		if !e.Op.IsUnary() {
			panic(fmt.Sprintf("binary operator %s in unary expression", e.Op))
		}
		x := u.operand(e.X)
		if e.Op == wyil.Neg && strings.HasPrefix(x, "-") {
			// Keep "- -x" from printing as a decrement.
			return "- " + x
		}
		return e.Op.String() + x
	case *wyil.BinaryExpr:
		if e.Op.IsUnary() {
			panic(fmt.Sprintf("unary operator %s in binary expression", e.Op))
		}
		return u.operand(e.X) + " " + e.Op.String() + " " + u.operand(e.Y)
	case *wyil.ConvertExpr:
		return "(" + u.typeName(e.Type) + ") " + u.operand(e.X)
	case *wyil.DerefExpr:
		return "*" + u.operand(e.X)
	case *wyil.FieldExpr:
		return u.operand(e.X) + "." + e.Name
	case *wyil.LengthExpr:
		return u.operand(e.X) + ".length"
	case *wyil.IndexExpr:
		return u.operand(e.X) + ".data[" + u.expr(e.Index) + "]"
	case *wyil.ArrayLit:
		return "{" + u.exprs(e.Elems) + "}"
	case *wyil.ArrayGenExpr:
		return "arr_gen(" + u.expr(e.Value) + ", " + u.expr(e.Len) + ")"
	case *wyil.RecordLit:
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = "." + f.Name + " = " + u.expr(f.Value)
		}
		return "{" + strings.Join(fields, ", ") + "}"
	case *wyil.InvokeExpr:
		return e.Name + "(" + u.exprs(e.Args) + ")"
	case *wyil.IndirectInvokeExpr:
		return u.operand(e.Fn) + "(" + u.exprs(e.Args) + ")"
	case *wyil.NewExpr:
		return "new " + u.operand(e.X)
	case *wyil.LambdaExpr:
		u.unsupported("lambda expression")
		return ""
	case *wyil.QuantifierExpr:
		u.unsupported("quantifier")
		return ""
	case *wyil.IsExpr:
		u.unsupported("type test")
		return ""
	default:
		panic(fmt.Sprintf("unhandled expression %T", e))
	}
}
