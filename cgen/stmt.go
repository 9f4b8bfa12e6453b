package cgen

import (
	"fmt"
	"strings"

	"honnef.co/go/wyec/wyil"
)

func (u *unitWriter) stmt(s wyil.Stmt) {
	switch s := s.(type) {
	case *wyil.BlockStmt:
		u.line("{")
		u.block(s)
		u.line("}")
	case *wyil.DeclStmt:
		if s.Init == nil {
			u.line("%s %s;", u.varType(s.Var), u.varName(s.Var))
		} else {
			u.line("%s %s = %s;", u.varType(s.Var), u.varName(s.Var), u.expr(s.Init))
		}
	case *wyil.AliasStmt:
		// C has no aliases for variables.
		u.line("// alias %s %s", u.varType(s.Var), u.varName(s.Var))
	case *wyil.AssignStmt:
		u.assign(s)
	case *wyil.AssertStmt:
		u.line("assert(%s);", u.expr(s.Cond))
	case *wyil.AssumeStmt:
		u.line("assume(%s);", u.expr(s.Cond))
	case *wyil.BreakStmt:
		u.line("break;")
	case *wyil.ContinueStmt:
		u.line("continue;")
	case *wyil.DebugStmt:
		// Debug output has no C counterpart.
	case *wyil.DoWhileStmt:
		u.line("do {")
		u.block(s.Body)
		u.line("} while(%s);", u.expr(s.Cond))
	case *wyil.FailStmt:
		u.line("fail();")
	case *wyil.IfStmt:
		u.line("if(%s) {", u.expr(s.Cond))
		u.block(s.Then)
		if s.Else != nil {
			u.line("} else {")
			u.block(s.Else)
		}
		u.line("}")
	case *wyil.CallStmt:
		switch s.Call.(type) {
		case *wyil.InvokeExpr, *wyil.IndirectInvokeExpr:
			u.line("%s;", u.expr(s.Call))
		default:
			panic(fmt.Sprintf("call statement of %T", s.Call))
		}
	case *wyil.NamedBlockStmt:
		u.line("%s: {", s.Name)
		u.block(s.Body)
		u.line("}")
	case *wyil.WhileStmt:
		u.line("while(%s) {", u.expr(s.Cond))
		u.block(s.Body)
		u.line("}")
	case *wyil.ReturnStmt:
		switch len(s.Results) {
		case 0:
			u.line("return;")
		case 1:
			u.line("return %s;", u.expr(s.Results[0]))
		default:
			u.unsupported("return of multiple values")
		}
	case *wyil.SkipStmt:
		u.line("// skip")
	case *wyil.SwitchStmt:
		u.switchStmt(s)
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

func (u *unitWriter) assign(s *wyil.AssignStmt) {
	if len(s.LHS) > 1 || len(s.RHS) != 1 {
		u.unsupported("assignment of %d values to %d targets", len(s.RHS), len(s.LHS))
		return
	}
	if len(s.LHS) == 0 {
		u.line("%s;", u.expr(s.RHS[0]))
		return
	}
	u.line("%s = %s;", u.expr(s.LHS[0]), u.expr(s.RHS[0]))
}

func (u *unitWriter) switchStmt(s *wyil.SwitchStmt) {
	u.line("switch(%s) {", u.expr(s.Tag))
	u.depth++
	for _, cc := range s.Cases {
		if len(cc.Values) == 0 {
			u.line("default:")
		} else {
			labels := make([]string, len(cc.Values))
			for i, v := range cc.Values {
				labels[i] = "case " + u.constant(v) + ":"
			}
			u.line("%s", strings.Join(labels, " "))
		}
		u.block(cc.Body)
		u.depth++
		u.line("break;")
		u.depth--
	}
	u.depth--
	u.line("}")
}
