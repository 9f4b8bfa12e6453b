package loader

import (
	"fmt"
	"math/big"

	"gopkg.in/yaml.v3"
	"honnef.co/go/wyec/wyil"
)

var binaryOps = map[string]wyil.Operator{
	"add":  wyil.Add,
	"sub":  wyil.Sub,
	"mul":  wyil.Mul,
	"div":  wyil.Div,
	"rem":  wyil.Rem,
	"eq":   wyil.Eq,
	"ne":   wyil.Neq,
	"lt":   wyil.Lt,
	"le":   wyil.LtEq,
	"gt":   wyil.Gt,
	"ge":   wyil.GtEq,
	"and":  wyil.LogicalAnd,
	"or":   wyil.LogicalOr,
	"band": wyil.BitwiseAnd,
	"bor":  wyil.BitwiseOr,
	"xor":  wyil.BitwiseXor,
	"shl":  wyil.Shl,
	"shr":  wyil.Shr,
}

var unaryOps = map[string]wyil.Operator{
	"neg":    wyil.Neg,
	"not":    wyil.Not,
	"invert": wyil.BitwiseInvert,
}

// treeDecoder decodes statement trees, resolving variable names to the
// slots of one unit.
type treeDecoder struct {
	vars map[string]int
}

func newTreeDecoder(fm *wyil.FunctionOrMethod) *treeDecoder {
	d := &treeDecoder{vars: map[string]int{}}
	for n := fm.NumSlots() - 1; n >= 0; n-- {
		v, _ := fm.Var(n)
		d.vars[v.Name] = n
	}
	return d
}

func errorf(n *yaml.Node, format string, args ...any) error {
	return &SyntaxError{Line: n.Line, Msg: fmt.Sprintf(format, args...)}
}

// single returns the key and value of a mapping with exactly one entry.
func single(n *yaml.Node) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, errorf(n, "expected a mapping with a single key")
	}
	return n.Content[0].Value, n.Content[1], nil
}

// fields returns the entries of a mapping, rejecting keys not in
// allowed.
func fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorf(n, "expected a mapping")
	}
	out := map[string]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		ok := false
		for _, a := range allowed {
			if a == k {
				ok = true
				break
			}
		}
		if !ok {
			return nil, errorf(n.Content[i], "unknown field %q", k)
		}
		out[k] = n.Content[i+1]
	}
	return out, nil
}

func required(n *yaml.Node, fs map[string]*yaml.Node, key string) (*yaml.Node, error) {
	v, ok := fs[key]
	if !ok {
		return nil, errorf(n, "missing field %q", key)
	}
	return v, nil
}

func (d *treeDecoder) block(n *yaml.Node) (*wyil.BlockStmt, error) {
	b := &wyil.BlockStmt{}
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return b, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "expected a list of statements")
	}
	for _, c := range n.Content {
		s, err := d.stmt(c)
		if err != nil {
			return nil, err
		}
		b.List = append(b.List, s)
	}
	return b, nil
}

func (d *treeDecoder) stmt(n *yaml.Node) (wyil.Stmt, error) {
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "break":
			return &wyil.BreakStmt{}, nil
		case "continue":
			return &wyil.ContinueStmt{}, nil
		case "fail":
			return &wyil.FailStmt{}, nil
		case "skip":
			return &wyil.SkipStmt{}, nil
		case "return":
			return &wyil.ReturnStmt{}, nil
		default:
			return nil, errorf(n, "unknown statement %q", n.Value)
		}
	}
	key, v, err := single(n)
	if err != nil {
		return nil, err
	}
	switch key {
	case "decl":
		fs, err := fields(v, "var", "init")
		if err != nil {
			return nil, err
		}
		vn, err := required(v, fs, "var")
		if err != nil {
			return nil, err
		}
		slot, err := d.variable(vn)
		if err != nil {
			return nil, err
		}
		s := &wyil.DeclStmt{Var: slot}
		if init, ok := fs["init"]; ok {
			if s.Init, err = d.expr(init); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "alias":
		slot, err := d.variable(v)
		if err != nil {
			return nil, err
		}
		return &wyil.AliasStmt{Var: slot}, nil
	case "assign":
		fs, err := fields(v, "lhs", "rhs")
		if err != nil {
			return nil, err
		}
		s := &wyil.AssignStmt{}
		if lhs, ok := fs["lhs"]; ok {
			if s.LHS, err = d.exprList(lhs); err != nil {
				return nil, err
			}
		}
		rhs, err := required(v, fs, "rhs")
		if err != nil {
			return nil, err
		}
		if s.RHS, err = d.exprList(rhs); err != nil {
			return nil, err
		}
		return s, nil
	case "assert":
		e, err := d.expr(v)
		return &wyil.AssertStmt{Cond: e}, err
	case "assume":
		e, err := d.expr(v)
		return &wyil.AssumeStmt{Cond: e}, err
	case "debug":
		e, err := d.expr(v)
		return &wyil.DebugStmt{X: e}, err
	case "call":
		e, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		switch e.(type) {
		case *wyil.InvokeExpr, *wyil.IndirectInvokeExpr:
		default:
			return nil, errorf(v, "call of a non-call expression")
		}
		return &wyil.CallStmt{Call: e}, nil
	case "return":
		rs, err := d.exprList(v)
		return &wyil.ReturnStmt{Results: rs}, err
	case "if":
		fs, err := fields(v, "cond", "then", "else")
		if err != nil {
			return nil, err
		}
		s := &wyil.IfStmt{}
		if s.Cond, err = d.requiredExpr(v, fs, "cond"); err != nil {
			return nil, err
		}
		if s.Then, err = d.requiredBlock(v, fs, "then"); err != nil {
			return nil, err
		}
		if e, ok := fs["else"]; ok {
			if s.Else, err = d.block(e); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "while", "dowhile":
		fs, err := fields(v, "cond", "body")
		if err != nil {
			return nil, err
		}
		cond, err := d.requiredExpr(v, fs, "cond")
		if err != nil {
			return nil, err
		}
		body, err := d.requiredBlock(v, fs, "body")
		if err != nil {
			return nil, err
		}
		if key == "while" {
			return &wyil.WhileStmt{Cond: cond, Body: body}, nil
		}
		return &wyil.DoWhileStmt{Body: body, Cond: cond}, nil
	case "block":
		fs, err := fields(v, "name", "body")
		if err != nil {
			return nil, err
		}
		name, err := required(v, fs, "name")
		if err != nil {
			return nil, err
		}
		if !identRe.MatchString(name.Value) {
			return nil, errorf(name, "invalid block name %q", name.Value)
		}
		body, err := d.requiredBlock(v, fs, "body")
		if err != nil {
			return nil, err
		}
		return &wyil.NamedBlockStmt{Name: name.Value, Body: body}, nil
	case "switch":
		return d.switchStmt(v)
	default:
		return nil, errorf(n, "unknown statement %q", key)
	}
}

func (d *treeDecoder) switchStmt(v *yaml.Node) (wyil.Stmt, error) {
	fs, err := fields(v, "tag", "cases")
	if err != nil {
		return nil, err
	}
	s := &wyil.SwitchStmt{}
	if s.Tag, err = d.requiredExpr(v, fs, "tag"); err != nil {
		return nil, err
	}
	cases, err := required(v, fs, "cases")
	if err != nil {
		return nil, err
	}
	if cases.Kind != yaml.SequenceNode {
		return nil, errorf(cases, "expected a list of cases")
	}
	for _, c := range cases.Content {
		cfs, err := fields(c, "values", "body")
		if err != nil {
			return nil, err
		}
		cc := &wyil.CaseClause{}
		if vals, ok := cfs["values"]; ok {
			if vals.Kind != yaml.SequenceNode {
				return nil, errorf(vals, "expected a list of values")
			}
			for _, val := range vals.Content {
				k, err := constant(val)
				if err != nil {
					return nil, err
				}
				cc.Values = append(cc.Values, k)
			}
		}
		if cc.Body, err = d.requiredBlock(c, cfs, "body"); err != nil {
			return nil, err
		}
		s.Cases = append(s.Cases, cc)
	}
	return s, nil
}

func (d *treeDecoder) requiredExpr(n *yaml.Node, fs map[string]*yaml.Node, key string) (wyil.Expr, error) {
	v, err := required(n, fs, key)
	if err != nil {
		return nil, err
	}
	return d.expr(v)
}

func (d *treeDecoder) requiredBlock(n *yaml.Node, fs map[string]*yaml.Node, key string) (*wyil.BlockStmt, error) {
	v, err := required(n, fs, key)
	if err != nil {
		return nil, err
	}
	return d.block(v)
}

func (d *treeDecoder) variable(n *yaml.Node) (int, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return 0, errorf(n, "expected a variable name")
	}
	slot, ok := d.vars[n.Value]
	if !ok {
		return 0, errorf(n, "undeclared variable %s", n.Value)
	}
	return slot, nil
}

// exprList decodes a list of expressions. A single expression or null
// are accepted as lists of one and zero expressions.
func (d *treeDecoder) exprList(n *yaml.Node) ([]wyil.Expr, error) {
	switch {
	case n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null":
		return nil, nil
	case n.Kind != yaml.SequenceNode:
		e, err := d.expr(n)
		if err != nil {
			return nil, err
		}
		return []wyil.Expr{e}, nil
	}
	var out []wyil.Expr
	for _, c := range n.Content {
		e, err := d.expr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// pair decodes a list of exactly two expressions.
func (d *treeDecoder) pair(n *yaml.Node) (wyil.Expr, wyil.Expr, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 {
		return nil, nil, errorf(n, "expected a list of two operands")
	}
	x, err := d.expr(n.Content[0])
	if err != nil {
		return nil, nil, err
	}
	y, err := d.expr(n.Content[1])
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func constant(n *yaml.Node) (wyil.Constant, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, errorf(n, "expected a constant")
	}
	switch n.ShortTag() {
	case "!!int":
		v, ok := new(big.Int).SetString(n.Value, 0)
		if !ok {
			return nil, errorf(n, "invalid integer %q", n.Value)
		}
		return wyil.IntConst{Value: v}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, errorf(n, "invalid boolean %q", n.Value)
		}
		return wyil.BoolConst{Value: b}, nil
	case "!!null":
		return wyil.NullConst{}, nil
	default:
		return nil, errorf(n, "expected a constant, got %q", n.Value)
	}
}

func (d *treeDecoder) expr(n *yaml.Node) (wyil.Expr, error) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!str" {
			slot, err := d.variable(n)
			if err != nil {
				return nil, err
			}
			return &wyil.VarExpr{Var: slot}, nil
		}
		c, err := constant(n)
		if err != nil {
			return nil, err
		}
		return &wyil.ConstExpr{Value: c}, nil
	}

	key, v, err := single(n)
	if err != nil {
		return nil, err
	}
	if op, ok := binaryOps[key]; ok {
		x, y, err := d.pair(v)
		if err != nil {
			return nil, err
		}
		return &wyil.BinaryExpr{Op: op, X: x, Y: y}, nil
	}
	if op, ok := unaryOps[key]; ok {
		x, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		return &wyil.UnaryExpr{Op: op, X: x}, nil
	}

	switch key {
	case "deref", "len", "new":
		x, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		switch key {
		case "deref":
			return &wyil.DerefExpr{X: x}, nil
		case "len":
			return &wyil.LengthExpr{X: x}, nil
		default:
			return &wyil.NewExpr{X: x}, nil
		}
	case "convert", "is":
		fs, err := fields(v, "type", "x")
		if err != nil {
			return nil, err
		}
		tn, err := required(v, fs, "type")
		if err != nil {
			return nil, err
		}
		t, err := ParseType(tn.Value)
		if err != nil {
			return nil, errorf(tn, "%s", err)
		}
		x, err := d.requiredExpr(v, fs, "x")
		if err != nil {
			return nil, err
		}
		if key == "convert" {
			return &wyil.ConvertExpr{Type: t, X: x}, nil
		}
		return &wyil.IsExpr{X: x, Type: t}, nil
	case "field":
		fs, err := fields(v, "x", "name")
		if err != nil {
			return nil, err
		}
		x, err := d.requiredExpr(v, fs, "x")
		if err != nil {
			return nil, err
		}
		name, err := required(v, fs, "name")
		if err != nil {
			return nil, err
		}
		return &wyil.FieldExpr{X: x, Name: name.Value}, nil
	case "index":
		x, i, err := d.pair(v)
		if err != nil {
			return nil, err
		}
		return &wyil.IndexExpr{X: x, Index: i}, nil
	case "array":
		es, err := d.exprList(v)
		if err != nil {
			return nil, err
		}
		return &wyil.ArrayLit{Elems: es}, nil
	case "arraygen":
		x, l, err := d.pair(v)
		if err != nil {
			return nil, err
		}
		return &wyil.ArrayGenExpr{Value: x, Len: l}, nil
	case "record":
		if v.Kind != yaml.MappingNode {
			return nil, errorf(v, "expected a mapping of fields")
		}
		rec := &wyil.RecordLit{}
		for i := 0; i+1 < len(v.Content); i += 2 {
			e, err := d.expr(v.Content[i+1])
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, wyil.FieldInit{Name: v.Content[i].Value, Value: e})
		}
		return rec, nil
	case "invoke":
		fs, err := fields(v, "name", "args")
		if err != nil {
			return nil, err
		}
		name, err := required(v, fs, "name")
		if err != nil {
			return nil, err
		}
		call := &wyil.InvokeExpr{Name: name.Value}
		if args, ok := fs["args"]; ok {
			if call.Args, err = d.exprList(args); err != nil {
				return nil, err
			}
		}
		return call, nil
	case "indirect":
		fs, err := fields(v, "fn", "args")
		if err != nil {
			return nil, err
		}
		fn, err := d.requiredExpr(v, fs, "fn")
		if err != nil {
			return nil, err
		}
		call := &wyil.IndirectInvokeExpr{Fn: fn}
		if args, ok := fs["args"]; ok {
			if call.Args, err = d.exprList(args); err != nil {
				return nil, err
			}
		}
		return call, nil
	case "lambda":
		fs, err := fields(v, "params")
		if err != nil {
			return nil, err
		}
		var params []varYAML
		if p, ok := fs["params"]; ok {
			if err := p.Decode(&params); err != nil {
				return nil, err
			}
		}
		vars, err := convertVars(params)
		if err != nil {
			return nil, errorf(v, "%s", err)
		}
		return &wyil.LambdaExpr{Params: vars}, nil
	case "all", "some":
		fs, err := fields(v, "var", "low", "high", "body")
		if err != nil {
			return nil, err
		}
		vn, err := required(v, fs, "var")
		if err != nil {
			return nil, err
		}
		slot, err := d.variable(vn)
		if err != nil {
			return nil, err
		}
		q := &wyil.QuantifierExpr{Universal: key == "all", Var: slot}
		if q.Low, err = d.requiredExpr(v, fs, "low"); err != nil {
			return nil, err
		}
		if q.High, err = d.requiredExpr(v, fs, "high"); err != nil {
			return nil, err
		}
		if q.Body, err = d.requiredExpr(v, fs, "body"); err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, errorf(n, "unknown expression %q", key)
	}
}
