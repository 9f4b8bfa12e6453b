package wyil

// Variable is a named, typed variable slot.
type Variable struct {
	Name string
	Type Type
}

// A Decl is a top-level declaration of a File.
type Decl interface {
	DeclName() string
	decl()
}

// FunctionOrMethod is a function or method unit. Parameters occupy
// slots 0 through len(Params)-1 and locals follow.
type FunctionOrMethod struct {
	Name    string
	Method  bool
	Params  []Variable
	Returns []Type
	Locals  []Variable

	// Precondition holds the bytecode of each requires clause. The
	// frame reaching the returns of one clause feeds the next, and the
	// last feeds Code.
	Precondition []*Block
	// Code is the bytecode of the body. It is nil for a declaration
	// without a body.
	Code *Block
	// Body is the statement tree of the body, used for code
	// generation.
	Body *BlockStmt
}

// TypeDecl is a named type with an optional invariant. The invariant
// reads the value being checked from slot 0; locals follow.
type TypeDecl struct {
	Name      string
	Type      Type
	Locals    []Variable
	Invariant *Block
}

func (fm *FunctionOrMethod) DeclName() string { return fm.Name }
func (td *TypeDecl) DeclName() string         { return td.Name }
func (*FunctionOrMethod) decl()               {}
func (*TypeDecl) decl()                       {}

// NumSlots returns the number of variable slots of the unit.
func (fm *FunctionOrMethod) NumSlots() int { return len(fm.Params) + len(fm.Locals) }

// Var returns the variable in slot n.
func (fm *FunctionOrMethod) Var(n int) (Variable, bool) {
	switch {
	case n < 0:
		return Variable{}, false
	case n < len(fm.Params):
		return fm.Params[n], true
	case n < fm.NumSlots():
		return fm.Locals[n-len(fm.Params)], true
	default:
		return Variable{}, false
	}
}

func (td *TypeDecl) NumSlots() int { return 1 + len(td.Locals) }

func (td *TypeDecl) Var(n int) (Variable, bool) {
	switch {
	case n == 0:
		return Variable{Name: "$", Type: td.Type}, true
	case n > 0 && n < td.NumSlots():
		return td.Locals[n-1], true
	default:
		return Variable{}, false
	}
}

// A File is an ordered list of declarations.
type File struct {
	Name  string
	Decls []Decl
}

// Functions returns the functions and methods of f in declaration
// order.
func (f *File) Functions() []*FunctionOrMethod {
	var out []*FunctionOrMethod
	for _, d := range f.Decls {
		if fm, ok := d.(*FunctionOrMethod); ok {
			out = append(out, fm)
		}
	}
	return out
}

// Types returns the type declarations of f in declaration order.
func (f *File) Types() []*TypeDecl {
	var out []*TypeDecl
	for _, d := range f.Decls {
		if td, ok := d.(*TypeDecl); ok {
			out = append(out, td)
		}
	}
	return out
}
