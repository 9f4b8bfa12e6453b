package wyil

import (
	"errors"
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	fn := func(code ...Code) *FunctionOrMethod {
		return &FunctionOrMethod{
			Name:   "f",
			Params: []Variable{{"x", Int{}}},
			Locals: []Variable{{"y", Int{}}},
			Code:   &Block{Codes: code},
		}
	}
	tests := []struct {
		name string
		decl Decl
		err  string
	}{
		{"ok", fn(&Const{Target: 1, Constant: NewInt(1)}, &If{Left: 0, Right: 1, Op: LT, Target: "l"}, &Label{Name: "l"}, &Return{}), ""},
		{"unresolved goto", fn(&Goto{Target: "nowhere"}), "unresolved label nowhere"},
		{"unresolved switch", fn(&Switch{Operand: 0, Default: "d"}), "unresolved label d"},
		{"duplicate label", fn(&Label{Name: "l"}, &Label{Name: "l"}), "label l defined more than once"},
		{"slot out of range", fn(&Assign{Target: 2, Operand: 0}), "slot 2 out of range"},
		{"missing if operand", fn(&If{Left: NoSlot, Right: 0, Op: EQ, Target: "l"}, &Label{Name: "l"}), "missing operand"},
		{"missing const target", fn(&Const{Target: NoSlot, Constant: NewInt(0)}), "missing target"},
		{"nested label", fn(&Loop{Body: &Block{Codes: []Code{&Goto{Target: "out"}}}}, &Label{Name: "out"}), ""},
		{"invariant slot", &TypeDecl{Name: "nat", Type: Int{}, Invariant: &Block{Codes: []Code{&Debug{Operand: 1}}}}, "slot 1 out of range"},
		{"tree variable", &FunctionOrMethod{
			Name:   "g",
			Params: []Variable{{"x", Int{}}},
			Body:   &BlockStmt{List: []Stmt{&ReturnStmt{Results: []Expr{&VarExpr{Var: 4}}}}},
		}, "variable 4 out of range"},
		{"alias variable", &FunctionOrMethod{
			Name: "a",
			Body: &BlockStmt{List: []Stmt{&AliasStmt{Var: 0}}},
		}, "variable 0 out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(&File{Decls: []Decl{tt.decl}})
			if tt.err == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("got no error, want %q", tt.err)
			}
			var merr *MalformedError
			if !errors.As(err, &merr) {
				t.Fatalf("got %T, want *MalformedError", err)
			}
			if !strings.Contains(err.Error(), tt.err) {
				t.Errorf("got %q, want it to contain %q", err, tt.err)
			}
		})
	}
}

func TestCheckDuplicateDecl(t *testing.T) {
	f := &File{Decls: []Decl{
		&FunctionOrMethod{Name: "f"},
		&TypeDecl{Name: "f", Type: Int{}},
	}}
	err := Check(f)
	if err == nil || !strings.Contains(err.Error(), "declared more than once") {
		t.Errorf("got %v, want duplicate declaration error", err)
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{Int{}, "int"},
		{Array{Elem: Nominal{Name: "u8"}}, "u8[]"},
		{Reference{Elem: Array{Elem: Bool{}}}, "&bool[]"},
		{Record{Fields: []Field{{"x", Int{}}, {"y", Bool{}}}}, "{int x, bool y}"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestIntegerBits(t *testing.T) {
	tests := []struct {
		name   string
		bits   int
		signed bool
		ok     bool
	}{
		{"i8", 8, true, true},
		{"u64", 64, false, true},
		{"i32", 32, true, true},
		{"i24", 0, false, false},
		{"nat", 0, false, false},
		{"u", 0, false, false},
	}
	for _, tt := range tests {
		bits, signed, ok := Nominal{Name: tt.name}.IntegerBits()
		if bits != tt.bits || signed != tt.signed || ok != tt.ok {
			t.Errorf("IntegerBits(%s) = %d, %t, %t, want %d, %t, %t", tt.name, bits, signed, ok, tt.bits, tt.signed, tt.ok)
		}
	}
	if !IsInteger(Int{}) || IsInteger(Bool{}) || IsInteger(Nominal{Name: "nat"}) {
		t.Errorf("IsInteger misclassifies types")
	}
}
