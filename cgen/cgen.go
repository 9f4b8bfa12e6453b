// Package cgen translates WyIL functions and methods to C.
//
// Integer variables are declared with the narrowest fixed-width type
// that holds every value the range analysis computed for them.
package cgen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"honnef.co/go/wyec/vrp"
	"honnef.co/go/wyec/width"
	"honnef.co/go/wyec/wyil"
)

const (
	DefaultInclude = "whiley.h"
	DefaultIndent  = "    "
)

type Options struct {
	// Include is the header included by the preamble.
	Include string
	// Indent is the text of one level of indentation.
	Indent string
	// Verbose prefixes every unit with one comment per program point,
	// showing the frame at that point and its code.
	Verbose bool
}

func (opts Options) withDefaults() Options {
	if opts.Include == "" {
		opts.Include = DefaultInclude
	}
	if opts.Indent == "" {
		opts.Indent = DefaultIndent
	}
	return opts
}

// UnsupportedError reports a construct that has no C translation.
type UnsupportedError struct {
	Unit string
	What string
}

func (err *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: unsupported construct: %s", err.Unit, err.What)
}

// Generate returns the C translation of fm. res is the range analysis
// of fm's body and may be nil, in which case integer variables get the
// widest type their declaration allows.
func Generate(fm *wyil.FunctionOrMethod, res *vrp.Result, sel *width.Selector, opts Options) ([]byte, error) {
	u := &unitWriter{
		fm:   fm,
		res:  res,
		sel:  sel,
		opts: opts.withDefaults(),
	}
	u.unit()
	if u.err != nil {
		return nil, u.err
	}
	return u.buf.Bytes(), nil
}

// A Unit is the translation of one function or method.
type Unit struct {
	Name string
	Text []byte
}

// A Printer writes translated units as one C file.
type Printer struct {
	w    io.Writer
	opts Options
}

func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts.withDefaults()}
}

// WriteFile writes the include line and a blank line, followed by every
// unit in order, each followed by a blank line.
func (p *Printer) WriteFile(units []Unit) error {
	if _, err := fmt.Fprintf(p.w, "#include <%s>\n\n", p.opts.Include); err != nil {
		return fmt.Errorf("writing preamble: %w", err)
	}
	for _, u := range units {
		b := make([]byte, 0, len(u.Text)+1)
		b = append(append(b, u.Text...), '\n')
		if _, err := p.w.Write(b); err != nil {
			return fmt.Errorf("writing %s: %w", u.Name, err)
		}
	}
	return nil
}

// unitWriter accumulates the translation of one unit. The first error
// sticks; output written after it is discarded.
type unitWriter struct {
	fm    *wyil.FunctionOrMethod
	res   *vrp.Result
	sel   *width.Selector
	opts  Options
	buf   bytes.Buffer
	depth int
	err   error
}

func (u *unitWriter) unsupported(format string, args ...any) {
	if u.err == nil {
		u.err = &UnsupportedError{Unit: u.fm.Name, What: fmt.Sprintf(format, args...)}
	}
}

func (u *unitWriter) print(s string) {
	u.buf.WriteString(s)
}

func (u *unitWriter) printf(format string, args ...any) {
	fmt.Fprintf(&u.buf, format, args...)
}

// line writes one indented line.
func (u *unitWriter) line(format string, args ...any) {
	u.buf.WriteString(strings.Repeat(u.opts.Indent, u.depth))
	fmt.Fprintf(&u.buf, format, args...)
	u.buf.WriteString("\n")
}

func (u *unitWriter) unit() {
	if u.opts.Verbose {
		u.locations()
	}
	u.returns()
	u.print(" ")
	u.print(u.fm.Name)
	u.print("(")
	for n := range u.fm.Params {
		if n != 0 {
			u.print(", ")
		}
		u.print(u.varType(n))
		u.print(" ")
		u.print(u.fm.Params[n].Name)
	}
	u.print(")")
	if u.fm.Body == nil {
		u.print(";\n")
		return
	}
	u.print(" {\n")
	u.block(u.fm.Body)
	u.print("}\n")
}

// locations writes one comment per program point of the analyzed body:
// its ordinal, the types inferred there and the raw instruction.
func (u *unitWriter) locations() {
	if u.res == nil {
		return
	}
	for n, i := range u.res.CFG.Points {
		types := "-"
		if f, ok := u.res.Frame(i); ok {
			types = u.frameTypes(f)
		}
		u.printf("// %3s %-8s %s\n", fmt.Sprintf("#%d", n), types, i.Code())
	}
}

// frameTypes lists the kind that the range of every bounded variable of
// f selects.
func (u *unitWriter) frameTypes(f *vrp.Frame) string {
	var parts []string
	for n := 0; n < f.Len(); n++ {
		r, ok := f.Read(n)
		if !ok {
			continue
		}
		v, _ := u.fm.Var(n)
		name := "?"
		if k, ok := u.sel.SelectFor(r, v.Type); ok {
			name = k.Name
		}
		parts = append(parts, v.Name+": "+name)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (u *unitWriter) returns() {
	switch len(u.fm.Returns) {
	case 0:
		u.print("void")
	case 1:
		u.print(u.typeName(u.fm.Returns[0]))
	default:
		u.unsupported("multiple return values")
	}
}

// varType returns the C type of the variable in slot n.
func (u *unitWriter) varType(n int) string {
	v, ok := u.fm.Var(n)
	if !ok {
		panic(fmt.Sprintf("variable %d out of range", n))
	}
	if wyil.IsInteger(v.Type) && u.res != nil {
		if r, ok := u.res.Range(n); ok {
			k, ok := u.sel.SelectFor(r, v.Type)
			if !ok {
				u.unsupported("no integer type holds %s in %s", v.Name, r)
				return u.sel.Fallback().Name
			}
			return k.Name
		}
	}
	return u.typeName(v.Type)
}

func (u *unitWriter) typeName(t wyil.Type) string {
	switch t := t.(type) {
	case wyil.Int:
		return u.sel.Fallback().Name
	case wyil.Bool:
		return "bool"
	case wyil.Void:
		return "void"
	case wyil.Array:
		return "arr_t(" + u.typeName(t.Elem) + ")"
	case wyil.Nominal:
		if k, ok := width.Nominal(t.Name); ok {
			return k.Name
		}
		u.unsupported("type %s", t)
		return t.Name
	default:
		u.unsupported("type %s", t)
		return t.String()
	}
}

func (u *unitWriter) varName(n int) string {
	v, ok := u.fm.Var(n)
	if !ok {
		panic(fmt.Sprintf("variable %d out of range", n))
	}
	return v.Name
}

func (u *unitWriter) block(b *wyil.BlockStmt) {
	u.depth++
	defer func() { u.depth-- }()
	if b == nil {
		return
	}
	for _, s := range b.List {
		u.stmt(s)
		if u.err != nil {
			return
		}
	}
}
