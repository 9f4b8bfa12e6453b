package wyeccmd

import (
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
	"honnef.co/go/wyec/cgen"
	"honnef.co/go/wyec/debug"
	"honnef.co/go/wyec/vrp"
	"honnef.co/go/wyec/width"
	"honnef.co/go/wyec/wyil"
)

// Options configures a compilation.
type Options struct {
	Selector *width.Selector
	Analysis vrp.Options
	Gen      cgen.Options
	// Frames, if not nil, receives the frame map of every analyzed
	// unit.
	Frames io.Writer
}

type unitOutput struct {
	res  *vrp.Result
	text []byte
	err  error
}

// Compile analyzes every unit of f and writes the C translation of its
// functions and methods to w, in declaration order. Units are processed
// concurrently. Nothing is written unless every unit succeeds; if
// several fail, the error of the first in declaration order is
// returned.
func Compile(f *wyil.File, opts Options, w io.Writer) error {
	if opts.Selector == nil {
		opts.Selector = width.NewSelector(width.DefaultTable())
	}
	outs := make([]unitOutput, len(f.Decls))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range f.Decls {
		i, d := i, d
		g.Go(func() error {
			outs[i] = compileUnit(d, opts)
			return outs[i].err
		})
	}
	failed := g.Wait() != nil

	if opts.Frames != nil {
		for _, out := range outs {
			if out.res == nil {
				continue
			}
			if err := debug.WriteFrames(opts.Frames, out.res); err != nil {
				return fmt.Errorf("writing frames: %w", err)
			}
		}
	}

	if failed {
		for _, out := range outs {
			if out.err != nil {
				return out.err
			}
		}
	}

	var units []cgen.Unit
	for i, out := range outs {
		if out.text != nil {
			units = append(units, cgen.Unit{Name: f.Decls[i].DeclName(), Text: out.text})
		}
	}
	return cgen.NewPrinter(w, opts.Gen).WriteFile(units)
}

func compileUnit(d wyil.Decl, opts Options) unitOutput {
	switch d := d.(type) {
	case *wyil.TypeDecl:
		// Invariants are analyzed so that unsupported code in them is
		// reported. They produce no C.
		res, err := vrp.AnalyzeType(d, opts.Analysis)
		return unitOutput{res: res, err: err}
	case *wyil.FunctionOrMethod:
		res, err := vrp.AnalyzeFunction(d, opts.Analysis)
		if err != nil {
			return unitOutput{err: err}
		}
		text, err := cgen.Generate(d, res, opts.Selector, opts.Gen)
		return unitOutput{res: res, text: text, err: err}
	default:
		panic(fmt.Sprintf("unhandled declaration %T", d))
	}
}
