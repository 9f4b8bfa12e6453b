// Package loader reads WyIL units from their textual container format.
//
// A container is a YAML document listing type declarations and
// functions. Bytecode is written in a line-oriented assembly (see
// ParseBlock) and function bodies as a tree of statements used for code
// generation.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"honnef.co/go/wyec/wyil"
)

type varYAML struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type typeYAML struct {
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	Locals    []varYAML `yaml:"locals"`
	Invariant yaml.Node `yaml:"invariant"`
}

type functionYAML struct {
	Name         string      `yaml:"name"`
	Method       bool        `yaml:"method"`
	Params       []varYAML   `yaml:"params"`
	Returns      []string    `yaml:"returns"`
	Locals       []varYAML   `yaml:"locals"`
	Precondition []yaml.Node `yaml:"precondition"`
	Code         yaml.Node   `yaml:"code"`
	Body         yaml.Node   `yaml:"body"`
}

type fileYAML struct {
	Types     []typeYAML     `yaml:"types"`
	Functions []functionYAML `yaml:"functions"`
}

// Load reads and checks the container at path.
func Load(path string) (*wyil.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a container from r and checks it with wyil.Check. name is
// used in error messages.
func Parse(r io.Reader, name string) (*wyil.File, error) {
	var doc fileYAML
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &wyil.File{Name: name}, nil
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	file := &wyil.File{Name: name}
	for _, ty := range doc.Types {
		td, err := convertType(ty)
		if err != nil {
			return nil, fmt.Errorf("%s: type %s: %w", name, ty.Name, err)
		}
		file.Decls = append(file.Decls, td)
	}
	for _, fn := range doc.Functions {
		fm, err := convertFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("%s: function %s: %w", name, fn.Name, err)
		}
		file.Decls = append(file.Decls, fm)
	}
	if err := wyil.Check(file); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return file, nil
}

func convertVars(vs []varYAML) ([]wyil.Variable, error) {
	out := make([]wyil.Variable, 0, len(vs))
	for _, v := range vs {
		if !identRe.MatchString(v.Name) {
			return nil, fmt.Errorf("invalid variable name %q", v.Name)
		}
		t, err := ParseType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		out = append(out, wyil.Variable{Name: v.Name, Type: t})
	}
	return out, nil
}

func convertType(ty typeYAML) (*wyil.TypeDecl, error) {
	t, err := ParseType(ty.Type)
	if err != nil {
		return nil, err
	}
	locals, err := convertVars(ty.Locals)
	if err != nil {
		return nil, err
	}
	inv, err := parseCode(&ty.Invariant)
	if err != nil {
		return nil, fmt.Errorf("invariant: %w", err)
	}
	return &wyil.TypeDecl{Name: ty.Name, Type: t, Locals: locals, Invariant: inv}, nil
}

func convertFunction(fn functionYAML) (*wyil.FunctionOrMethod, error) {
	fm := &wyil.FunctionOrMethod{Name: fn.Name, Method: fn.Method}
	var err error
	if fm.Params, err = convertVars(fn.Params); err != nil {
		return nil, err
	}
	if fm.Locals, err = convertVars(fn.Locals); err != nil {
		return nil, err
	}
	for _, r := range fn.Returns {
		t, err := ParseType(r)
		if err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
		fm.Returns = append(fm.Returns, t)
	}
	for i := range fn.Precondition {
		b, err := parseCode(&fn.Precondition[i])
		if err != nil {
			return nil, fmt.Errorf("precondition %d: %w", i, err)
		}
		fm.Precondition = append(fm.Precondition, b)
	}
	if fm.Code, err = parseCode(&fn.Code); err != nil {
		return nil, fmt.Errorf("code: %w", err)
	}
	if fn.Body.Kind != 0 {
		d := newTreeDecoder(fm)
		if fm.Body, err = d.block(&fn.Body); err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
	}
	return fm, nil
}

// parseCode parses the assembly held by a scalar node. An absent node
// yields a nil block. Line numbers in errors are relative to the
// container.
func parseCode(n *yaml.Node) (*wyil.Block, error) {
	if n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null") {
		return nil, nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, &SyntaxError{Line: n.Line, Msg: "expected bytecode text"}
	}
	b, err := ParseBlock(n.Value)
	if err != nil {
		var serr *SyntaxError
		if errors.As(err, &serr) {
			offset := n.Line - 1
			if n.Style == yaml.LiteralStyle || n.Style == yaml.FoldedStyle {
				offset = n.Line
			}
			return nil, &SyntaxError{Line: serr.Line + offset, Msg: serr.Msg}
		}
		return nil, err
	}
	return b, nil
}
