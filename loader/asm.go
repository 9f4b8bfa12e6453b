package loader

import (
	"bufio"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"honnef.co/go/wyec/wyil"
)

// SyntaxError reports bytecode assembly that cannot be parsed.
type SyntaxError struct {
	Line int
	Msg  string
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", err.Line, err.Msg)
}

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	auxRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

type asmParser struct {
	line  int
	stack []*wyil.Block
}

func (p *asmParser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

// ParseBlock parses bytecode assembly, one code per line. Blank lines
// and lines starting with // are ignored.
func ParseBlock(src string) (*wyil.Block, error) {
	root := &wyil.Block{}
	p := &asmParser{stack: []*wyil.Block{root}}
	sc := bufio.NewScanner(strings.NewReader(src))
	// Any line of src fits.
	sc.Buffer(nil, len(src)+1)
	for sc.Scan() {
		p.line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		if err := p.parseLine(strings.Fields(strings.ReplaceAll(text, ",", " "))); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, p.errorf("%s", err)
	}
	if len(p.stack) != 1 {
		return nil, p.errorf("unterminated loop")
	}
	return root, nil
}

func (p *asmParser) emit(c wyil.Code) {
	b := p.stack[len(p.stack)-1]
	b.Codes = append(b.Codes, c)
}

func (p *asmParser) parseLine(toks []string) error {
	mnemonic := toks[0]
	args := toks[1:]
	switch mnemonic {
	case "loop":
		if len(args) != 1 || args[0] != "{" {
			return p.errorf("expected loop {")
		}
		l := &wyil.Loop{Body: &wyil.Block{}}
		p.emit(l)
		p.stack = append(p.stack, l.Body)
		return nil
	case "}":
		if len(args) != 0 || len(p.stack) == 1 {
			return p.errorf("unexpected }")
		}
		p.stack = p.stack[:len(p.stack)-1]
		return nil
	case "const":
		if len(args) != 3 || args[1] != "=" {
			return p.errorf("expected const %%t = value")
		}
		t, err := p.slot(args[0])
		if err != nil {
			return err
		}
		c, err := p.constant(args[2])
		if err != nil {
			return err
		}
		p.emit(&wyil.Const{Target: t, Constant: c})
		return nil
	case "assign":
		if len(args) != 3 || args[1] != "=" {
			return p.errorf("expected assign %%t = %%s")
		}
		t, err := p.slot(args[0])
		if err != nil {
			return err
		}
		s, err := p.slot(args[2])
		if err != nil {
			return err
		}
		p.emit(&wyil.Assign{Target: t, Operand: s})
		return nil
	case "goto":
		if len(args) != 1 {
			return p.errorf("expected goto label")
		}
		l, err := p.label(args[0])
		if err != nil {
			return err
		}
		p.emit(&wyil.Goto{Target: l})
		return nil
	case "if":
		return p.parseIf(args)
	case "switch":
		return p.parseSwitch(args)
	case "nop", "fail":
		if len(args) != 0 {
			return p.errorf("%s takes no operands", mnemonic)
		}
		if mnemonic == "nop" {
			p.emit(&wyil.Nop{})
		} else {
			p.emit(&wyil.Fail{})
		}
		return nil
	case "debug":
		if len(args) != 1 {
			return p.errorf("expected debug %%a")
		}
		s, err := p.slot(args[0])
		if err != nil {
			return err
		}
		p.emit(&wyil.Debug{Operand: s})
		return nil
	case "return":
		ops, err := p.slots(args)
		if err != nil {
			return err
		}
		p.emit(&wyil.Return{Operands: ops})
		return nil
	}

	if len(args) == 0 && strings.HasSuffix(mnemonic, ":") {
		l, err := p.label(strings.TrimSuffix(mnemonic, ":"))
		if err != nil {
			return err
		}
		p.emit(&wyil.Label{Name: l})
		return nil
	}
	return p.parseOperation(mnemonic, args)
}

func (p *asmParser) parseIf(args []string) error {
	if len(args) != 5 || args[3] != "goto" {
		return p.errorf("expected if %%a op %%b goto label")
	}
	l, err := p.slot(args[0])
	if err != nil {
		return err
	}
	op, ok := wyil.ParseComparator(args[1])
	if !ok {
		return p.errorf("unknown comparator %q", args[1])
	}
	r, err := p.slot(args[2])
	if err != nil {
		return err
	}
	target, err := p.label(args[4])
	if err != nil {
		return err
	}
	p.emit(&wyil.If{Left: l, Right: r, Op: op, Target: target})
	return nil
}

func (p *asmParser) parseSwitch(args []string) error {
	if len(args) < 2 {
		return p.errorf("expected switch %%a [value:label ...] default:label")
	}
	s, err := p.slot(args[0])
	if err != nil {
		return err
	}
	c := &wyil.Switch{Operand: s}
	for i, arg := range args[1:] {
		k := strings.LastIndex(arg, ":")
		if k == -1 {
			return p.errorf("expected value:label, got %q", arg)
		}
		target, err := p.label(arg[k+1:])
		if err != nil {
			return err
		}
		if i == len(args)-2 {
			if arg[:k] != "default" {
				return p.errorf("switch without default")
			}
			c.Default = target
			break
		}
		v, err := p.constant(arg[:k])
		if err != nil {
			return err
		}
		c.Cases = append(c.Cases, wyil.Case{Value: v, Target: target})
	}
	p.emit(c)
	return nil
}

func (p *asmParser) parseOperation(mnemonic string, args []string) error {
	var op wyil.Operation
	if i := strings.Index(mnemonic, "."); i != -1 {
		op.Aux = mnemonic[i+1:]
		mnemonic = mnemonic[:i]
		if !auxRe.MatchString(op.Aux) {
			return p.errorf("invalid operand name %q", op.Aux)
		}
	}
	if len(args) == 0 {
		return p.errorf("%s: missing target", mnemonic)
	}
	t, err := p.slot(args[0])
	if err != nil {
		return err
	}
	op.Target = t
	if len(args) > 1 {
		if args[1] != "=" || len(args) == 2 {
			return p.errorf("%s: expected = followed by operands", mnemonic)
		}
		op.Operands, err = p.slots(args[2:])
		if err != nil {
			return err
		}
	}
	c, ok := wyil.NewOperation(mnemonic, op)
	if !ok {
		return p.errorf("unknown instruction %q", mnemonic)
	}
	p.emit(c)
	return nil
}

func (p *asmParser) slot(s string) (int, error) {
	if s == "_" {
		return wyil.NoSlot, nil
	}
	if !strings.HasPrefix(s, "%") {
		return 0, p.errorf("expected slot, got %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || s[1] == '+' {
		return 0, p.errorf("invalid slot %q", s)
	}
	return n, nil
}

func (p *asmParser) slots(ss []string) ([]int, error) {
	var out []int
	for _, s := range ss {
		n, err := p.slot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (p *asmParser) label(s string) (string, error) {
	if !identRe.MatchString(s) {
		return "", p.errorf("invalid label %q", s)
	}
	return s, nil
}

func (p *asmParser) constant(s string) (wyil.Constant, error) {
	switch s {
	case "true":
		return wyil.BoolConst{Value: true}, nil
	case "false":
		return wyil.BoolConst{Value: false}, nil
	case "null":
		return wyil.NullConst{}, nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, p.errorf("invalid constant %q", s)
	}
	return wyil.IntConst{Value: n}, nil
}

// FormatBlock prints b as assembly accepted by ParseBlock.
func FormatBlock(b *wyil.Block) string {
	var sb strings.Builder
	formatBlock(&sb, b, 0)
	return sb.String()
}

func formatBlock(sb *strings.Builder, b *wyil.Block, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, c := range b.Codes {
		sb.WriteString(indent)
		if l, ok := c.(*wyil.Loop); ok {
			sb.WriteString("loop {\n")
			if l.Body != nil {
				formatBlock(sb, l.Body, depth+1)
			}
			sb.WriteString(indent)
			sb.WriteString("}\n")
			continue
		}
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}
}
