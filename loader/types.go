package loader

import (
	"fmt"
	"strings"

	"honnef.co/go/wyec/wyil"
)

// ParseType parses the textual form of a type, as printed by
// wyil.Type.String.
func ParseType(s string) (wyil.Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type")
	case s == "int":
		return wyil.Int{}, nil
	case s == "bool":
		return wyil.Bool{}, nil
	case s == "null":
		return wyil.Null{}, nil
	case s == "void":
		return wyil.Void{}, nil
	case strings.HasSuffix(s, "[]"):
		elem, err := ParseType(s[:len(s)-2])
		if err != nil {
			return nil, err
		}
		return wyil.Array{Elem: elem}, nil
	case strings.HasPrefix(s, "&"):
		elem, err := ParseType(s[1:])
		if err != nil {
			return nil, err
		}
		return wyil.Reference{Elem: elem}, nil
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		return parseRecord(s[1 : len(s)-1])
	case identRe.MatchString(s):
		return wyil.Nominal{Name: s}, nil
	default:
		return nil, fmt.Errorf("invalid type %q", s)
	}
}

func parseRecord(s string) (wyil.Type, error) {
	var rec wyil.Record
	for _, f := range splitTopLevel(s) {
		f = strings.TrimSpace(f)
		i := strings.LastIndexAny(f, " \t")
		if i == -1 {
			return nil, fmt.Errorf("invalid record field %q", f)
		}
		name := f[i+1:]
		if !identRe.MatchString(name) {
			return nil, fmt.Errorf("invalid field name %q", name)
		}
		t, err := ParseType(f[:i])
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, wyil.Field{Name: name, Type: t})
	}
	return rec, nil
}

// splitTopLevel splits s at commas that are not nested in braces.
func splitTopLevel(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
