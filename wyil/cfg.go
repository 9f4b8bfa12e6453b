package wyil

import (
	"fmt"
	"strconv"
	"strings"
)

// A CFG is the control flow graph of one code block. Its nodes are
// program points; edges follow fall-through, label jumps and loop back
// edges.
type CFG struct {
	Root   *Block
	Labels map[string]Index
	// Points lists every program point in address order.
	Points []Index

	order map[Index]int
	// owner maps a loop body to the index of its Loop code.
	owner map[*Block]Index
}

// BuildCFG returns the control flow graph of root.
func BuildCFG(root *Block) *CFG {
	g := &CFG{
		Root:   root,
		Labels: BuildLabelMap(root),
		order:  map[Index]int{},
		owner:  map[*Block]Index{},
	}
	if root == nil {
		return g
	}
	root.Walk(func(i Index) {
		g.order[i] = len(g.Points)
		g.Points = append(g.Points, i)
		if l, ok := i.Code().(*Loop); ok && l.Body != nil {
			g.owner[l.Body] = i
		}
	})
	return g
}

// Entry returns the first program point, if there is one.
func (g *CFG) Entry() (Index, bool) {
	if len(g.Points) == 0 {
		return Index{}, false
	}
	return g.Points[0], true
}

// Next returns the point control falls through to after i. Falling off
// the end of a loop body returns to the owning Loop code; falling off
// the end of the root block has no successor.
func (g *CFG) Next(i Index) (Index, bool) {
	if n := i.Next(); n.Valid() {
		return n, true
	}
	loop, ok := g.owner[i.Block]
	if !ok {
		return Index{}, false
	}
	return loop, true
}

// Enter returns the first point of the body of the Loop code at i.
func (g *CFG) Enter(i Index) (Index, bool) {
	l, ok := i.Code().(*Loop)
	if !ok {
		panic(fmt.Sprintf("Enter called on %T", i.Code()))
	}
	if l.Body == nil || len(l.Body.Codes) == 0 {
		return Index{}, false
	}
	return Index{l.Body, 0}, true
}

// Label resolves a label name.
func (g *CFG) Label(name string) (Index, bool) {
	i, ok := g.Labels[name]
	return i, ok
}

// Succs returns the successors of i, in the order the code names them.
func (g *CFG) Succs(i Index) []Index {
	var out []Index
	add := func(j Index, ok bool) {
		if ok {
			out = append(out, j)
		}
	}
	switch c := i.Code().(type) {
	case *Goto:
		add(g.Label(c.Target))
	case *If:
		add(g.Label(c.Target))
		add(g.Next(i))
	case *Switch:
		for _, cs := range c.Cases {
			add(g.Label(cs.Target))
		}
		add(g.Label(c.Default))
	case *Loop:
		add(g.Enter(i))
	case *Return, *Fail:
	default:
		add(g.Next(i))
	}
	return out
}

// Order returns the position of i in address order, or -1.
func (g *CFG) Order(i Index) int {
	n, ok := g.order[i]
	if !ok {
		return -1
	}
	return n
}

// Path returns the nesting path of i as dot-separated offsets, such as
// "3" for a root-level code or "3.0" for the first code of the loop at
// offset 3.
func (g *CFG) Path(i Index) string {
	var parts []string
	for {
		parts = append(parts, strconv.Itoa(i.Offset))
		loop, ok := g.owner[i.Block]
		if !ok {
			break
		}
		i = loop
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, ".")
}
