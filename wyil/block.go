package wyil

import "fmt"

// A Block is a sequence of codes. Loop codes own nested blocks, so the
// codes of a unit form a tree of blocks.
type Block struct {
	Codes []Code
}

// An Index addresses a program point: the code at Offset in Block.
// Since every nested block is owned by exactly one Loop code, the block
// pointer determines the nesting path.
type Index struct {
	Block  *Block
	Offset int
}

// Next returns the index of the following code in the same block. The
// result may be past the end of the block.
func (i Index) Next() Index {
	return Index{i.Block, i.Offset + 1}
}

// Valid reports whether i addresses a code.
func (i Index) Valid() bool {
	return i.Block != nil && i.Offset >= 0 && i.Offset < len(i.Block.Codes)
}

// Code returns the code at i.
func (i Index) Code() Code {
	if !i.Valid() {
		panic(fmt.Sprintf("index %d out of range", i.Offset))
	}
	return i.Block.Codes[i.Offset]
}

// Walk calls fn for every code in b in address order, descending into
// loop bodies immediately after the loop code that owns them.
func (b *Block) Walk(fn func(Index)) {
	for off, c := range b.Codes {
		fn(Index{b, off})
		if l, ok := c.(*Loop); ok && l.Body != nil {
			l.Body.Walk(fn)
		}
	}
}

// BuildLabelMap maps every label in b, including those in nested
// blocks, to its program point. If a label appears more than once the
// first occurrence wins; Check reports duplicates.
func BuildLabelMap(b *Block) map[string]Index {
	labels := map[string]Index{}
	if b == nil {
		return labels
	}
	b.Walk(func(i Index) {
		if l, ok := i.Code().(*Label); ok {
			if _, dup := labels[l.Name]; !dup {
				labels[l.Name] = i
			}
		}
	})
	return labels
}
