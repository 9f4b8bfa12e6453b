// Package debug contains helpers for debugging the range analysis.
package debug

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"honnef.co/go/wyec/vrp"
	"honnef.co/go/wyec/wyil"
)

// WriteFrames writes the frame map of res, one program point per line:
// its path, its code, its successors and the frame reaching it.
func WriteFrames(w io.Writer, res *vrp.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "== %s\n", res.Unit)
	for _, i := range res.CFG.Points {
		frame := "unreachable"
		if f, ok := res.Frame(i); ok {
			frame = f.String()
		}
		fmt.Fprintf(tw, "#%s\t%s\t%s\t%s\n", res.CFG.Path(i), i.Code(), succs(res.CFG, i), frame)
	}
	return tw.Flush()
}

func succs(g *wyil.CFG, i wyil.Index) string {
	ss := g.Succs(i)
	if len(ss) == 0 {
		return "-> exit"
	}
	paths := make([]string, len(ss))
	for k, s := range ss {
		paths[k] = "#" + g.Path(s)
	}
	return "-> " + strings.Join(paths, ", ")
}
