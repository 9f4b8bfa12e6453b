// wyec translates WyIL units to C, narrowing every integer variable to
// the smallest fixed-width type that holds its values.
package main // import "honnef.co/go/wyec/cmd/wyec"

import (
	"log"
	"os"

	"honnef.co/go/wyec/wyeccmd"
)

func main() {
	log.SetFlags(0)

	cmd := wyeccmd.NewCommand("wyec")
	cmd.ParseFlags(os.Args[1:])
	cmd.Run()
}
