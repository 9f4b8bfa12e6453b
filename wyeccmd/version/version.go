// Package version prints the version of the wyec command.
package version

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
)

// version returns a version descriptor and reports whether the
// version is a known release.
func version(human, machine string) (string, string, bool) {
	if human != "devel" {
		return human, machine, true
	}
	v, ok := buildInfoVersion()
	if ok {
		return v, "", false
	}
	return "devel", "", false
}

func Print(w io.Writer, human, machine string) {
	human, machine, release := version(human, machine)

	if release {
		fmt.Fprintf(w, "%s %s (%s)\n", filepath.Base(os.Args[0]), human, machine)
	} else if human == "devel" {
		fmt.Fprintf(w, "%s (no version)\n", filepath.Base(os.Args[0]))
	} else {
		fmt.Fprintf(w, "%s (devel, %s)\n", filepath.Base(os.Args[0]), human)
	}
}

func Verbose(w io.Writer, human, machine string) {
	Print(w, human, machine)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compiled with Go version:", runtime.Version())
	printBuildInfo(w)
}

func printModule(w io.Writer, m *debug.Module) {
	fmt.Fprintf(w, "\t%s", m.Path)
	if m.Version != "(devel)" {
		fmt.Fprintf(w, "@%s", m.Version)
	}
	if m.Sum != "" {
		fmt.Fprintf(w, " (sum: %s)", m.Sum)
	}
	if m.Replace != nil {
		fmt.Fprintf(w, " (replace: %s)", m.Replace.Path)
	}
	fmt.Fprintln(w)
}

func printBuildInfo(w io.Writer) {
	if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Fprintln(w, "Main module:")
		printModule(w, &info.Main)
		fmt.Fprintln(w, "Dependencies:")
		for _, dep := range info.Deps {
			printModule(w, dep)
		}
	} else {
		fmt.Fprintln(w, "Built without Go modules")
	}
}

// buildInfoVersion returns the main module's version if the binary was
// built from a tagged module.
func buildInfoVersion() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	switch info.Main.Version {
	case "", "(devel)":
		return "", false
	default:
		return info.Main.Version, true
	}
}
