// Package wyeccmd implements the wyec command: it loads a container of
// WyIL units, analyzes the integer ranges of every unit and prints the
// C translation of its functions and methods.
package wyeccmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"honnef.co/go/wyec/cgen"
	"honnef.co/go/wyec/config"
	"honnef.co/go/wyec/loader"
	"honnef.co/go/wyec/vrp"
	"honnef.co/go/wyec/width"
	"honnef.co/go/wyec/wyeccmd/version"
)

// Command represents the wyec command line tool.
type Command struct {
	name           string
	version        string
	machineVersion string

	stdout io.Writer
	stderr io.Writer

	flags struct {
		fs *flag.FlagSet

		verbose      bool
		config       string
		printVersion bool

		debugVersion bool
		debugFrames  bool
	}
}

// NewCommand returns a new Command.
func NewCommand(name string) *Command {
	return newCommand(name, os.Stdout, os.Stderr)
}

func newCommand(name string, stdout, stderr io.Writer) *Command {
	cmd := &Command{
		name:           name,
		version:        "devel",
		machineVersion: "devel",
		stdout:         stdout,
		stderr:         stderr,
	}
	cmd.initFlagSet(name)
	return cmd
}

// SetVersion sets the command's version.
// It is divided into a human part and a machine part.
func (cmd *Command) SetVersion(human, machine string) {
	cmd.version = human
	cmd.machineVersion = machine
}

// FlagSet returns the command's flag set.
func (cmd *Command) FlagSet() *flag.FlagSet {
	return cmd.flags.fs
}

func (cmd *Command) initFlagSet(name string) {
	flags := flag.NewFlagSet("", flag.ExitOnError)
	flags.SetOutput(cmd.stderr)
	cmd.flags.fs = flags
	flags.Usage = usage(name, flags)

	flags.BoolVar(&cmd.flags.verbose, "v", false, "Annotate every unit with its program points and inferred variable types")
	flags.StringVar(&cmd.flags.config, "config", "", "Read configuration from `file` instead of looking for wyec.conf")
	flags.BoolVar(&cmd.flags.printVersion, "version", false, "Print version and exit")

	flags.BoolVar(&cmd.flags.debugVersion, "debug.version", false, "Print detailed version information about this program")
	flags.BoolVar(&cmd.flags.debugFrames, "debug.frames", false, "Print the frame map of every unit to standard error")
}

// ParseFlags parses command line flags.
// It must be called before calling Run.
func (cmd *Command) ParseFlags(args []string) {
	cmd.flags.fs.Parse(args)
}

// Run compiles the file named on the command line.
// It always calls os.Exit and does not return.
func (cmd *Command) Run() {
	os.Exit(cmd.run())
}

func (cmd *Command) run() int {
	if cmd.flags.debugVersion {
		version.Verbose(cmd.stdout, cmd.version, cmd.machineVersion)
		return 0
	}
	if cmd.flags.printVersion {
		version.Print(cmd.stdout, cmd.version, cmd.machineVersion)
		return 0
	}

	args := cmd.flags.fs.Args()
	if len(args) != 1 {
		cmd.flags.fs.Usage()
		return 2
	}
	path := args[0]

	cfg, err := cmd.loadConfig(path)
	if err != nil {
		fmt.Fprintln(cmd.stdout, err)
		return 1
	}
	opts, err := optionsFor(cfg)
	if err != nil {
		fmt.Fprintln(cmd.stdout, err)
		return 1
	}
	if cmd.flags.verbose {
		opts.Gen.Verbose = true
	}
	if cmd.flags.debugFrames {
		opts.Frames = cmd.stderr
	}

	f, err := loader.Load(path)
	if err != nil {
		fmt.Fprintln(cmd.stdout, err)
		return 1
	}
	if err := Compile(f, opts, cmd.stdout); err != nil {
		fmt.Fprintln(cmd.stdout, err)
		return 1
	}
	return 0
}

func (cmd *Command) loadConfig(path string) (config.Config, error) {
	if cmd.flags.config != "" {
		return config.LoadFile(cmd.flags.config)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(filepath.Dir(abs))
}

// optionsFor translates a configuration into compilation options.
func optionsFor(cfg config.Config) (Options, error) {
	table := make([]width.Kind, 0, len(cfg.Target.Integers))
	for _, name := range cfg.Target.Integers {
		k, ok := width.Lookup(name)
		if !ok {
			return Options{}, fmt.Errorf("unknown integer type %q in target.integers", name)
		}
		table = append(table, k)
	}
	return Options{
		Selector: width.NewSelector(table),
		Analysis: vrp.Options{MaxJoins: cfg.Analysis.MaxJoins},
		Gen: cgen.Options{
			Include: cfg.Target.Include,
			Indent:  strings.Repeat(" ", cfg.Target.Indent),
			Verbose: cfg.Output.Verbose,
		},
	}, nil
}

func usage(name string, fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] file\n", name)

		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Flags:")
		printDefaults(fs)
	}
}

// isZeroValue determines whether the string represents the zero
// value for a flag.
//
// this function has been copied from the Go standard library's 'flag' package.
func isZeroValue(f *flag.Flag, value string) bool {
	typ := reflect.TypeOf(f.Value)
	var z reflect.Value
	if typ.Kind() == reflect.Ptr {
		z = reflect.New(typ.Elem())
	} else {
		z = reflect.Zero(typ)
	}
	return value == z.Interface().(flag.Value).String()
}

// this function has been copied from the Go standard library's 'flag' package and modified to skip debug flags.
func printDefaults(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "debug.") {
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "  -%s", f.Name)
		name, usage := flag.UnquoteUsage(f)
		if len(name) > 0 {
			b.WriteString(" ")
			b.WriteString(name)
		}
		if b.Len() <= 4 {
			b.WriteString("\t")
		} else {
			b.WriteString("\n    \t")
		}
		b.WriteString(strings.ReplaceAll(usage, "\n", "\n    \t"))

		if !isZeroValue(f, f.DefValue) {
			fmt.Fprintf(&b, " (default %v)", f.DefValue)
		}
		fmt.Fprint(fs.Output(), b.String(), "\n")
	})
}
