package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/lexgen/golex"
)

var (
	version string = "dev"
	cli     struct {
		Version kong.VersionFlag

		Input   string `arg:"" default:"-" type:"existingfile" help:"Syntax file to compile (read from stdin if omitted)."`
		Output  string `short:"o" help:"Output file (defaults to <input>.go, or stdout for stdin input)."`
		Package string `short:"p" default:"main" help:"Go package for generated code."`
		Prefix  string `default:"yy" help:"Identifier prefix in generated code."`

		NoMinimize bool   `help:"Skip DFA minimization."`
		Verbose    bool   `short:"v" help:"Print pipeline statistics to stderr."`
		Dump       bool   `help:"Dump the parsed syntax file to stderr instead of generating code."`
		NFADot     string `name:"nfa-dot" help:"Write the NFA in Graphviz dot form to this file."`
		DFADot     string `name:"dfa-dot" help:"Write the minimized DFA in Graphviz dot form to this file."`
	}
)

func main() {
	kctx := kong.Parse(&cli,
		kong.Description(`Generates a Go scanner from a lex-style syntax file.`),
		kong.Vars{"version": version},
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	var file *golex.SyntaxFile
	var err error
	if cli.Input == "-" {
		file, err = golex.Parse("<stdin>", os.Stdin)
	} else {
		file, err = golex.ParseFile(cli.Input)
	}
	if err != nil {
		return err
	}

	if cli.Dump {
		repr.New(os.Stderr, repr.Indent("  ")).Println(file)
		return nil
	}

	options := []golex.Option{golex.Package(cli.Package), golex.Prefix(cli.Prefix)}
	if cli.Verbose {
		options = append(options, golex.Trace(os.Stderr))
	}
	if cli.NoMinimize {
		options = append(options, golex.NoMinimize())
	}
	g, err := golex.New(options...)
	if err != nil {
		return err
	}

	machines, err := g.Compile(file)
	if err != nil {
		return err
	}
	if cli.NFADot != "" {
		if err := atomicWrite(cli.NFADot, machines.NFA.WriteDot); err != nil {
			return err
		}
	}
	if cli.DFADot != "" {
		if err := atomicWrite(cli.DFADot, machines.Min.WriteDot); err != nil {
			return err
		}
	}

	out := outputPath()
	if out == "-" {
		return g.Generate(os.Stdout, file)
	}
	return atomicWrite(out, func(w io.Writer) error {
		return g.Generate(w, file)
	})
}

func outputPath() string {
	if cli.Output != "" {
		return cli.Output
	}
	if cli.Input == "-" {
		return "-"
	}
	base := strings.TrimSuffix(cli.Input, filepath.Ext(cli.Input))
	return base + ".go"
}

// atomicWrite writes via a temporary file and renames it into place, so a
// failed generation never truncates an existing output file.
func atomicWrite(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
