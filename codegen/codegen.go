// Package codegen emits the generated scanner: DFA tables, per-rule action
// bodies, the maximal-munch driver, and the user's verbatim prologue and
// epilogue, as one self-contained Go source file.
package codegen

import (
	"bytes"
	_ "embed" // For go:embed.
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/lexgen/golex/automata"
)

//go:embed scanner.go.tmpl
var scannerTemplateSource string

var scannerTemplate = template.Must(template.New("scanner").Parse(scannerTemplateSource))

// File describes one scanner to generate.
type File struct {
	// Package is the package clause of the generated file ("main" when
	// empty).
	Package string
	// Prefix replaces "yy" in the generated package-scope identifiers
	// ("yy" when empty). Actions always address the scanner as yy.
	Prefix string
	// Prologue and Epilogue are copied through unmodified, before and
	// after the generated declarations.
	Prologue string
	Epilogue string
	// Actions holds the verbatim action body for each rule, indexed by
	// rule number.
	Actions []string
	// DFA is the automaton to emit, with Accept tags matching Actions.
	DFA *automata.DFA
}

type templateContext struct {
	File
	Start       int
	States      int
	AcceptTable string
	TransTable  string
}

// Generate writes the scanner source for f to w. Output is deterministic:
// the same File always produces byte-identical source.
func Generate(w io.Writer, f File) error {
	if f.DFA == nil {
		return errors.New("codegen: no DFA to emit")
	}
	if len(f.Actions) == 0 {
		return errors.New("codegen: no rule actions to emit")
	}
	if f.Package == "" {
		f.Package = "main"
	}
	if f.Prefix == "" {
		f.Prefix = "yy"
	}
	ctx := templateContext{
		File:        f,
		Start:       int(f.DFA.Start),
		States:      f.DFA.Len(),
		AcceptTable: acceptTable(f.DFA),
		TransTable:  transTable(f.DFA),
	}
	tmpl := scannerTemplate
	if f.Prefix != "yy" {
		// Rename the declarations in the template source itself, never in
		// the executed output, so yy substrings in the user's prologue,
		// actions and epilogue survive. The driver's yy receiver is not
		// renamed either; actions call yy.Text() under any prefix.
		t, err := template.New("scanner").Parse(prefixReplacer(f.Prefix).Replace(scannerTemplateSource))
		if err != nil {
			return err
		}
		tmpl = t
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// prefixReplacer renames the identifiers the template declares at package
// scope.
func prefixReplacer(prefix string) *strings.Replacer {
	names := []string{"yyLexer", "yyNewLexer", "yyStart", "yyReject", "yyAccept", "yyTrans"}
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, name, prefix+strings.TrimPrefix(name, "yy"))
	}
	return strings.NewReplacer(pairs...)
}

// acceptTable renders the per-state accepting rule indexes, 16 per line.
func acceptTable(d *automata.DFA) string {
	var sb strings.Builder
	for i := 0; i < d.Len(); i += 16 {
		row := make([]string, 0, 16)
		for j := i; j < i+16 && j < d.Len(); j++ {
			row = append(row, strconv.Itoa(d.Accept[j]))
		}
		fmt.Fprintf(&sb, "\t%s,\n", strings.Join(row, ", "))
	}
	return sb.String()
}

// transTable renders one 256-entry row per state, 16 entries per line.
func transTable(d *automata.DFA) string {
	var sb strings.Builder
	row := make([]string, 16)
	for s := 0; s < d.Len(); s++ {
		sb.WriteString("\t{\n")
		for i := 0; i < 256; i += 16 {
			for j := range row {
				row[j] = strconv.Itoa(int(d.Trans[s][i+j]))
			}
			fmt.Fprintf(&sb, "\t\t%s,\n", strings.Join(row, ", "))
		}
		sb.WriteString("\t},\n")
	}
	return sb.String()
}
