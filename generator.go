package golex

import (
	"fmt"
	"io"

	"github.com/lexgen/golex/automata"
	"github.com/lexgen/golex/codegen"
)

// Automata holds the machines built from one syntax file. DFA is the
// subset-construction result; Min is its minimized equivalent (equal to
// DFA when minimization is disabled).
type Automata struct {
	NFA *automata.NFA
	DFA *automata.DFA
	Min *automata.DFA
}

// Generator compiles syntax files into scanner source.
type Generator struct {
	pkg        string
	prefix     string
	trace      io.Writer
	noMinimize bool
}

// New creates a Generator, applying options.
func New(options ...Option) (*Generator, error) {
	g := &Generator{pkg: "main", prefix: "yy"}
	for _, option := range options {
		if err := option(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Must takes the result of New and panics if it errored.
func Must(g *Generator, err error) *Generator {
	if err != nil {
		panic(err)
	}
	return g
}

// Compile builds the automata for file: one Thompson NFA fragment per rule
// merged under a synthetic start state, determinized by subset
// construction, then minimized.
func (g *Generator) Compile(file *SyntaxFile) (*Automata, error) {
	nfa := automata.NewNFA()
	for _, rule := range file.Rules {
		nfa.AddRule(rule.Pattern)
	}
	dfa, err := automata.Determinize(nfa)
	if err != nil {
		return nil, err
	}
	min := dfa
	if !g.noMinimize {
		min = automata.Minimize(dfa)
	}
	if g.trace != nil {
		fmt.Fprintf(g.trace, "golex: %d rules, %d NFA states, %d DFA states, %d after minimization\n",
			len(file.Rules), nfa.Len(), dfa.Len(), min.Len())
	}
	return &Automata{NFA: nfa, DFA: dfa, Min: min}, nil
}

// Generate compiles file and writes the generated scanner source to w.
func (g *Generator) Generate(w io.Writer, file *SyntaxFile) error {
	machines, err := g.Compile(file)
	if err != nil {
		return err
	}
	actions := make([]string, len(file.Rules))
	for i, rule := range file.Rules {
		actions[i] = rule.Action
	}
	return codegen.Generate(w, codegen.File{
		Package:  g.pkg,
		Prefix:   g.prefix,
		Prologue: file.Prologue,
		Epilogue: file.Epilogue,
		Actions:  actions,
		DFA:      machines.Min,
	})
}
