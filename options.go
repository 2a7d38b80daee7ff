package golex

import "io"

// An Option modifies the behaviour of the Generator.
type Option func(g *Generator) error

// Package sets the package clause of the generated file. Defaults to
// "main".
func Package(name string) Option {
	return func(g *Generator) error {
		g.pkg = name
		return nil
	}
}

// Prefix sets the identifier prefix used in generated code. Defaults to
// "yy".
func Prefix(prefix string) Option {
	return func(g *Generator) error {
		g.prefix = prefix
		return nil
	}
}

// Trace writes per-phase pipeline statistics to "w".
func Trace(w io.Writer) Option {
	return func(g *Generator) error {
		g.trace = w
		return nil
	}
}

// NoMinimize disables DFA minimization. The generated scanner matches the
// same language with more states; mainly useful when debugging table
// output.
func NoMinimize() Option {
	return func(g *Generator) error {
		g.noMinimize = true
		return nil
	}
}
