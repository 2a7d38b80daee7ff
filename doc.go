// Package golex generates table-driven scanners from lex-style syntax
// files.
//
// A syntax file has three sections separated by lines containing exactly
// "%%": named pattern definitions, pattern/action rules, and optional
// verbatim trailing code. Each rule's pattern is compiled through the
// classic pipeline: regular expression tree, Thompson NFA, subset
// construction into a single DFA, and partition-refinement minimization.
// The emitted scanner performs maximal-munch matching, falling back to the
// last accepting state, and resolves ties in favour of the earliest
// declared rule.
//
//	file, err := golex.ParseFile("scanner.l")
//	if err != nil { ... }
//	g := golex.Must(golex.New(golex.Package("scanner")))
//	err = g.Generate(out, file)
//
// The automata and generated-code stages are exposed separately in the
// automata and codegen packages.
package golex
