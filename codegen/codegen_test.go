package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgen/golex/automata"
)

// testDFA is a two-rule machine: state 1 is the start, 'a' accepts rule 0
// in state 2, 'b' accepts rule 1 in state 3. State 0 is the reject sink.
func testDFA() *automata.DFA {
	d := &automata.DFA{
		Trans:  make([][256]automata.StateID, 4),
		Accept: []int{-1, -1, 0, 1},
		Start:  1,
	}
	d.Trans[1]['a'] = 2
	d.Trans[1]['b'] = 3
	return d
}

func testFile() File {
	return File{
		Package:  "scanner",
		Prologue: "var count int",
		Epilogue: "func tail() {}",
		Actions:  []string{"count++", "return 1"},
		DFA:      testDFA(),
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, testFile())
	require.NoError(t, err)
	out := buf.String()

	require.Contains(t, out, "package scanner\n")
	require.Contains(t, out, "var count int")
	require.Contains(t, out, "func tail() {}")
	require.Contains(t, out, "yyStart  = 1")
	require.Contains(t, out, "case 0:\n\t\t\tcount++")
	require.Contains(t, out, "case 1:\n\t\t\treturn 1")
	// The driver guards against readers that never make progress.
	require.Contains(t, out, "io.ErrNoProgress")

	// Prologue before the tables, epilogue after the driver.
	assert.Less(t, strings.Index(out, "var count int"), strings.Index(out, "yyAccept"))
	assert.Less(t, strings.Index(out, ") Lex() int"), strings.Index(out, "func tail"))
	assert.Less(t, strings.Index(out, "yyAccept"), strings.Index(out, "yyTrans"))
}

func TestGenerateDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, Generate(&first, testFile()))
	require.NoError(t, Generate(&second, testFile()))
	require.Equal(t, first.String(), second.String())
}

func TestGeneratePrefix(t *testing.T) {
	f := testFile()
	f.Prefix = "lex"
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, f))
	out := buf.String()
	require.NotContains(t, out, "yyAccept")
	require.NotContains(t, out, "yyTrans")
	require.NotContains(t, out, "yyLexer")
	require.Contains(t, out, "lexAccept")
	require.Contains(t, out, "lexTrans")
	require.Contains(t, out, "lexStart")
	require.Contains(t, out, "func lexNewLexer")
}

func TestGeneratePrefixKeepsUserText(t *testing.T) {
	f := testFile()
	f.Prefix = "lex"
	f.Prologue = "var keyyed int"
	f.Epilogue = "func yyy() { keyyed++ }"
	f.Actions = []string{"keyyed++", "return len(yy.Text())"}
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, f))
	out := buf.String()
	require.Contains(t, out, "var keyyed int")
	require.Contains(t, out, "func yyy() { keyyed++ }")
	// Actions address the scanner as yy regardless of prefix.
	require.Contains(t, out, "return len(yy.Text())")
}

func TestGenerateDefaults(t *testing.T) {
	f := testFile()
	f.Package = ""
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, f))
	require.Contains(t, buf.String(), "package main\n")
}

func TestGenerateErrors(t *testing.T) {
	f := testFile()
	f.DFA = nil
	require.Error(t, Generate(&bytes.Buffer{}, f))

	f = testFile()
	f.Actions = nil
	require.Error(t, Generate(&bytes.Buffer{}, f))
}
