package golex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgen/golex/automata"
)

const generatorSource = `letter  [a-zA-Z]

%%
"if"                    return IF
{letter}({letter}|[0-9_])*  return IDENT
[0-9]+                  return NUMBER
[ \t\n]+                { }
`

func parseSample(t *testing.T) *SyntaxFile {
	t.Helper()
	file, err := ParseString("sample.l", generatorSource)
	require.NoError(t, err)
	return file
}

func TestCompile(t *testing.T) {
	g := Must(New())
	machines, err := g.Compile(parseSample(t))
	require.NoError(t, err)
	require.NotNil(t, machines.NFA)
	require.NotNil(t, machines.DFA)
	require.NotNil(t, machines.Min)
	assert.LessOrEqual(t, machines.Min.Len(), machines.DFA.Len())

	// The compiled machine honours longest match and declaration order:
	// "if" is a keyword, "iffy" an identifier.
	matches, err := machines.Min.Scan([]byte("if iffy"))
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, 0, matches[0].Rule)
	assert.Equal(t, 3, matches[1].Rule)
	assert.Equal(t, 1, matches[2].Rule)
}

func TestCompileNoMinimize(t *testing.T) {
	g := Must(New(NoMinimize()))
	machines, err := g.Compile(parseSample(t))
	require.NoError(t, err)
	assert.Equal(t, machines.DFA, machines.Min)
}

func TestCompileTrace(t *testing.T) {
	var trace bytes.Buffer
	g := Must(New(Trace(&trace)))
	_, err := g.Compile(parseSample(t))
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "4 rules")
	assert.Contains(t, trace.String(), "NFA states")
}

func TestCompileNoRules(t *testing.T) {
	g := Must(New())
	_, err := g.Compile(&SyntaxFile{})
	require.ErrorIs(t, err, automata.ErrNoRules)
}

func TestGenerate(t *testing.T) {
	g := Must(New(Package("scanner")))
	var buf bytes.Buffer
	require.NoError(t, g.Generate(&buf, parseSample(t)))
	out := buf.String()
	assert.Contains(t, out, "package scanner\n")
	assert.Contains(t, out, "return IF")
	assert.Contains(t, out, "return IDENT")
	assert.Contains(t, out, "yyTrans")
}

func TestGenerateDeterministic(t *testing.T) {
	g := Must(New())
	var first, second bytes.Buffer
	require.NoError(t, g.Generate(&first, parseSample(t)))
	require.NoError(t, g.Generate(&second, parseSample(t)))
	require.Equal(t, first.String(), second.String())
}

func TestGeneratePrefix(t *testing.T) {
	g := Must(New(Prefix("lex")))
	var buf bytes.Buffer
	require.NoError(t, g.Generate(&buf, parseSample(t)))
	assert.Contains(t, buf.String(), "func lexNewLexer")
	assert.False(t, strings.Contains(buf.String(), "yyTrans"))
}
