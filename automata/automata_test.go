package automata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgen/golex/regex"
)

func compile(t *testing.T, patterns ...string) (*NFA, *DFA) {
	t.Helper()
	nfa := NewNFA()
	for _, pattern := range patterns {
		node, err := regex.Parse(pattern, nil)
		require.NoError(t, err, "pattern %q", pattern)
		nfa.AddRule(node)
	}
	dfa, err := Determinize(nfa)
	require.NoError(t, err)
	return nfa, dfa
}

// The reference ruleset: keyword before identifier, then number, then
// whitespace.
var rules = []string{`"if"`, `[a-zA-Z][a-zA-Z0-9_]*`, `[0-9]+`, `[ \t]+`}

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		matches []Match
	}{
		{
			name:    "KeywordBeatsIdentifierOnTie",
			input:   "if",
			matches: []Match{{Rule: 0, Start: 0, End: 2}},
		},
		{
			name:    "LongerIdentifierBeatsKeyword",
			input:   "iffy",
			matches: []Match{{Rule: 1, Start: 0, End: 4}},
		},
		{
			name:    "Number",
			input:   "42",
			matches: []Match{{Rule: 2, Start: 0, End: 2}},
		},
		{
			name:  "TokenSequence",
			input: "a 1",
			matches: []Match{
				{Rule: 1, Start: 0, End: 1},
				{Rule: 3, Start: 1, End: 2},
				{Rule: 2, Start: 2, End: 3},
			},
		},
		{
			name:    "BacktrackAfterPartialKeyword",
			input:   "if2",
			matches: []Match{{Rule: 1, Start: 0, End: 3}},
		},
	}
	_, dfa := compile(t, rules...)
	min := Minimize(dfa)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			matches, err := dfa.Scan([]byte(test.input))
			require.NoError(t, err)
			require.Equal(t, test.matches, matches)

			matches, err = min.Scan([]byte(test.input))
			require.NoError(t, err)
			require.Equal(t, test.matches, matches, "minimized DFA diverged")
		})
	}
}

func TestScanUnrecognizedInput(t *testing.T) {
	_, dfa := compile(t, rules...)
	matches, err := dfa.Scan([]byte("@"))
	require.Empty(t, matches)
	var uerr *UnrecognizedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 0, uerr.Offset)
	assert.Equal(t, byte('@'), uerr.Byte)
}

func TestScanUnrecognizedAfterMatch(t *testing.T) {
	_, dfa := compile(t, "a{2,3}")
	matches, err := dfa.Scan([]byte("aaaa"))
	var uerr *UnrecognizedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 3, uerr.Offset)
	require.Equal(t, []Match{{Rule: 0, Start: 0, End: 3}}, matches)
}

func TestScanZeroLengthMatchMakesNoProgress(t *testing.T) {
	_, dfa := compile(t, "a*")
	_, err := dfa.Scan([]byte("b"))
	var uerr *UnrecognizedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 0, uerr.Offset)
}

func TestBoundedRepetition(t *testing.T) {
	_, dfa := compile(t, "a{2,3}b")
	for input, ok := range map[string]bool{
		"aab":   true,
		"aaab":  true,
		"ab":    false,
		"aaaab": false,
	} {
		matches, err := dfa.Scan([]byte(input))
		if ok {
			require.NoError(t, err, "input %q", input)
			require.Equal(t, []Match{{Rule: 0, Start: 0, End: len(input)}}, matches)
		} else {
			require.Error(t, err, "input %q", input)
		}
	}
}

func TestDotMatchesAnyByteExceptNewline(t *testing.T) {
	_, dfa := compile(t, ".")
	matches, err := dfa.Scan([]byte{0x00})
	require.NoError(t, err)
	require.Equal(t, []Match{{Rule: 0, Start: 0, End: 1}}, matches)

	_, err = dfa.Scan([]byte("\n"))
	require.Error(t, err)
}

func TestNegatedClassComplementsFullAlphabet(t *testing.T) {
	_, dfa := compile(t, "[^a-z]")
	matches, err := dfa.Scan([]byte{0xff})
	require.NoError(t, err)
	require.Equal(t, 0, matches[0].Rule)

	_, err = dfa.Scan([]byte("q"))
	require.Error(t, err)
}

func TestDeterminizeRejectsEmptyRuleSet(t *testing.T) {
	_, err := Determinize(NewNFA())
	require.ErrorIs(t, err, ErrNoRules)
}

func TestTransitionFunctionIsTotal(t *testing.T) {
	_, dfa := compile(t, rules...)
	for s := 0; s < dfa.Len(); s++ {
		for b := 0; b < 256; b++ {
			to := int(dfa.Trans[s][b])
			require.GreaterOrEqual(t, to, 0)
			require.Less(t, to, dfa.Len())
		}
	}
	for b := 0; b < 256; b++ {
		require.Equal(t, Reject, dfa.Trans[Reject][b], "reject state must self-loop")
	}
	require.Equal(t, NoRule, dfa.Accept[Reject])
}

func TestMinimizeShrinksAndPreservesLanguage(t *testing.T) {
	// a|b and [ab] build different NFAs for the same language, which
	// guarantees mergeable DFA states.
	_, dfa := compile(t, "(a|b)(a|b)*", "[0-9]")
	min := Minimize(dfa)
	assert.LessOrEqual(t, min.Len(), dfa.Len())
	require.Equal(t, NoRule, min.Accept[Reject])

	inputs := []string{"a", "b", "abba", "5", "a5", "5a", "", "ca", "ac"}
	for _, input := range inputs {
		want, wantErr := dfa.Scan([]byte(input))
		got, gotErr := min.Scan([]byte(input))
		require.Equal(t, want, got, "input %q", input)
		require.Equal(t, wantErr == nil, gotErr == nil, "input %q", input)
	}
}

func TestMinimizeIdempotent(t *testing.T) {
	_, dfa := compile(t, rules...)
	min := Minimize(dfa)
	again := Minimize(min)
	require.Equal(t, min.Len(), again.Len())
}

func TestWriteDot(t *testing.T) {
	nfa, dfa := compile(t, "a+")
	var buf bytes.Buffer
	require.NoError(t, nfa.WriteDot(&buf))
	assert.Contains(t, buf.String(), "digraph nfa {")
	assert.Contains(t, buf.String(), "ε")

	buf.Reset()
	require.NoError(t, dfa.WriteDot(&buf))
	assert.Contains(t, buf.String(), "digraph dfa {")
	assert.Contains(t, buf.String(), "doublecircle")
}

func TestMacroEquivalence(t *testing.T) {
	digit, err := regex.Parse("[0-9]", nil)
	require.NoError(t, err)
	macro, err := regex.Parse("{D}+", regex.MacroMap{"D": digit})
	require.NoError(t, err)
	inline, err := regex.Parse("[0-9]+", nil)
	require.NoError(t, err)

	build := func(node regex.Node) *DFA {
		nfa := NewNFA()
		nfa.AddRule(node)
		dfa, err := Determinize(nfa)
		require.NoError(t, err)
		return Minimize(dfa)
	}
	a, b := build(macro), build(inline)
	for _, input := range []string{"7", "123", "", "x", "12x"} {
		am, aerr := a.Scan([]byte(input))
		bm, berr := b.Scan([]byte(input))
		require.Equal(t, am, bm, "input %q", input)
		require.Equal(t, aerr == nil, berr == nil, "input %q", input)
	}
}
