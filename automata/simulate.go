package automata

import "fmt"

// Match is one token recognized by Scan. The lexeme is input[Start:End].
type Match struct {
	Rule       int
	Start, End int
}

// UnrecognizedError reports input that no rule matches at the given offset.
// The generator never synthesizes a fallback rule; total coverage requires
// an author-supplied catch-all pattern.
type UnrecognizedError struct {
	Offset int
	Byte   byte
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("unrecognized input %q at offset %d", e.Byte, e.Offset)
}

// Scan tokenizes input with the maximal-munch algorithm the generated
// scanner uses: from each token start, follow transitions as far as
// possible, remembering the last accepting state passed; the token is the
// prefix up to that mark, and bytes consumed beyond it are rescanned.
//
// Scan exists so that match behavior is testable in-process; the generated
// driver implements the same loop over a streaming reader.
func (d *DFA) Scan(input []byte) ([]Match, error) {
	var matches []Match
	pos := 0
	for pos < len(input) {
		state := d.Start
		rule, end := NoRule, pos
		for i := pos; i < len(input); i++ {
			state = d.Trans[state][input[i]]
			if state == Reject {
				break
			}
			if r := d.Accept[state]; r != NoRule {
				rule, end = r, i+1
			}
		}
		// A zero-length match cannot advance the cursor, so it is
		// reported the same way as no match at all.
		if rule == NoRule || end == pos {
			return matches, &UnrecognizedError{Offset: pos, Byte: input[pos]}
		}
		matches = append(matches, Match{Rule: rule, Start: pos, End: end})
		pos = end
	}
	return matches, nil
}
