package automata

import (
	"errors"
	"strings"
)

// Reject is the distinguished DFA state reached on any undefined
// transition. It loops to itself on every byte and never accepts, which
// keeps the transition function total.
const Reject StateID = 0

// ErrNoRules reports determinization of an NFA with no rule fragments.
// This is an internal invariant violation; the syntax file parser rejects
// empty rule sets before automata are built.
var ErrNoRules = errors.New("automata: no rules to determinize")

// DFA is a deterministic automaton over the byte alphabet. State 0 is the
// reject state; a zero-filled transition row therefore already encodes
// "reject on everything".
type DFA struct {
	// Trans[s][b] is the state reached from s on byte b.
	Trans [][256]StateID
	// Accept[s] is the lowest-indexed rule accepted in state s, or NoRule.
	Accept []int
	// Start is the scanning start state.
	Start StateID
}

// Len returns the number of DFA states including the reject state.
func (d *DFA) Len() int { return len(d.Trans) }

// Determinize runs subset construction over the merged NFA. Distinct
// epsilon-closures become DFA states, deduplicated by a canonical bitmap
// key over NFA state ids. Each DFA state accepts the minimum rule index
// among the accepting NFA states of its closure, so the earliest-declared
// rule wins ties.
func Determinize(n *NFA) (*DFA, error) {
	if n.Rules() == 0 {
		return nil, ErrNoRules
	}

	d := &DFA{}
	newState := func(rule int) StateID {
		id := StateID(len(d.Trans))
		d.Trans = append(d.Trans, [256]StateID{})
		d.Accept = append(d.Accept, rule)
		return id
	}
	newState(NoRule) // reject

	// Closure sets are keyed by their membership bitmap rendered as a
	// '0'/'1' string; the empty closure is the reject state.
	seen := map[string]StateID{strings.Repeat("0", n.Len()): Reject}

	type pending struct {
		id  StateID
		set []bool
	}
	var queue []pending

	intern := func(set []bool) StateID {
		key := make([]byte, n.Len())
		rule := NoRule
		empty := true
		for i, in := range set {
			if !in {
				key[i] = '0'
				continue
			}
			key[i] = '1'
			empty = false
			if r := n.states[i].rule; r != NoRule && (rule == NoRule || r < rule) {
				rule = r
			}
		}
		if empty {
			return Reject
		}
		if id, ok := seen[string(key)]; ok {
			return id
		}
		id := newState(rule)
		seen[string(key)] = id
		queue = append(queue, pending{id: id, set: set})
		return id
	}

	start := make([]bool, n.Len())
	start[n.Start()] = true
	n.closure(start)
	d.Start = intern(start)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for b := 0; b < 256; b++ {
			move := make([]bool, n.Len())
			any := false
			for id, in := range cur.set {
				if !in {
					continue
				}
				for _, e := range n.states[id].edges {
					if e.lo <= byte(b) && byte(b) <= e.hi {
						move[e.to] = true
						any = true
					}
				}
			}
			if !any {
				continue // row already points at reject
			}
			n.closure(move)
			d.Trans[cur.id][b] = intern(move)
		}
	}
	return d, nil
}
