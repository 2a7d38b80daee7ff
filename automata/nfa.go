// Package automata compiles parsed patterns into finite automata: Thompson
// construction of one NFA fragment per rule, a merged NFA with one synthetic
// start state, subset construction into a DFA whose transition function is
// total over all 256 byte values, and partition-refinement minimization.
//
// States live in flat arenas and reference each other by integer id, never
// by pointer, so the loops introduced by Star and Plus cannot create
// ownership cycles.
package automata

import (
	"fmt"

	"github.com/lexgen/golex/regex"
)

// StateID indexes a state within its owning arena.
type StateID int

// NoRule marks a state that does not accept any rule.
const NoRule = -1

type nfaEdge struct {
	lo, hi byte
	to     StateID
}

type nfaState struct {
	epsilons []StateID
	edges    []nfaEdge
	rule     int // accepting rule index, or NoRule
}

// NFA is a merged nondeterministic automaton over all rules of a syntax
// file. The zero value is empty; use NewNFA.
type NFA struct {
	states []*nfaState
	start  StateID
	rules  int
}

// NewNFA returns an empty NFA with only the synthetic overall start state.
func NewNFA() *NFA {
	n := &NFA{}
	n.start = n.newState()
	return n
}

// Start returns the id of the synthetic start state.
func (n *NFA) Start() StateID { return n.start }

// Len returns the number of states in the arena.
func (n *NFA) Len() int { return len(n.states) }

// Rules returns the number of rules added so far.
func (n *NFA) Rules() int { return n.rules }

func (n *NFA) newState() StateID {
	id := StateID(len(n.states))
	n.states = append(n.states, &nfaState{rule: NoRule})
	return id
}

func (n *NFA) addEpsilon(from, to StateID) {
	s := n.states[from]
	s.epsilons = append(s.epsilons, to)
}

func (n *NFA) addRange(from StateID, lo, hi byte, to StateID) {
	s := n.states[from]
	s.edges = append(s.edges, nfaEdge{lo: lo, hi: hi, to: to})
}

// AddRule compiles pattern via Thompson's construction, tags its accepting
// state with the rule index, and hooks the fragment onto the synthetic
// start state. Rules must be added in declaration order; the index is the
// tie-break priority, lower wins.
func (n *NFA) AddRule(pattern regex.Node) int {
	start, end := n.fragment(pattern)
	index := n.rules
	n.rules++
	n.states[end].rule = index
	n.addEpsilon(n.start, start)
	return index
}

// fragment builds the NFA fragment for one node and returns its start and
// accepting state ids.
func (n *NFA) fragment(node regex.Node) (start, end StateID) {
	switch t := node.(type) {
	case regex.Empty:
		start = n.newState()
		end = n.newState()
		n.addEpsilon(start, end)

	case regex.Literal:
		start = n.newState()
		end = n.newState()
		n.addRange(start, t.Ch, t.Ch, end)

	case regex.Any:
		start = n.newState()
		end = n.newState()
		// Any byte but newline.
		n.addRange(start, 0, '\n'-1, end)
		n.addRange(start, '\n'+1, 0xff, end)

	case regex.Class:
		start = n.newState()
		end = n.newState()
		for _, r := range classRanges(t) {
			n.addRange(start, r.Lo, r.Hi, end)
		}

	case regex.Concat:
		start, end = n.concat(t.Left, t.Right)

	case regex.Union:
		ls, le := n.fragment(t.Left)
		rs, re := n.fragment(t.Right)
		start = n.newState()
		end = n.newState()
		n.addEpsilon(start, ls)
		n.addEpsilon(start, rs)
		n.addEpsilon(le, end)
		n.addEpsilon(re, end)

	case regex.Star:
		start, end = n.star(t.Inner)

	case regex.Plus:
		// One mandatory pass, then zero or more.
		fs, fe := n.fragment(t.Inner)
		ss, se := n.star(t.Inner)
		n.addEpsilon(fe, ss)
		start, end = fs, se

	case regex.Optional:
		fs, fe := n.fragment(t.Inner)
		start = n.newState()
		end = n.newState()
		n.addEpsilon(start, fs)
		n.addEpsilon(start, end)
		n.addEpsilon(fe, end)

	case regex.Repeat:
		start, end = n.repeat(t)

	default:
		panic(fmt.Sprintf("automata: unhandled pattern node %T", node))
	}
	return start, end
}

func (n *NFA) concat(left, right regex.Node) (StateID, StateID) {
	ls, le := n.fragment(left)
	rs, re := n.fragment(right)
	n.addEpsilon(le, rs)
	return ls, re
}

func (n *NFA) star(inner regex.Node) (StateID, StateID) {
	fs, fe := n.fragment(inner)
	start := n.newState()
	end := n.newState()
	n.addEpsilon(start, fs)
	n.addEpsilon(start, end)
	n.addEpsilon(fe, fs)
	n.addEpsilon(fe, end)
	return start, end
}

// repeat expands bounded repetition into min mandatory copies followed by
// either optional copies or a trailing star. Copies are fresh fragments
// built from the same (immutable) node.
func (n *NFA) repeat(t regex.Repeat) (StateID, StateID) {
	start := n.newState()
	prev := start
	for i := 0; i < t.Min; i++ {
		fs, fe := n.fragment(t.Inner)
		n.addEpsilon(prev, fs)
		prev = fe
	}
	if t.Max < 0 {
		ss, se := n.star(t.Inner)
		n.addEpsilon(prev, ss)
		return start, se
	}
	for i := t.Min; i < t.Max; i++ {
		fs, fe := n.fragment(t.Inner)
		skip := n.newState()
		n.addEpsilon(prev, fs)
		n.addEpsilon(prev, skip)
		n.addEpsilon(fe, skip)
		prev = skip
	}
	return start, prev
}

// classRanges converts a character class to the concrete byte ranges it
// matches, complementing negated classes over the full byte alphabet.
func classRanges(cls regex.Class) []regex.Range {
	if !cls.Negated {
		return cls.Ranges
	}
	var out []regex.Range
	next := 0
	for _, r := range cls.Ranges {
		if int(r.Lo) > next {
			out = append(out, regex.Range{Lo: byte(next), Hi: r.Lo - 1})
		}
		next = int(r.Hi) + 1
	}
	if next <= 0xff {
		out = append(out, regex.Range{Lo: byte(next), Hi: 0xff})
	}
	return out
}

// closure expands the state set in-place to its epsilon closure. The set is
// represented as a membership bitmap over the arena.
func (n *NFA) closure(set []bool) {
	stack := make([]StateID, 0, len(set))
	for id, in := range set {
		if in {
			stack = append(stack, StateID(id))
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range n.states[id].epsilons {
			if !set[to] {
				set[to] = true
				stack = append(stack, to)
			}
		}
	}
}
