package automata

import (
	"fmt"
	"io"
)

// WriteDot renders the NFA in Graphviz DOT format.
func (n *NFA) WriteDot(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph nfa {"); err != nil {
		return err
	}
	fmt.Fprintln(w, "\trankdir=LR;")
	for id, s := range n.states {
		shape := "circle"
		if s.rule != NoRule {
			shape = "doublecircle"
		}
		label := fmt.Sprintf("%d", id)
		if s.rule != NoRule {
			label = fmt.Sprintf("%d/r%d", id, s.rule)
		}
		fmt.Fprintf(w, "\t%d [shape=%s,label=%q];\n", id, shape, label)
		for _, to := range s.epsilons {
			fmt.Fprintf(w, "\t%d -> %d [label=\"ε\"];\n", id, to)
		}
		for _, e := range s.edges {
			fmt.Fprintf(w, "\t%d -> %d [label=%q];\n", id, e.to, rangeLabel(e.lo, e.hi))
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// WriteDot renders the DFA in Graphviz DOT format. Edges into the reject
// state are omitted to keep the graph readable.
func (d *DFA) WriteDot(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph dfa {"); err != nil {
		return err
	}
	fmt.Fprintln(w, "\trankdir=LR;")
	for s := 1; s < d.Len(); s++ {
		shape := "circle"
		label := fmt.Sprintf("%d", s)
		if d.Accept[s] != NoRule {
			shape = "doublecircle"
			label = fmt.Sprintf("%d/r%d", s, d.Accept[s])
		}
		fmt.Fprintf(w, "\t%d [shape=%s,label=%q];\n", s, shape, label)

		// Group consecutive bytes with the same target into one edge.
		b := 0
		for b < 256 {
			to := d.Trans[s][b]
			hi := b
			for hi+1 < 256 && d.Trans[s][hi+1] == to {
				hi++
			}
			if to != Reject {
				fmt.Fprintf(w, "\t%d -> %d [label=%q];\n", s, to, rangeLabel(byte(b), byte(hi)))
			}
			b = hi + 1
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func rangeLabel(lo, hi byte) string {
	if lo == hi {
		return byteLabel(lo)
	}
	return byteLabel(lo) + "-" + byteLabel(hi)
}

func byteLabel(b byte) string {
	switch b {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case ' ':
		return "' '"
	}
	if b < ' ' || b > '~' {
		return fmt.Sprintf("0x%02x", b)
	}
	return string(b)
}
