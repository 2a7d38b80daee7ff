package regex

import (
	"fmt"
	"strings"
)

// Node is one operator in a parsed pattern. The set of implementations is
// closed; consumers dispatch with a type switch and must handle every
// variant. Children are owned exclusively by their parent, so splicing a
// node into another tree always goes through Clone.
type Node interface {
	// Clone returns a deep copy of the node.
	Clone() Node

	fmt.Stringer
}

// Empty matches the empty string.
type Empty struct{}

// Literal matches a single byte.
type Literal struct {
	Ch byte
}

// Any matches any byte except newline.
type Any struct{}

// Range is an inclusive byte range inside a character class.
type Range struct {
	Lo, Hi byte
}

// Class matches any byte inside (or, when negated, outside) a set of byte
// ranges.
type Class struct {
	Ranges  []Range
	Negated bool
}

// Concat matches Left followed by Right.
type Concat struct {
	Left, Right Node
}

// Union matches either Left or Right.
type Union struct {
	Left, Right Node
}

// Star matches zero or more repetitions of Inner.
type Star struct {
	Inner Node
}

// Plus matches one or more repetitions of Inner.
type Plus struct {
	Inner Node
}

// Optional matches zero or one occurrence of Inner.
type Optional struct {
	Inner Node
}

// Repeat matches between Min and Max repetitions of Inner. Max of -1 means
// unbounded.
type Repeat struct {
	Inner    Node
	Min, Max int
}

func (Empty) Clone() Node     { return Empty{} }
func (n Literal) Clone() Node { return Literal{Ch: n.Ch} }
func (Any) Clone() Node       { return Any{} }

func (n Class) Clone() Node {
	ranges := make([]Range, len(n.Ranges))
	copy(ranges, n.Ranges)
	return Class{Ranges: ranges, Negated: n.Negated}
}

func (n Concat) Clone() Node   { return Concat{Left: n.Left.Clone(), Right: n.Right.Clone()} }
func (n Union) Clone() Node    { return Union{Left: n.Left.Clone(), Right: n.Right.Clone()} }
func (n Star) Clone() Node     { return Star{Inner: n.Inner.Clone()} }
func (n Plus) Clone() Node     { return Plus{Inner: n.Inner.Clone()} }
func (n Optional) Clone() Node { return Optional{Inner: n.Inner.Clone()} }

func (n Repeat) Clone() Node {
	return Repeat{Inner: n.Inner.Clone(), Min: n.Min, Max: n.Max}
}

// Matches reports whether the class matches b.
func (n Class) Matches(b byte) bool {
	for _, r := range n.Ranges {
		if b >= r.Lo && b <= r.Hi {
			return !n.Negated
		}
	}
	return n.Negated
}

func (Empty) String() string     { return `""` }
func (n Literal) String() string { return quoteByte(n.Ch) }
func (Any) String() string       { return "." }

func (n Class) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	if n.Negated {
		sb.WriteByte('^')
	}
	for _, r := range n.Ranges {
		sb.WriteString(quoteByte(r.Lo))
		if r.Hi != r.Lo {
			sb.WriteByte('-')
			sb.WriteString(quoteByte(r.Hi))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func (n Concat) String() string   { return n.Left.String() + n.Right.String() }
func (n Union) String() string    { return "(" + n.Left.String() + "|" + n.Right.String() + ")" }
func (n Star) String() string     { return "(" + n.Inner.String() + ")*" }
func (n Plus) String() string     { return "(" + n.Inner.String() + ")+" }
func (n Optional) String() string { return "(" + n.Inner.String() + ")?" }

func (n Repeat) String() string {
	if n.Max < 0 {
		return fmt.Sprintf("(%s){%d,}", n.Inner, n.Min)
	}
	if n.Max == n.Min {
		return fmt.Sprintf("(%s){%d}", n.Inner, n.Min)
	}
	return fmt.Sprintf("(%s){%d,%d}", n.Inner, n.Min, n.Max)
}

func quoteByte(b byte) string {
	switch b {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	}
	if b < ' ' || b > '~' {
		return fmt.Sprintf(`\x%02x`, b)
	}
	if strings.IndexByte(`.*+?|()[]{}"\-^`, b) != -1 {
		return `\` + string(b)
	}
	return string(b)
}
