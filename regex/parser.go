package regex

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// Pattern parse failures, one sentinel per condition so callers can test
// with errors.Is.
var (
	ErrUnbalancedParens   = errors.New("unbalanced parentheses")
	ErrUnterminatedClass  = errors.New("unterminated character class")
	ErrUnterminatedString = errors.New("unterminated quoted string")
	ErrUnknownPosixClass  = errors.New("unknown POSIX class")
	ErrUndefinedMacro     = errors.New("undefined macro")
	ErrUnterminatedMacro  = errors.New("unterminated macro reference")
	ErrBadRepeat          = errors.New("malformed repetition bounds")
	ErrBadRange           = errors.New("bad range in character class")
	ErrBareClosure        = errors.New("closure applies to nothing")
	ErrTrailingBackslash  = errors.New("trailing backslash")
)

// ParseError is a pattern parse failure at a byte offset within the pattern.
type ParseError struct {
	Offset int
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("offset %d: %s: %s", e.Offset, e.Err, e.Detail)
	}
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Macros resolves a name to its previously parsed definition.
type Macros interface {
	Lookup(name string) (Node, bool)
}

// MacroMap is a plain map implementation of Macros.
type MacroMap map[string]Node

// Lookup implements Macros.
func (m MacroMap) Lookup(name string) (Node, bool) {
	n, ok := m[name]
	return n, ok
}

// Parse parses a single rule pattern into its syntax tree. Macro references
// of the form {NAME} are resolved through macros and spliced in as deep
// copies; macros may be nil if the pattern contains no references.
func Parse(pattern string, macros Macros) (Node, error) {
	p := &parser{src: pattern, macros: macros}
	node, err := p.alternation(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		// Only an unbalanced ')' can stop the parse early.
		return nil, p.errorf(p.pos, ErrUnbalancedParens, "")
	}
	return node, nil
}

type parser struct {
	src    string
	pos    int
	macros Macros
}

func (p *parser) errorf(offset int, kind error, detail string) error {
	return &ParseError{Offset: offset, Err: kind, Detail: detail}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

// alternation = concat ("|" concat)*
func (p *parser) alternation(depth int) (Node, error) {
	left, err := p.concat(depth)
	if err != nil {
		return nil, err
	}
	for !p.eof() && p.peek() == '|' {
		p.pos++
		right, err := p.concat(depth)
		if err != nil {
			return nil, err
		}
		left = Union{Left: left, Right: right}
	}
	return left, nil
}

// concat = closure*
func (p *parser) concat(depth int) (Node, error) {
	var node Node = Empty{}
	first := true
	for !p.eof() {
		switch p.peek() {
		case '|':
			return node, nil
		case ')':
			if depth == 0 {
				return nil, p.errorf(p.pos, ErrUnbalancedParens, "")
			}
			return node, nil
		}
		next, err := p.closure(depth)
		if err != nil {
			return nil, err
		}
		if first {
			node = next
			first = false
		} else {
			node = Concat{Left: node, Right: next}
		}
	}
	return node, nil
}

// closure = term ("*" | "+" | "?" | bounds)*
func (p *parser) closure(depth int) (Node, error) {
	node, err := p.term(depth)
	if err != nil {
		return nil, err
	}
	for !p.eof() {
		switch p.peek() {
		case '*':
			p.pos++
			node = Star{Inner: node}
		case '+':
			p.pos++
			node = Plus{Inner: node}
		case '?':
			p.pos++
			node = Optional{Inner: node}
		case '{':
			// A brace introduces repetition bounds only when followed by
			// a digit; otherwise it is a macro reference handled by term.
			if p.pos+1 >= len(p.src) || !isDigit(p.src[p.pos+1]) {
				return node, nil
			}
			min, max, err := p.bounds()
			if err != nil {
				return nil, err
			}
			node = Repeat{Inner: node, Min: min, Max: max}
		default:
			return node, nil
		}
	}
	return node, nil
}

// bounds parses "{m}", "{m,}" or "{m,n}" with the cursor on "{".
func (p *parser) bounds() (min, max int, err error) {
	start := p.pos
	p.pos++ // {
	min = p.number()
	switch {
	case !p.eof() && p.peek() == '}':
		p.pos++
		return min, min, nil
	case !p.eof() && p.peek() == ',':
		p.pos++
	default:
		return 0, 0, p.errorf(start, ErrBadRepeat, "")
	}
	if !p.eof() && p.peek() == '}' {
		p.pos++
		return min, -1, nil
	}
	if p.eof() || !isDigit(p.peek()) {
		return 0, 0, p.errorf(start, ErrBadRepeat, "")
	}
	max = p.number()
	if p.eof() || p.peek() != '}' {
		return 0, 0, p.errorf(start, ErrBadRepeat, "")
	}
	p.pos++
	if max < min {
		return 0, 0, p.errorf(start, ErrBadRepeat, fmt.Sprintf("{%d,%d}", min, max))
	}
	return min, max, nil
}

func (p *parser) number() int {
	n := 0
	for !p.eof() && isDigit(p.peek()) {
		n = n*10 + int(p.peek()-'0')
		p.pos++
	}
	return n
}

func (p *parser) term(depth int) (Node, error) {
	if p.eof() {
		return Empty{}, nil
	}
	start := p.pos
	switch c := p.peek(); c {
	case '*', '+', '?':
		return nil, p.errorf(start, ErrBareClosure, "")
	case '(':
		p.pos++
		inner, err := p.alternation(depth + 1)
		if err != nil {
			return nil, err
		}
		if p.eof() || p.peek() != ')' {
			return nil, p.errorf(start, ErrUnbalancedParens, "")
		}
		p.pos++
		return inner, nil
	case '[':
		return p.class()
	case '"':
		return p.quoted()
	case '{':
		if p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]) {
			return nil, p.errorf(start, ErrBareClosure, "")
		}
		return p.macro()
	case '.':
		p.pos++
		return Any{}, nil
	case '\\':
		b, err := p.escape()
		if err != nil {
			return nil, err
		}
		return Literal{Ch: b}, nil
	default:
		p.pos++
		return Literal{Ch: c}, nil
	}
}

// quoted parses a double-quoted string; every byte inside matches itself,
// with backslash escapes still honoured.
func (p *parser) quoted() (Node, error) {
	start := p.pos
	p.pos++ // "
	var node Node = Empty{}
	first := true
	for {
		if p.eof() {
			return nil, p.errorf(start, ErrUnterminatedString, "")
		}
		c := p.peek()
		if c == '"' {
			p.pos++
			return node, nil
		}
		if c == '\\' {
			var err error
			if c, err = p.escape(); err != nil {
				return nil, err
			}
		} else {
			p.pos++
		}
		if first {
			node = Literal{Ch: c}
			first = false
		} else {
			node = Concat{Left: node, Right: Literal{Ch: c}}
		}
	}
}

// macro parses a {NAME} reference and splices in a deep copy of the named
// definition.
func (p *parser) macro() (Node, error) {
	start := p.pos
	p.pos++ // {
	nameStart := p.pos
	for !p.eof() && p.peek() != '}' {
		p.pos++
	}
	if p.eof() {
		return nil, p.errorf(start, ErrUnterminatedMacro, "")
	}
	name := p.src[nameStart:p.pos]
	p.pos++ // }
	if p.macros == nil {
		return nil, p.errorf(start, ErrUndefinedMacro, name)
	}
	def, ok := p.macros.Lookup(name)
	if !ok {
		return nil, p.errorf(start, ErrUndefinedMacro, name)
	}
	return def.Clone(), nil
}

// class parses a bracket expression with the cursor on "[".
func (p *parser) class() (Node, error) {
	start := p.pos
	p.pos++ // [
	cls := Class{}
	if !p.eof() && p.peek() == '^' {
		cls.Negated = true
		p.pos++
	}
	// A ']' immediately after '[' or '[^' is a literal member.
	if !p.eof() && p.peek() == ']' {
		cls.Ranges = append(cls.Ranges, Range{Lo: ']', Hi: ']'})
		p.pos++
	}
	for {
		if p.eof() {
			return nil, p.errorf(start, ErrUnterminatedClass, "")
		}
		c := p.peek()
		if c == ']' {
			p.pos++
			cls.Ranges = normalizeRanges(cls.Ranges)
			return cls, nil
		}
		if c == '[' && p.pos+1 < len(p.src) && p.src[p.pos+1] == ':' {
			ranges, err := p.posixClass()
			if err != nil {
				return nil, err
			}
			cls.Ranges = append(cls.Ranges, ranges...)
			continue
		}
		lo, err := p.classAtom()
		if err != nil {
			return nil, err
		}
		hi := lo
		// "a-z" is a range unless '-' is the last member before ']'.
		if p.pos+1 < len(p.src) && p.peek() == '-' && p.src[p.pos+1] != ']' {
			p.pos++
			if hi, err = p.classAtom(); err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, p.errorf(start, ErrBadRange, fmt.Sprintf("%c-%c", lo, hi))
			}
		}
		cls.Ranges = append(cls.Ranges, Range{Lo: lo, Hi: hi})
	}
}

func (p *parser) classAtom() (byte, error) {
	if p.peek() == '\\' {
		return p.escape()
	}
	c := p.peek()
	p.pos++
	return c, nil
}

// posixClass parses "[:name:]" inside a bracket expression.
func (p *parser) posixClass() ([]Range, error) {
	start := p.pos
	p.pos += 2 // [:
	nameStart := p.pos
	for !p.eof() && p.peek() != ':' {
		p.pos++
	}
	if p.pos+1 >= len(p.src) || p.src[p.pos+1] != ']' {
		return nil, p.errorf(start, ErrUnterminatedClass, "expected :]")
	}
	name := p.src[nameStart:p.pos]
	p.pos += 2 // :]
	ranges, ok := posixClasses[name]
	if !ok {
		return nil, p.errorf(start, ErrUnknownPosixClass, name)
	}
	return slices.Clone(ranges), nil
}

// escape consumes a backslash escape and returns the byte it denotes.
// Unknown escapes resolve to the escaped byte itself.
func (p *parser) escape() (byte, error) {
	start := p.pos
	p.pos++ // backslash
	if p.eof() {
		return 0, p.errorf(start, ErrTrailingBackslash, "")
	}
	c := p.peek()
	p.pos++
	switch c {
	case 'a':
		return '\a', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'v':
		return '\v', nil
	}
	return c, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// normalizeRanges sorts and merges overlapping or adjacent ranges so that
// equal classes always have equal representations.
func normalizeRanges(ranges []Range) []Range {
	if len(ranges) < 2 {
		return ranges
	}
	slices.SortFunc(ranges, func(a, b Range) bool {
		if a.Lo != b.Lo {
			return a.Lo < b.Lo
		}
		return a.Hi < b.Hi
	})
	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if int(r.Lo) <= int(last.Hi)+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
