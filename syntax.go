package golex

import (
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/lexgen/golex/regex"
)

// Definition is one NAME/pattern line from the definitions section.
type Definition struct {
	Name string
	Node regex.Node
	Pos  Position
}

// Rule is one pattern/action line from the rules section. Index is the
// declaration order and the match tie-break priority; lower wins.
type Rule struct {
	Index   int
	Pattern regex.Node
	Text    string
	Action  string
	Pos     Position
}

// SyntaxFile is a parsed lexer specification: a definitions section, a `%%`
// separator, a rules section, and an optional second `%%` followed by
// verbatim trailing code.
type SyntaxFile struct {
	Name        string
	Definitions []Definition
	Rules       []Rule
	Prologue    string
	Epilogue    string

	macros regex.MacroMap
}

var definitionName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ParseFile parses the syntax file at path.
func ParseFile(path string) (*SyntaxFile, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(path, r)
}

// Parse parses a syntax file from r. The filename is used in positions only.
func Parse(filename string, r io.Reader) (*SyntaxFile, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(filename, string(src))
}

// ParseString parses a syntax file from src.
func ParseString(filename, src string) (*SyntaxFile, error) {
	p := &fileParser{
		file: &SyntaxFile{Name: filename, macros: regex.MacroMap{}},
	}
	p.lines = strings.Split(src, "\n")
	p.offsets = make([]int, len(p.lines))
	offset := 0
	for i, line := range p.lines {
		p.offsets[i] = offset
		offset += len(line) + 1
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.file, nil
}

type pendingRule struct {
	node regex.Node
	text string
	pos  Position
}

// fileParser walks the file line by line. Continuation rules (action `|`)
// are buffered in pending until the next concrete action resolves them.
type fileParser struct {
	file    *SyntaxFile
	lines   []string
	offsets []int
	i       int
	pending []pendingRule
}

// pos returns the position of column col (1-based) on the current line.
func (p *fileParser) pos(col int) Position {
	return Position{
		Filename: p.file.Name,
		Offset:   p.offsets[p.i] + col - 1,
		Line:     p.i + 1,
		Column:   col,
	}
}

func (p *fileParser) parse() error {
	if err := p.definitions(); err != nil {
		return err
	}
	if err := p.rules(); err != nil {
		return err
	}
	if len(p.pending) > 0 {
		return Errorf(p.pending[0].pos, ErrDanglingContinuation, "%s", p.pending[0].text)
	}
	if len(p.file.Rules) == 0 {
		return Errorf(Position{Filename: p.file.Name, Line: 1, Column: 1}, ErrNoRules, "")
	}
	return nil
}

// definitions reads the first section, up to and including the `%%`
// separator. Each definition is parsed immediately so later definitions can
// reference earlier ones; forward and self references fail as undefined
// macros inside regex.Parse.
func (p *fileParser) definitions() error {
	var prologue strings.Builder
	for ; p.i < len(p.lines); p.i++ {
		line := strings.TrimRight(p.lines[p.i], " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "%%":
			p.i++
			p.file.Prologue = prologue.String()
			return nil
		case trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#"):
			// Blank or comment.
		case strings.HasPrefix(trimmed, "%{"):
			if err := p.codeBlock(&prologue); err != nil {
				return err
			}
		default:
			if err := p.definition(line); err != nil {
				return err
			}
		}
	}
	return Errorf(Position{Filename: p.file.Name, Line: len(p.lines), Column: 1}, ErrMissingRulesSection, "")
}

// codeBlock copies a `%{ ... %}` block verbatim into out, with the cursor
// on the opening line.
func (p *fileParser) codeBlock(out *strings.Builder) error {
	open := p.pos(1)
	for p.i++; p.i < len(p.lines); p.i++ {
		if strings.TrimSpace(p.lines[p.i]) == "%}" {
			return nil
		}
		out.WriteString(p.lines[p.i])
		out.WriteByte('\n')
	}
	return Errorf(open, ErrUnterminatedCode, "")
}

func (p *fileParser) definition(line string) error {
	sep := strings.IndexAny(line, " \t")
	if sep < 0 {
		return Errorf(p.pos(1), ErrMalformedDefinition, "%s", line)
	}
	name := line[:sep]
	if !definitionName.MatchString(name) {
		return Errorf(p.pos(1), ErrMalformedDefinition, "bad name %q", name)
	}
	rest := strings.TrimLeft(line[sep:], " \t")
	if rest == "" {
		return Errorf(p.pos(1), ErrMalformedDefinition, "%s: missing pattern", name)
	}
	node, err := p.parsePattern(rest, p.pos(len(line)-len(rest)+1))
	if err != nil {
		return err
	}
	p.file.Definitions = append(p.file.Definitions, Definition{Name: name, Node: node, Pos: p.pos(1)})
	p.file.macros[name] = node
	return nil
}

// rules reads the second section. A trailing `%%` switches to the verbatim
// epilogue, which is copied through unmodified.
func (p *fileParser) rules() error {
	for ; p.i < len(p.lines); p.i++ {
		line := strings.TrimRight(p.lines[p.i], " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "%%":
			if p.i+1 < len(p.lines) {
				p.file.Epilogue = strings.Join(p.lines[p.i+1:], "\n")
			}
			p.i = len(p.lines)
			return nil
		case trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#"):
		default:
			if err := p.rule(line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *fileParser) rule(line string) error {
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	text, action := splitRule(strings.TrimLeft(line, " \t"))
	pos := p.pos(indent + 1)
	if action == "" {
		return Errorf(pos, ErrMalformedRule, "pattern without action: %s", text)
	}
	node, err := p.parsePattern(text, pos)
	if err != nil {
		return err
	}
	if action == "|" {
		p.pending = append(p.pending, pendingRule{node: node, text: text, pos: pos})
		return nil
	}
	if strings.HasPrefix(action, "{") {
		if action, err = p.actionBlock(action, pos); err != nil {
			return err
		}
	}
	p.commit(node, text, pos, action)
	return nil
}

// commit appends buffered continuation rules, which inherit this action,
// and then the rule itself. Indexes are assigned densely in declaration
// order.
func (p *fileParser) commit(node regex.Node, text string, pos Position, action string) {
	add := func(r pendingRule) {
		p.file.Rules = append(p.file.Rules, Rule{
			Index:   len(p.file.Rules),
			Pattern: r.node,
			Text:    r.text,
			Action:  action,
			Pos:     r.pos,
		})
	}
	for _, r := range p.pending {
		add(r)
	}
	p.pending = p.pending[:0]
	add(pendingRule{node: node, text: text, pos: pos})
}

// actionBlock accumulates a brace-delimited action, which may span lines.
// Braces inside string, character and escape sequences do not count.
func (p *fileParser) actionBlock(first string, pos Position) (string, error) {
	var sb strings.Builder
	depth := 0
	var quote byte
	esc := false
	scan := func(s string) bool {
		for i := 0; i < len(s); i++ {
			c := s[i]
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case c == '"' || c == '\'':
				quote = c
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					return true
				}
			}
		}
		return false
	}
	line := first
	for {
		closed := scan(line)
		sb.WriteString(line)
		if closed {
			return sb.String(), nil
		}
		sb.WriteByte('\n')
		p.i++
		if p.i >= len(p.lines) {
			return "", Errorf(pos, ErrUnterminatedAction, "")
		}
		line = strings.TrimRight(p.lines[p.i], "\r")
	}
}

func (p *fileParser) parsePattern(text string, pos Position) (regex.Node, error) {
	node, err := regex.Parse(text, p.file.macros)
	if err != nil {
		var perr *regex.ParseError
		if errors.As(err, &perr) {
			pos.Column += perr.Offset
			pos.Offset += perr.Offset
		}
		return nil, &Error{Pos: pos, Err: err}
	}
	return node, nil
}

// splitRule splits a rule line into pattern and action at the first
// whitespace run that is not escaped, quoted or inside a bracket
// expression. Inside a bracket expression only `\` and `]` are special,
// so a `"` member must not open a quote; inside a quote, `[` is a plain
// byte.
func splitRule(line string) (pattern, action string) {
	esc, quote, class := false, false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case esc:
			esc = false
		case c == '\\':
			esc = true
		case class:
			if c == ']' {
				class = false
			}
		case quote:
			if c == '"' {
				quote = false
			}
		case c == '"':
			quote = true
		case c == '[':
			class = true
		case c == ' ' || c == '\t':
			return line[:i], strings.TrimSpace(line[i:])
		}
	}
	return line, ""
}
