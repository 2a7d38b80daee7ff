package golex

import (
	"errors"
	"fmt"
)

// Syntax-file failures, one sentinel per condition so callers can test with
// errors.Is. Pattern-level conditions are reported by the regex package and
// wrapped with the rule's position.
var (
	ErrMalformedDefinition  = errors.New("malformed definition line")
	ErrMalformedRule        = errors.New("malformed rule line")
	ErrMissingRulesSection  = errors.New("missing %% rules section")
	ErrUnterminatedAction   = errors.New("unterminated action block")
	ErrUnterminatedCode     = errors.New("unterminated %{ code block")
	ErrDanglingContinuation = errors.New("continuation rule with no following rule")
	ErrNoRules              = errors.New("no rules declared")
)

// Position of an element within a syntax file.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	filename := p.Filename
	if filename == "" {
		filename = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d", filename, p.Line, p.Column)
}

// Error is a failure while reading a syntax file.
//
// The error carries positional information and wraps either one of the
// sentinel kinds above or a regex.ParseError for pattern failures.
type Error struct {
	Pos    Position
	Err    error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the error text without the position prefix.
func (e *Error) Message() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Detail)
	}
	return e.Err.Error()
}

// Position returns where in the syntax file the error occurred.
func (e *Error) Position() Position { return e.Pos }

// Errorf creates a new Error at the given position.
func Errorf(pos Position, kind error, format string, args ...interface{}) error {
	return &Error{Pos: pos, Err: kind, Detail: fmt.Sprintf(format, args...)}
}
