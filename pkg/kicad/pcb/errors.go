package pcb

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// LexicalError reports input that no grammar alternative accepts at a
// position: a malformed value, an unbalanced parenthesis, a duplicated
// parameter or trailing garbage.
type LexicalError struct {
	Line   int    // 1-based line of the offending token
	Column int    // 1-based column of the offending token
	Text   string // source line containing the offending token
	Msg    string // what was expected or what went wrong
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// UnknownConstructError reports a parenthesized statement whose keyword is
// not recognized where it appears.
type UnknownConstructError struct {
	Keyword string // the unrecognized keyword
	Context string // keyword of the enclosing statement, empty at top level
	Line    int
	Column  int
}

func (e *UnknownConstructError) Error() string {
	where := "at top level"
	if e.Context != "" {
		where = fmt.Sprintf("in (%s)", e.Context)
	}
	return fmt.Sprintf("%d:%d: unknown statement (%s) %s", e.Line, e.Column, e.Keyword, where)
}

// MissingFieldError reports a statement without one of its required
// fields. Line and Column are zero when raised while generating text.
type MissingFieldError struct {
	Statement string
	Field     string
	Line      int
	Column    int
}

func (e *MissingFieldError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("(%s) is missing required field %q", e.Statement, e.Field)
	}
	return fmt.Sprintf("%d:%d: (%s) is missing required field %q", e.Line, e.Column, e.Statement, e.Field)
}

// ArityError reports a positional prefix with the wrong number of values.
type ArityError struct {
	Statement string
	Min       int // fewest values accepted
	Max       int // most values accepted
	Got       int
	Line      int
	Column    int
}

func (e *ArityError) Error() string {
	want := fmt.Sprintf("%d", e.Min)
	if e.Max != e.Min {
		want = fmt.Sprintf("%d to %d", e.Min, e.Max)
	}
	return fmt.Sprintf("%d:%d: (%s) takes %s positional values, got %d", e.Line, e.Column, e.Statement, want, e.Got)
}

// UnrepresentableError reports a string value that cannot be written as a
// single atom, because it contains both quote characters.
type UnrepresentableError struct {
	Statement string
	Value     string
}

func (e *UnrepresentableError) Error() string {
	return fmt.Sprintf("(%s): value %q contains both quote characters", e.Statement, e.Value)
}

func missingField(stmt, field string, pos lexer.Position) error {
	return &MissingFieldError{Statement: stmt, Field: field, Line: pos.Line, Column: pos.Column}
}

func arityError(stmt string, min, max, got int, pos lexer.Position) error {
	return &ArityError{Statement: stmt, Min: min, Max: max, Got: got, Line: pos.Line, Column: pos.Column}
}

func lexicalError(pos lexer.Position, format string, args ...any) error {
	return &LexicalError{Line: pos.Line, Column: pos.Column, Msg: fmt.Sprintf(format, args...)}
}

// seen tracks which parameters of one statement have been set, so a
// repeated parameter is reported instead of silently overwriting.
type seen map[string]bool

func (s seen) once(stmt, field string, pos lexer.Position) error {
	if s[field] {
		return lexicalError(pos, "duplicate (%s) in (%s)", field, stmt)
	}
	s[field] = true
	return nil
}
