// Package kicadsexp tokenizes KiCad S-expression text for the statement
// grammar in package pcb. It plugs into participle as a lexer.Definition.
//
// Atoms are classified by the most specific primitive they satisfy, so a
// grammar slot can state which kinds it accepts: a float slot accepts
// Float, Uint and Int tokens, a string slot accepts every atom.
package kicadsexp

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token types emitted by the lexer.
const (
	LParen lexer.TokenType = lexer.EOF - 1 - iota
	RParen
	String // quoted with ' or ", quotes stripped
	Uint   // 123
	Int    // -123
	Float  // 1.5, -0.95, +2, 3.
	Hex    // 7FFFFFFF (hex digits starting with a digit)
	Bool   // yes, no, true, false
	Ident  // thru_hole, F_Cu
	Bare   // anything else: *.Cu, 4.0.7, ${KISYS3DMOD}/R.wrl
)

// DefaultMaxDepth bounds parenthesis nesting when a Definition does not
// set its own limit.
const DefaultMaxDepth = 64

var symbols = map[string]lexer.TokenType{
	"EOF":    lexer.EOF,
	"LParen": LParen,
	"RParen": RParen,
	"String": String,
	"Uint":   Uint,
	"Int":    Int,
	"Float":  Float,
	"Hex":    Hex,
	"Bool":   Bool,
	"Ident":  Ident,
	"Bare":   Bare,
}

// TokenName returns the symbolic name of a token type.
func TokenName(t lexer.TokenType) string {
	for name, typ := range symbols {
		if typ == t {
			return name
		}
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Error is a lexical error at a position in the input
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Definition is a participle lexer definition for KiCad board text.
type Definition struct {
	// MaxDepth bounds parenthesis nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Symbols implements lexer.Definition.
func (d Definition) Symbols() map[string]lexer.TokenType {
	out := make(map[string]lexer.TokenType, len(symbols))
	for k, v := range symbols {
		out[k] = v
	}
	return out
}

// Lex implements lexer.Definition.
func (d Definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.LexString(filename, string(data))
}

// LexString implements lexer.StringDefinition.
func (d Definition) LexString(filename string, input string) (lexer.Lexer, error) {
	return NewLexer(filename, input, d.MaxDepth), nil
}

// LexBytes implements lexer.BytesDefinition.
func (d Definition) LexBytes(filename string, input []byte) (lexer.Lexer, error) {
	return d.LexString(filename, string(input))
}

// Lexer tokenizes an in-memory buffer
type Lexer struct {
	input    string
	pos      lexer.Position
	depth    int
	maxDepth int
}

// NewLexer creates a lexer over input. maxDepth <= 0 selects DefaultMaxDepth.
func NewLexer(filename, input string, maxDepth int) *Lexer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Lexer{
		input:    input,
		pos:      lexer.Position{Filename: filename, Line: 1, Column: 1},
		maxDepth: maxDepth,
	}
}

// Next returns the next token, or an EOF token at the end of input.
func (l *Lexer) Next() (lexer.Token, error) {
	for !l.eof() && unicode.IsSpace(l.peek()) {
		l.advance()
	}

	start := l.pos
	if l.eof() {
		return lexer.Token{Type: lexer.EOF, Pos: start}, nil
	}

	switch ch := l.peek(); ch {
	case '(':
		l.depth++
		if l.depth > l.maxDepth {
			return lexer.Token{}, &Error{Pos: start, Msg: fmt.Sprintf("statements nested deeper than %d levels", l.maxDepth)}
		}
		l.advance()
		return lexer.Token{Type: LParen, Value: "(", Pos: start}, nil

	case ')':
		if l.depth > 0 {
			l.depth--
		}
		l.advance()
		return lexer.Token{Type: RParen, Value: ")", Pos: start}, nil

	case '"', '\'':
		return l.readString(ch, start)

	default:
		return l.readAtom(start), nil
	}
}

func (l *Lexer) eof() bool {
	return l.pos.Offset >= len(l.input)
}

func (l *Lexer) peek() rune {
	ch, _ := utf8.DecodeRuneInString(l.input[l.pos.Offset:])
	return ch
}

func (l *Lexer) advance() {
	ch, size := utf8.DecodeRuneInString(l.input[l.pos.Offset:])
	l.pos.Offset += size
	if ch == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
}

// readString reads a quoted string. There are no escape sequences: the
// string ends at the next quote of the same kind.
func (l *Lexer) readString(quote rune, start lexer.Position) (lexer.Token, error) {
	l.advance()
	from := l.pos.Offset
	for {
		if l.eof() {
			return lexer.Token{}, &Error{Pos: start, Msg: "unterminated string"}
		}
		if l.peek() == quote {
			break
		}
		l.advance()
	}
	value := l.input[from:l.pos.Offset]
	l.advance()
	return lexer.Token{Type: String, Value: value, Pos: start}, nil
}

func (l *Lexer) readAtom(start lexer.Position) lexer.Token {
	from := l.pos.Offset
	for !l.eof() {
		ch := l.peek()
		if unicode.IsSpace(ch) || isDelimiter(ch) {
			break
		}
		l.advance()
	}
	value := l.input[from:l.pos.Offset]
	return lexer.Token{Type: Classify(value), Value: value, Pos: start}
}

func isDelimiter(ch rune) bool {
	return ch == '(' || ch == ')' || ch == '"' || ch == '\''
}

// Tokenize lexes the whole input, returning every token before EOF.
func Tokenize(filename, input string) ([]lexer.Token, error) {
	l := NewLexer(filename, input, 0)
	var tokens []lexer.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Classify returns the most specific atom token type for a bare lexeme.
func Classify(s string) lexer.TokenType {
	switch {
	case s == "":
		return Bare
	case isDigits(s):
		return Uint
	case s[0] == '-' && isDigits(s[1:]):
		return Int
	case isFloat(s):
		return Float
	case isBool(s):
		return Bool
	case isIdent(s):
		return Ident
	case isHex(s):
		return Hex
	}
	return Bare
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isFloat matches an optional sign, digits, and an optional '.' followed
// by optional digits.
func isFloat(s string) bool {
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if !isDigits(whole) {
		return false
	}
	return !hasDot || frac == "" || isDigits(frac)
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "no", "true", "false":
		return true
	}
	return false
}

func isIdent(s string) bool {
	for i, ch := range s {
		switch {
		case ch == '_', ch < utf8.RuneSelf && unicode.IsLetter(ch):
		case i > 0 && ch >= '0' && ch <= '9':
		default:
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// Scan checks that input lexes cleanly without keeping the tokens.
func Scan(filename, input string) error {
	l := NewLexer(filename, input, 0)
	for {
		tok, err := l.Next()
		if err != nil {
			return err
		}
		if tok.EOF() {
			return nil
		}
	}
}
