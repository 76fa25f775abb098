package kicadsexp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Text matches a quoted string or any bare atom.
type Text struct {
	Pos   lexer.Position
	Value string `@(String | Uint | Int | Float | Hex | Bool | Ident | Bare)`
}

// IntValue captures a base-10 integer from a Uint or Int token.
type IntValue int

func (i *IntValue) Capture(values []string) error {
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return fmt.Errorf("invalid integer %q", values[0])
	}
	*i = IntValue(n)
	return nil
}

// BoolValue captures yes/no/true/false in any letter case.
type BoolValue bool

func (b *BoolValue) Capture(values []string) error {
	v, ok := parseBool(values[0])
	if !ok {
		return fmt.Errorf("invalid boolean %q", values[0])
	}
	*b = BoolValue(v)
	return nil
}

// HexValue captures a base-16 integer such as a timestamp or a layer mask.
type HexValue uint32

func (h *HexValue) Capture(values []string) error {
	n, err := strconv.ParseUint(values[0], 16, 32)
	if err != nil {
		return fmt.Errorf("invalid hex value %q", values[0])
	}
	*h = HexValue(n)
	return nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "yes", "true":
		return true, true
	case "no", "false":
		return false, true
	}
	return false, false
}

// Atom is one value in a positional prefix or a keyed parameter. The token
// kind is kept so construction can apply the primitive rule the slot
// expects; every conversion reports failure instead of guessing.
type Atom struct {
	Pos      lexer.Position
	Quoted   *string `  @String`
	Unsigned *string `| @Uint`
	Signed   *string `| @Int`
	Decimal  *string `| @Float`
	Digits   *string `| @Hex`
	Boolean  *string `| @Bool`
	Name     *string `| @Ident`
	Word     *string `| @Bare`
}

// Kind returns the token type the atom was lexed as.
func (a *Atom) Kind() lexer.TokenType {
	switch {
	case a.Quoted != nil:
		return String
	case a.Unsigned != nil:
		return Uint
	case a.Signed != nil:
		return Int
	case a.Decimal != nil:
		return Float
	case a.Digits != nil:
		return Hex
	case a.Boolean != nil:
		return Bool
	case a.Name != nil:
		return Ident
	}
	return Bare
}

// Text returns the lexeme, without quotes for quoted strings.
func (a *Atom) Text() string {
	for _, s := range []*string{a.Quoted, a.Unsigned, a.Signed, a.Decimal, a.Digits, a.Boolean, a.Name, a.Word} {
		if s != nil {
			return *s
		}
	}
	return ""
}

// Uint converts an unsigned integer atom. A leading sign never matches.
func (a *Atom) Uint() (int, bool) {
	if a.Kind() != Uint {
		return 0, false
	}
	n, err := strconv.Atoi(a.Text())
	return n, err == nil
}

// Int converts a signed or unsigned integer atom.
func (a *Atom) Int() (int, bool) {
	switch a.Kind() {
	case Uint, Int:
		n, err := strconv.Atoi(a.Text())
		return n, err == nil
	}
	return 0, false
}

// Float converts a numeric atom. Integral lexemes are valid floats.
func (a *Atom) Float() (float64, bool) {
	switch a.Kind() {
	case Uint, Int, Float:
		f, err := strconv.ParseFloat(a.Text(), 64)
		return f, err == nil
	}
	return 0, false
}

// Hex converts an atom made of hex digits, base 16.
func (a *Atom) Hex() (uint32, bool) {
	switch a.Kind() {
	case Hex, Uint, Ident:
		n, err := strconv.ParseUint(a.Text(), 16, 32)
		return uint32(n), err == nil
	}
	return 0, false
}

// Bool converts a boolean keyword.
func (a *Atom) Bool() (bool, bool) {
	if a.Kind() != Bool {
		return false, false
	}
	return parseBool(a.Text())
}

// Ident returns the atom if it is a bare identifier.
func (a *Atom) Ident() (string, bool) {
	if a.Kind() != Ident {
		return "", false
	}
	return a.Text(), true
}
