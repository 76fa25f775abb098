package sexp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Indent is the indentation written per nesting level.
const Indent = "  "

// FormatFloat returns the shortest decimal form that parses back to f.
func FormatFloat(f float64) string {
	if f == 0 {
		return "0" // also folds -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatHex formats a timestamp or mask the way KiCad writes them.
func FormatHex(v uint32) string {
	return fmt.Sprintf("%08X", v)
}

// FormatBool writes booleans as yes/no.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// NeedsQuotes reports whether s must be quoted to survive as one atom:
// it is empty, or contains a parenthesis or any character the lexer
// treats as a separator (unicode.IsSpace).
func NeedsQuotes(s string) bool {
	return s == "" || strings.ContainsAny(s, "()") || strings.IndexFunc(s, unicode.IsSpace) >= 0
}

// Quote renders s as a string atom. Strings are double-quoted iff
// NeedsQuotes. The format has no escapes, so a string containing a quote
// character is wrapped in the other kind of quote; ok is false when s
// contains both kinds.
func Quote(s string) (out string, ok bool) {
	hasDouble := strings.ContainsRune(s, '"')
	hasSingle := strings.ContainsRune(s, '\'')
	switch {
	case hasDouble && hasSingle:
		return "", false
	case hasDouble:
		return "'" + s + "'", true
	case hasSingle || NeedsQuotes(s):
		return `"` + s + `"`, true
	}
	return s, true
}
