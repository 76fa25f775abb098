package kicadsexp

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  lexer.TokenType
	}{
		{"123", Uint},
		{"0", Uint},
		{"-12", Int},
		{"1.5", Float},
		{"-0.95", Float},
		{"+2", Float},
		{"3.", Float},
		{"7FFFFFFF", Hex},
		{"59D9A063", Hex},
		{"yes", Bool},
		{"FALSE", Bool},
		{"thru_hole", Ident},
		{"F_Cu", Ident},
		{"ABCDEF", Ident},
		{"F.Cu", Bare},
		{"*.Cu", Bare},
		{"4.0.7", Bare},
		{"-", Bare},
		{"", Bare},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.input, TokenName(got), TokenName(tt.want))
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("", "(net 3\n  \"a b\")")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []struct {
		typ    lexer.TokenType
		value  string
		line   int
		column int
	}{
		{LParen, "(", 1, 1},
		{Ident, "net", 1, 2},
		{Uint, "3", 1, 6},
		{String, "a b", 2, 3},
		{RParen, ")", 2, 8},
	}
	if len(tokens) != len(want) {
		t.Fatalf("Tokenize() returned %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Type != w.typ || tok.Value != w.value {
			t.Errorf("token %d = %s %q, want %s %q", i, TokenName(tok.Type), tok.Value, TokenName(w.typ), w.value)
		}
		if tok.Pos.Line != w.line || tok.Pos.Column != w.column {
			t.Errorf("token %d at %d:%d, want %d:%d", i, tok.Pos.Line, tok.Pos.Column, w.line, w.column)
		}
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`""`, ""},
		{`"This is the default net class."`, "This is the default net class."},
		{`'say "hi"'`, `say "hi"`},
		{`"it's"`, "it's"},
		{"\"two\nlines\"", "two\nlines"},
	}

	for _, tt := range tests {
		tokens, err := Tokenize("", tt.input)
		if err != nil {
			t.Fatalf("Tokenize(%q) error = %v", tt.input, err)
		}
		if len(tokens) != 1 || tokens[0].Type != String || tokens[0].Value != tt.want {
			t.Errorf("Tokenize(%q) = %v, want one String %q", tt.input, tokens, tt.want)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
		msg    string
	}{
		{"unterminated double quote", `(a "b`, 1, 4, "unterminated string"},
		{"unterminated single quote", "(a\n 'b)", 2, 2, "unterminated string"},
		{"too deep", strings.Repeat("(", DefaultMaxDepth+1), 1, DefaultMaxDepth + 1, "nested deeper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize("", tt.input)
			var lexErr *Error
			if !errors.As(err, &lexErr) {
				t.Fatalf("Tokenize() error = %v, want *Error", err)
			}
			if lexErr.Pos.Line != tt.line || lexErr.Pos.Column != tt.column {
				t.Errorf("error at %d:%d, want %d:%d", lexErr.Pos.Line, lexErr.Pos.Column, tt.line, tt.column)
			}
			if !strings.Contains(lexErr.Msg, tt.msg) {
				t.Errorf("Msg = %q, want it to contain %q", lexErr.Msg, tt.msg)
			}
		})
	}
}

func TestDepthLimit(t *testing.T) {
	ok := strings.Repeat("(", DefaultMaxDepth) + strings.Repeat(")", DefaultMaxDepth)
	if err := Scan("", ok); err != nil {
		t.Errorf("Scan() at the depth limit error = %v", err)
	}

	// Depth counts open statements, not parentheses seen.
	siblings := strings.Repeat("(a)", 3*DefaultMaxDepth)
	if err := Scan("", siblings); err != nil {
		t.Errorf("Scan() of siblings error = %v", err)
	}

	lex, err := Definition{MaxDepth: 2}.LexString("", "((( )))")
	if err != nil {
		t.Fatalf("LexString() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := lex.Next(); err != nil {
			t.Fatalf("Next() %d error = %v", i, err)
		}
	}
	if _, err := lex.Next(); err == nil {
		t.Error("Next() past MaxDepth expected error, got nil")
	}
}

func TestAtomConversions(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name      string
		atom      Atom
		kind      lexer.TokenType
		wantUint  bool
		wantInt   bool
		wantFloat bool
		wantHex   bool
		wantIdent bool
	}{
		{"unsigned", Atom{Unsigned: str("12")}, Uint, true, true, true, true, false},
		{"signed", Atom{Signed: str("-3")}, Int, false, true, true, false, false},
		{"float", Atom{Decimal: str("0.95")}, Float, false, false, true, false, false},
		{"hex", Atom{Digits: str("59D9A063")}, Hex, false, false, false, true, false},
		{"ident", Atom{Name: str("ABC")}, Ident, false, false, false, true, true},
		{"quoted", Atom{Quoted: str("")}, String, false, false, false, false, false},
		{"bare", Atom{Word: str("*.Cu")}, Bare, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &tt.atom
			if a.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", TokenName(a.Kind()), TokenName(tt.kind))
			}
			if _, ok := a.Uint(); ok != tt.wantUint {
				t.Errorf("Uint() ok = %v, want %v", ok, tt.wantUint)
			}
			if _, ok := a.Int(); ok != tt.wantInt {
				t.Errorf("Int() ok = %v, want %v", ok, tt.wantInt)
			}
			if _, ok := a.Float(); ok != tt.wantFloat {
				t.Errorf("Float() ok = %v, want %v", ok, tt.wantFloat)
			}
			if _, ok := a.Hex(); ok != tt.wantHex {
				t.Errorf("Hex() ok = %v, want %v", ok, tt.wantHex)
			}
			if _, ok := a.Ident(); ok != tt.wantIdent {
				t.Errorf("Ident() ok = %v, want %v", ok, tt.wantIdent)
			}
		})
	}

	if v, _ := (&Atom{Unsigned: str("12")}).Hex(); v != 0x12 {
		t.Errorf("Hex() of 12 = %X, want 12", v)
	}
	if v, _ := (&Atom{Signed: str("-3")}).Float(); v != -3 {
		t.Errorf("Float() of -3 = %v", v)
	}
	if v, ok := (&Atom{Boolean: str("Yes")}).Bool(); !ok || !v {
		t.Errorf("Bool() of Yes = %v, %v", v, ok)
	}
}

func TestCapture(t *testing.T) {
	var h HexValue
	if err := h.Capture([]string{"7FFFFFFF"}); err != nil || h != 0x7FFFFFFF {
		t.Errorf("HexValue.Capture() = %X, %v", uint32(h), err)
	}
	if err := h.Capture([]string{"XYZ"}); err == nil {
		t.Error("HexValue.Capture(XYZ) expected error")
	}

	var b BoolValue
	if err := b.Capture([]string{"no"}); err != nil || b {
		t.Errorf("BoolValue.Capture(no) = %v, %v", b, err)
	}
	if err := b.Capture([]string{"maybe"}); err == nil {
		t.Error("BoolValue.Capture(maybe) expected error")
	}

	var i IntValue
	if err := i.Capture([]string{"-42"}); err != nil || i != -42 {
		t.Errorf("IntValue.Capture(-42) = %d, %v", i, err)
	}
}

type testStmt struct {
	Pos  lexer.Position
	Key  string  `LParen @Ident`
	Args []*Atom `@@* RParen`
}

func TestDefinitionWithParticiple(t *testing.T) {
	p := participle.MustBuild[testStmt](participle.Lexer(Definition{}))

	stmt, err := p.ParseString("", `(layers *.Cu "F Mask" 0 -1.5 59D9A063)`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if stmt.Key != "layers" {
		t.Errorf("Key = %q, want layers", stmt.Key)
	}

	wantKinds := []lexer.TokenType{Bare, String, Uint, Float, Hex}
	if len(stmt.Args) != len(wantKinds) {
		t.Fatalf("len(Args) = %d, want %d", len(stmt.Args), len(wantKinds))
	}
	for i, k := range wantKinds {
		if stmt.Args[i].Kind() != k {
			t.Errorf("Args[%d] kind = %s, want %s", i, TokenName(stmt.Args[i].Kind()), TokenName(k))
		}
	}
	if stmt.Args[1].Text() != "F Mask" {
		t.Errorf("Args[1].Text() = %q, want \"F Mask\"", stmt.Args[1].Text())
	}
	if stmt.Args[4].Pos.Column != 30 {
		t.Errorf("Args[4] column = %d, want 30", stmt.Args[4].Pos.Column)
	}
}
