package sexp

import (
	"math"
	"strconv"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	a, b := 0.1, 0.2
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-0.95, "-0.95"},
		{1.524, "1.524"},
		{145.499999, "145.499999"},
		{50000, "50000"},
		{a + b, "0.30000000000000004"},
		{1e-7, "0.0000001"},
	}

	for _, tt := range tests {
		got := FormatFloat(tt.in)
		if got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
		back, err := strconv.ParseFloat(got, 64)
		if err != nil || back != tt.in {
			t.Errorf("ParseFloat(FormatFloat(%v)) = %v, %v", tt.in, back, err)
		}
	}
}

func TestFormatHex(t *testing.T) {
	tests := []struct {
		in   uint32
		want string
	}{
		{0, "00000000"},
		{0xABC, "00000ABC"},
		{0x59D9A063, "59D9A063"},
		{0x7FFFFFFF, "7FFFFFFF"},
	}
	for _, tt := range tests {
		if got := FormatHex(tt.in); got != tt.want {
			t.Errorf("FormatHex(%#x) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBool(t *testing.T) {
	if FormatBool(true) != "yes" || FormatBool(false) != "no" {
		t.Errorf("FormatBool() = %q/%q, want yes/no", FormatBool(true), FormatBool(false))
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", `""`, true},
		{"GND", "GND", true},
		{"F.Cu", "F.Cu", true},
		{"a b", `"a b"`, true},
		{"tab\tsep", "\"tab\tsep\"", true},
		{"Net-(R1-Pad2)", `"Net-(R1-Pad2)"`, true},
		{"it's", `"it's"`, true},
		{`say "hi"`, `'say "hi"'`, true},
		{`a"b'c`, "", false},
	}

	for _, tt := range tests {
		got, ok := Quote(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Quote(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNeedsQuotes(t *testing.T) {
	for _, s := range []string{"", " ", "a b", "a\nb", "(", ")", "x)", "A\u00a0B", "A\u0085B", "A\u2028B", "\u3000"} {
		if !NeedsQuotes(s) {
			t.Errorf("NeedsQuotes(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"a", "*.Cu", "${KISYS3DMOD}/R.wrl", "REF**", "4.0.7", "Ünïcode", "µF"} {
		if NeedsQuotes(s) {
			t.Errorf("NeedsQuotes(%q) = true, want false", s)
		}
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		p     Position
		angle Angle
		want  Position
	}{
		{Position{X: 1, Y: 0}, 0, Position{X: 1, Y: 0}},
		{Position{X: 1, Y: 0}, 90, Position{X: 0, Y: -1}},
		{Position{X: 1, Y: 0}, 180, Position{X: -1, Y: 0}},
		{Position{X: 0, Y: 1}, -90, Position{X: -1, Y: 0}},
	}

	for _, tt := range tests {
		got := tt.p.Rotate(tt.angle)
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("%+v.Rotate(%v) = %+v, want %+v", tt.p, tt.angle, got, tt.want)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox()
	if !bb.IsEmpty() {
		t.Error("NewBoundingBox() should be empty")
	}

	bb.Expand(Position{X: 1, Y: 2})
	bb.Expand(Position{X: -1, Y: 4})
	if bb.Width() != 2 || bb.Height() != 2 {
		t.Errorf("size = %v x %v, want 2 x 2", bb.Width(), bb.Height())
	}
	if bb.Center() != (Position{X: 0, Y: 3}) {
		t.Errorf("Center() = %+v, want {0 3}", bb.Center())
	}

	other := NewBoundingBox()
	bb.ExpandBox(other)
	if bb.Min != (Position{X: -1, Y: 2}) {
		t.Errorf("ExpandBox(empty) changed Min to %+v", bb.Min)
	}
	other.Expand(Position{X: 5, Y: 5})
	bb.ExpandBox(other)
	if !bb.Contains(Position{X: 5, Y: 5}) {
		t.Errorf("Contains({5 5}) = false after ExpandBox")
	}
}
