package pcb

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp"
)

// statement is implemented by every type that renders as one parenthesized
// statement.
type statement interface {
	write(w *writer, depth int)
}

// render produces the text of s at depth with no trailing newline.
func render(s statement, depth int) (string, error) {
	w := &writer{}
	s.write(w, depth)
	if w.err != nil {
		return "", w.err
	}
	return w.sb.String(), nil
}

// writer accumulates generated text. The first error sticks and later
// writes are still accepted so render methods need not check after every
// field.
type writer struct {
	sb  strings.Builder
	err error
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// line starts a new line indented to depth. Nothing is emitted before the
// first line.
func (w *writer) line(depth int) {
	if w.sb.Len() > 0 {
		w.sb.WriteByte('\n')
	}
	for i := 0; i < depth; i++ {
		w.sb.WriteString(sexp.Indent)
	}
}

func (w *writer) put(parts ...string) {
	for _, p := range parts {
		w.sb.WriteString(p)
	}
}

// close ends a multi-line statement opened at depth.
func (w *writer) close(depth int) {
	w.line(depth)
	w.sb.WriteByte(')')
}

// str quotes a string value of stmt.
func (w *writer) str(stmt, s string) string {
	q, ok := sexp.Quote(s)
	if !ok {
		w.fail(&UnrepresentableError{Statement: stmt, Value: s})
		return `""`
	}
	return q
}

// required quotes a mandatory string field, failing if it is unset.
func (w *writer) required(stmt, field, s string) string {
	if s == "" {
		w.fail(&MissingFieldError{Statement: stmt, Field: field})
	}
	return w.str(stmt, s)
}

func num(f float64) string {
	return sexp.FormatFloat(f)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// list formats (kw v1 v2 ...).
func list(kw string, values ...string) string {
	if len(values) == 0 {
		return "(" + kw + ")"
	}
	return "(" + kw + " " + strings.Join(values, " ") + ")"
}

func xyList(kw string, p Position) string {
	return list(kw, num(p.X), num(p.Y))
}

func sizeList(kw string, s Size) string {
	return list(kw, num(s.Width), num(s.Height))
}

// atList formats (at x y [angle]); a zero angle is left out.
func atList(p PositionAngle) string {
	if p.Angle == 0 {
		return list("at", num(p.X), num(p.Y))
	}
	return list("at", num(p.X), num(p.Y), num(float64(p.Angle)))
}

func xyzList(kw string, v Vec3) string {
	return list(kw, list("xyz", num(v.X), num(v.Y), num(v.Z)))
}
