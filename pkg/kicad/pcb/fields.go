package pcb

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp/kicadsexp"
)

// fieldSpec binds a keyed parameter such as (trace_min 0.2) to a field of
// T. The pointer type returned by Ref selects how the parameter's values
// are read and written:
//
//	*float64   one number
//	**float64  one number, omitted when nil
//	*int       one unsigned integer
//	*bool      one boolean
//	*uint32    one hex value
//	*string    one string
//	*Size      two numbers
//	*Position  two numbers
//	*Area      four numbers
//
// A table of fieldSpecs also fixes the order parameters are generated in.
type fieldSpec[T any] struct {
	Key string
	Ref func(*T) any

	// TrueFalse writes booleans as true/false instead of yes/no.
	TrueFalse bool
}

// param is a keyed parameter as it appears in the source.
type param struct {
	Pos  lexer.Position
	Key  string
	Args []*kicadsexp.Atom
}

func fieldKeys[T any](fields []fieldSpec[T]) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// applyParams sets the fields of obj named by params. A parameter given
// twice is an error.
func applyParams[T any](stmt string, fields []fieldSpec[T], obj *T, params []param) error {
	set := seen{}
	for _, p := range params {
		key := strings.ToLower(p.Key)
		if err := set.once(stmt, key, p.Pos); err != nil {
			return err
		}
		if err := applyParam(fields, obj, key, p); err != nil {
			return err
		}
	}
	return nil
}

func applyParam[T any](fields []fieldSpec[T], obj *T, key string, p param) error {
	var spec *fieldSpec[T]
	for i := range fields {
		if fields[i].Key == key {
			spec = &fields[i]
			break
		}
	}
	if spec == nil {
		return &UnknownConstructError{Keyword: p.Key, Line: p.Pos.Line, Column: p.Pos.Column}
	}

	switch ref := spec.Ref(obj).(type) {
	case *float64:
		v, err := floats(key, p, 1)
		if err != nil {
			return err
		}
		*ref = v[0]
	case **float64:
		v, err := floats(key, p, 1)
		if err != nil {
			return err
		}
		*ref = &v[0]
	case *Size:
		v, err := floats(key, p, 2)
		if err != nil {
			return err
		}
		*ref = Size{Width: v[0], Height: v[1]}
	case *Position:
		v, err := floats(key, p, 2)
		if err != nil {
			return err
		}
		*ref = Position{X: v[0], Y: v[1]}
	case *Area:
		v, err := floats(key, p, 4)
		if err != nil {
			return err
		}
		*ref = Area{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	case *int:
		a, err := single(key, p)
		if err != nil {
			return err
		}
		n, ok := a.Uint()
		if !ok {
			return lexicalError(a.Pos, "(%s) expects an unsigned integer, got %q", key, a.Text())
		}
		*ref = n
	case *bool:
		a, err := single(key, p)
		if err != nil {
			return err
		}
		b, ok := a.Bool()
		if !ok {
			return lexicalError(a.Pos, "(%s) expects yes/no or true/false, got %q", key, a.Text())
		}
		*ref = b
	case *uint32:
		a, err := single(key, p)
		if err != nil {
			return err
		}
		h, ok := a.Hex()
		if !ok {
			return lexicalError(a.Pos, "(%s) expects a hex value, got %q", key, a.Text())
		}
		*ref = h
	case *string:
		a, err := single(key, p)
		if err != nil {
			return err
		}
		*ref = a.Text()
	default:
		panic("pcb: unsupported field type for " + key)
	}
	return nil
}

func single(key string, p param) (*kicadsexp.Atom, error) {
	if len(p.Args) != 1 {
		return nil, arityError(key, 1, 1, len(p.Args), p.Pos)
	}
	return p.Args[0], nil
}

func floats(key string, p param, n int) ([]float64, error) {
	if len(p.Args) != n {
		return nil, arityError(key, n, n, len(p.Args), p.Pos)
	}
	out := make([]float64, n)
	for i, a := range p.Args {
		f, ok := a.Float()
		if !ok {
			return nil, lexicalError(a.Pos, "(%s) expects a number, got %q", key, a.Text())
		}
		out[i] = f
	}
	return out, nil
}

// writeFields emits one line per field at depth, in table order.
func writeFields[T any](w *writer, depth int, fields []fieldSpec[T], obj *T) {
	for _, f := range fields {
		ref := f.Ref(obj)
		if opt, ok := ref.(**float64); ok && *opt == nil {
			continue
		}
		w.line(depth)
		switch ref := ref.(type) {
		case *float64:
			w.put(list(f.Key, num(*ref)))
		case **float64:
			w.put(list(f.Key, num(**ref)))
		case *Size:
			w.put(sizeList(f.Key, *ref))
		case *Position:
			w.put(xyList(f.Key, *ref))
		case *Area:
			w.put(list(f.Key, num(ref.X1), num(ref.Y1), num(ref.X2), num(ref.Y2)))
		case *int:
			w.put(list(f.Key, itoa(*ref)))
		case *bool:
			if f.TrueFalse {
				w.put(list(f.Key, strconv.FormatBool(*ref)))
			} else {
				w.put(list(f.Key, sexp.FormatBool(*ref)))
			}
		case *uint32:
			w.put(list(f.Key, sexp.FormatHex(*ref)))
		case *string:
			w.put(list(f.Key, w.str(f.Key, *ref)))
		default:
			panic("pcb: unsupported field type for " + f.Key)
		}
	}
}
