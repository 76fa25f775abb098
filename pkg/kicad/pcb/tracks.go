package pcb

import (
	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp"
)

// Drill is a pad or via hole. Height is used only when Oval is set.
type Drill struct {
	Diameter float64
	Oval     bool
	Height   float64
	Offset   *Position
}

// format returns the drill statement.
func (d *Drill) format() string {
	parts := []string{}
	if d.Oval {
		parts = append(parts, "oval", num(d.Diameter), num(d.Height))
	} else {
		parts = append(parts, num(d.Diameter))
	}
	if d.Offset != nil {
		parts = append(parts, xyList("offset", *d.Offset))
	}
	return list("drill", parts...)
}

// buildDrill extracts a drill
// Expected format: (drill 0.8) or (drill oval 1 1.5 (offset 0 0.2))
func buildDrill(s *drillStmt) (*Drill, error) {
	d := &Drill{Diameter: s.Diameter, Oval: s.Oval}
	switch {
	case s.Oval && s.Height == nil:
		return nil, missingField("drill", "height", s.Pos)
	case !s.Oval && s.Height != nil:
		return nil, arityError("drill", 1, 1, 2, s.Pos)
	case s.Height != nil:
		d.Height = *s.Height
	}
	if s.Offset != nil {
		d.Offset = &Position{X: s.Offset.X, Y: s.Offset.Y}
	}
	return d, nil
}

func layerNames(s *layersStmt) []string {
	names := make([]string, len(s.Names))
	for i, n := range s.Names {
		names[i] = n.Value
	}
	return names
}

func layersList(w *writer, stmt string, names []string) string {
	values := make([]string, len(names))
	for i, n := range names {
		values[i] = w.str(stmt, n)
	}
	return list("layers", values...)
}

// Via is a plated hole joining copper layers. Every field is optional.
type Via struct {
	At     *Position
	Size   *float64
	Drill  *Drill
	Layers []string
	Net    *int // net number
	TStamp *uint32
}

func (*Via) element() {}

// Render implements Element.
func (v *Via) Render(depth int) (string, error) { return render(v, depth) }

func (v *Via) write(w *writer, depth int) {
	w.line(depth)
	w.put("(via")
	if v.At != nil {
		w.put(" ", xyList("at", *v.At))
	}
	if v.Size != nil {
		w.put(" ", list("size", num(*v.Size)))
	}
	if v.Drill != nil {
		w.put(" ", v.Drill.format())
	}
	if len(v.Layers) > 0 {
		w.put(" ", layersList(w, "via", v.Layers))
	}
	if v.Net != nil {
		w.put(" ", list("net", itoa(*v.Net)))
	}
	if v.TStamp != nil {
		w.put(" ", list("tstamp", sexp.FormatHex(*v.TStamp)))
	}
	w.put(")")
}

// buildVia extracts a via
// Expected format: (via (at x y) (size 0.6) (drill 0.4) (layers F.Cu B.Cu) (net 1))
func buildVia(s *viaStmt) (*Via, error) {
	v := &Via{}
	set := seen{}
	for _, it := range s.Items {
		var key string
		switch {
		case it.At != nil:
			key = "at"
			v.At = &Position{X: it.At.X, Y: it.At.Y}
		case it.Size != nil:
			key = "size"
			v.Size = it.Size
		case it.Drill != nil:
			key = "drill"
			d, err := buildDrill(it.Drill)
			if err != nil {
				return nil, err
			}
			v.Drill = d
		case it.Layers != nil:
			key = "layers"
			v.Layers = layerNames(it.Layers)
		case it.Net != nil:
			key = "net"
			number, _, err := netArgs(it.Net, 1)
			if err != nil {
				return nil, err
			}
			v.Net = &number
		case it.TStamp != nil:
			key = "tstamp"
			v.TStamp = (*uint32)(it.TStamp)
		}
		if err := set.once("via", key, it.Pos); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Segment is a straight copper track. Every field is optional.
type Segment struct {
	Start  *Position
	End    *Position
	Width  *float64
	Layer  *string
	Net    *int // net number
	TStamp *uint32
}

func (*Segment) element() {}

// Render implements Element.
func (s *Segment) Render(depth int) (string, error) { return render(s, depth) }

func (s *Segment) write(w *writer, depth int) {
	w.line(depth)
	w.put("(segment")
	if s.Start != nil {
		w.put(" ", xyList("start", *s.Start))
	}
	if s.End != nil {
		w.put(" ", xyList("end", *s.End))
	}
	if s.Width != nil {
		w.put(" ", list("width", num(*s.Width)))
	}
	if s.Layer != nil {
		w.put(" ", list("layer", w.str("segment", *s.Layer)))
	}
	if s.Net != nil {
		w.put(" ", list("net", itoa(*s.Net)))
	}
	if s.TStamp != nil {
		w.put(" ", list("tstamp", sexp.FormatHex(*s.TStamp)))
	}
	w.put(")")
}

// buildSegment extracts a track segment
// Expected format: (segment (start x y) (end x y) (width 0.25) (layer F.Cu) (net 1) (tstamp X))
func buildSegment(s *segmentStmt) (*Segment, error) {
	seg := &Segment{}
	set := seen{}
	for _, it := range s.Items {
		var key string
		switch {
		case it.Start != nil:
			key = "start"
			seg.Start = &Position{X: it.Start.X, Y: it.Start.Y}
		case it.End != nil:
			key = "end"
			seg.End = &Position{X: it.End.X, Y: it.End.Y}
		case it.Width != nil:
			key = "width"
			seg.Width = it.Width
		case it.Layer != nil:
			key = "layer"
			seg.Layer = Ptr(it.Layer.Value)
		case it.Net != nil:
			key = "net"
			number, _, err := netArgs(it.Net, 1)
			if err != nil {
				return nil, err
			}
			seg.Net = &number
		case it.TStamp != nil:
			key = "tstamp"
			seg.TStamp = (*uint32)(it.TStamp)
		}
		if err := set.once("segment", key, it.Pos); err != nil {
			return nil, err
		}
	}
	return seg, nil
}
