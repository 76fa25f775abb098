package pcb

import (
	"slices"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp"
)

// GrLine is a board-level line, typically on Edge.Cuts
type GrLine struct {
	Start  Position
	End    Position
	Angle  *float64
	Layer  string
	Width  float64
	TStamp *uint32
}

// GrCircle is a circle given by its center and a point on the circumference
type GrCircle struct {
	Center Position
	End    Position
	Layer  string
	Width  float64
	TStamp *uint32
}

// GrArc is an arc centered on Start, beginning at End and sweeping Angle
// degrees.
type GrArc struct {
	Start  Position
	End    Position
	Angle  float64
	Layer  string
	Width  float64
	TStamp *uint32
}

// FpLine is a line inside a footprint, relative to the module origin
type FpLine struct {
	Start Position
	End   Position
	Layer string
	Width float64
}

func (*GrLine) element()    {}
func (*GrCircle) element()  {}
func (*GrArc) element()     {}
func (*FpLine) moduleItem() {}

// Render implements Element.
func (g *GrLine) Render(depth int) (string, error) { return render(g, depth) }

// Render implements Element.
func (g *GrCircle) Render(depth int) (string, error) { return render(g, depth) }

// Render implements Element.
func (g *GrArc) Render(depth int) (string, error) { return render(g, depth) }

// Render implements ModuleItem.
func (f *FpLine) Render(depth int) (string, error) { return render(f, depth) }

func (g *GrLine) write(w *writer, depth int) {
	w.line(depth)
	w.put("(gr_line ", xyList("start", g.Start), " ", xyList("end", g.End))
	if g.Angle != nil {
		w.put(" ", list("angle", num(*g.Angle)))
	}
	writeStroke(w, "gr_line", g.Layer, g.Width, g.TStamp)
}

func (g *GrCircle) write(w *writer, depth int) {
	w.line(depth)
	w.put("(gr_circle ", xyList("center", g.Center), " ", xyList("end", g.End))
	writeStroke(w, "gr_circle", g.Layer, g.Width, g.TStamp)
}

func (g *GrArc) write(w *writer, depth int) {
	w.line(depth)
	w.put("(gr_arc ", xyList("start", g.Start), " ", xyList("end", g.End), " ", list("angle", num(g.Angle)))
	writeStroke(w, "gr_arc", g.Layer, g.Width, g.TStamp)
}

func (f *FpLine) write(w *writer, depth int) {
	w.line(depth)
	w.put("(fp_line ", xyList("start", f.Start), " ", xyList("end", f.End))
	writeStroke(w, "fp_line", f.Layer, f.Width, nil)
}

// writeStroke finishes a graphic statement with its layer, width and
// optional timestamp.
func writeStroke(w *writer, stmt, layer string, width float64, tstamp *uint32) {
	w.put(" ", list("layer", w.required(stmt, "layer", layer)), " ", list("width", num(width)))
	if tstamp != nil {
		w.put(" ", list("tstamp", sexp.FormatHex(*tstamp)))
	}
	w.put(")")
}

// drawing collects the parameters of a graphic statement before the
// statement-specific required fields are checked.
type drawing struct {
	start  *Position
	end    *Position
	center *Position
	angle  *float64
	layer  *string
	width  *float64
	tstamp *uint32
}

func (it *drawItem) keyword() string {
	switch {
	case it.Start != nil:
		return "start"
	case it.End != nil:
		return "end"
	case it.Center != nil:
		return "center"
	case it.Angle != nil:
		return "angle"
	case it.Layer != nil:
		return "layer"
	case it.Width != nil:
		return "width"
	}
	return "tstamp"
}

// collectDrawing reads the parameters of stmt, accepting only the keywords
// in allowed and each at most once.
func collectDrawing(stmt string, items []*drawItem, allowed ...string) (*drawing, error) {
	d := &drawing{}
	set := seen{}
	for _, it := range items {
		key := it.keyword()
		if !slices.Contains(allowed, key) {
			return nil, &UnknownConstructError{Keyword: key, Context: stmt, Line: it.Pos.Line, Column: it.Pos.Column}
		}
		if err := set.once(stmt, key, it.Pos); err != nil {
			return nil, err
		}
		switch key {
		case "start":
			d.start = &Position{X: it.Start.X, Y: it.Start.Y}
		case "end":
			d.end = &Position{X: it.End.X, Y: it.End.Y}
		case "center":
			d.center = &Position{X: it.Center.X, Y: it.Center.Y}
		case "angle":
			d.angle = it.Angle
		case "layer":
			d.layer = &it.Layer.Value
		case "width":
			d.width = it.Width
		case "tstamp":
			d.tstamp = (*uint32)(it.TStamp)
		}
	}
	return d, nil
}

// require reports the first of fields that was not given.
func (d *drawing) require(stmt string, pos lexer.Position, fields ...string) error {
	for _, f := range fields {
		var present bool
		switch f {
		case "start":
			present = d.start != nil
		case "end":
			present = d.end != nil
		case "center":
			present = d.center != nil
		case "angle":
			present = d.angle != nil
		case "layer":
			present = d.layer != nil
		case "width":
			present = d.width != nil
		}
		if !present {
			return missingField(stmt, f, pos)
		}
	}
	return nil
}

// buildGrLine extracts a board line
// Expected format: (gr_line (start x1 y1) (end x2 y2) [(angle a)] (layer Edge.Cuts) (width 0.15) [(tstamp X)])
func buildGrLine(s *grLineStmt) (*GrLine, error) {
	d, err := collectDrawing("gr_line", s.Items, "start", "end", "angle", "layer", "width", "tstamp")
	if err != nil {
		return nil, err
	}
	if err := d.require("gr_line", s.Pos, "start", "end", "layer", "width"); err != nil {
		return nil, err
	}
	return &GrLine{Start: *d.start, End: *d.end, Angle: d.angle, Layer: *d.layer, Width: *d.width, TStamp: d.tstamp}, nil
}

// buildGrCircle extracts a board circle
// Expected format: (gr_circle (center x y) (end x y) (layer L) (width w) [(tstamp X)])
func buildGrCircle(s *grCircleStmt) (*GrCircle, error) {
	d, err := collectDrawing("gr_circle", s.Items, "center", "end", "layer", "width", "tstamp")
	if err != nil {
		return nil, err
	}
	if err := d.require("gr_circle", s.Pos, "center", "end", "layer", "width"); err != nil {
		return nil, err
	}
	return &GrCircle{Center: *d.center, End: *d.end, Layer: *d.layer, Width: *d.width, TStamp: d.tstamp}, nil
}

// buildGrArc extracts a board arc
// Expected format: (gr_arc (start x y) (end x y) (angle a) (layer L) (width w) [(tstamp X)])
func buildGrArc(s *grArcStmt) (*GrArc, error) {
	d, err := collectDrawing("gr_arc", s.Items, "start", "end", "angle", "layer", "width", "tstamp")
	if err != nil {
		return nil, err
	}
	if err := d.require("gr_arc", s.Pos, "start", "end", "angle", "layer", "width"); err != nil {
		return nil, err
	}
	return &GrArc{Start: *d.start, End: *d.end, Angle: *d.angle, Layer: *d.layer, Width: *d.width, TStamp: d.tstamp}, nil
}

// buildFpLine extracts a footprint line
// Expected format: (fp_line (start x1 y1) (end x2 y2) (layer F.SilkS) (width 0.12))
func buildFpLine(s *fpLineStmt) (*FpLine, error) {
	d, err := collectDrawing("fp_line", s.Items, "start", "end", "layer", "width")
	if err != nil {
		return nil, err
	}
	if err := d.require("fp_line", s.Pos, "start", "end", "layer", "width"); err != nil {
		return nil, err
	}
	return &FpLine{Start: *d.start, End: *d.end, Layer: *d.layer, Width: *d.width}, nil
}
