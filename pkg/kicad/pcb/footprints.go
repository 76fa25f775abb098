package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp"
)

// ModuleItem is a child statement of a Module. The set of implementations
// is closed: *FpText, *FpLine, *Pad and *Model.
type ModuleItem interface {
	// Render returns the statement indented to depth, without a trailing
	// newline.
	Render(depth int) (string, error)

	statement
	moduleItem()
}

// Module represents a component footprint
type Module struct {
	Name   string        // Footprint name, optionally "library:name"
	Locked bool          // Written as the bare "locked" flag
	Layer  string        // Layer (F.Cu or B.Cu typically)
	TEdit  *uint32       // Last edit timestamp
	TStamp *uint32       // Unique timestamp
	At     PositionAngle // Position and rotation on the board
	Descr  *string       // Free-text description
	Tags   *string       // Space-separated search keywords
	Attr   *string       // e.g. smd, virtual
	Items  []ModuleItem  // Text, lines, pads and models in file order
}

// FpText is a footprint text annotation
type FpText struct {
	Kind    string // reference, value or user
	Text    string
	At      PositionAngle
	Layer   string
	Hide    bool
	Effects *Effects
}

// Effects holds text rendering attributes
type Effects struct {
	Font    *Font
	Justify []string // left, right, top, bottom, mirror
	Hide    bool
}

// Font is the text font of an fp_text
type Font struct {
	Size      *Size
	Thickness *float64
	Bold      bool
	Italic    bool
}

// Pad represents a footprint pad
type Pad struct {
	Number                 string        // Pad number/name
	Kind                   string        // Pad type (thru_hole, smd, connect, np_thru_hole)
	Shape                  string        // Pad shape (circle, rect, oval, trapezoid)
	At                     PositionAngle // Position relative to the module origin
	Size                   *Size
	RectDelta              *Size
	Drill                  *Drill
	Layers                 []string
	Net                    *NetRef
	SolderMaskMargin       *float64
	SolderPasteMargin      *float64
	SolderPasteMarginRatio *float64
}

// Model references a 3D model file for the footprint
type Model struct {
	Path   string
	At     *Vec3
	Offset *Vec3
	Scale  *Vec3
	Rotate *Vec3
}

func (*Module) element()    {}
func (*FpText) moduleItem() {}
func (*Pad) moduleItem()    {}
func (*Model) moduleItem()  {}

// Render implements Element.
func (m *Module) Render(depth int) (string, error) { return render(m, depth) }

// Render implements ModuleItem.
func (t *FpText) Render(depth int) (string, error) { return render(t, depth) }

// Render implements ModuleItem.
func (p *Pad) Render(depth int) (string, error) { return render(p, depth) }

// Render implements ModuleItem.
func (m *Model) Render(depth int) (string, error) { return render(m, depth) }

// Add appends children in order.
func (m *Module) Add(items ...ModuleItem) {
	m.Items = append(m.Items, items...)
}

// SplitName splits a "library:name" footprint name. Library is empty when
// the name has no library prefix.
func (m *Module) SplitName() (library, name string) {
	if i := strings.IndexByte(m.Name, ':'); i > 0 {
		return m.Name[:i], m.Name[i+1:]
	}
	return "", m.Name
}

// Pads returns the module's pads in file order.
func (m *Module) Pads() []*Pad {
	var pads []*Pad
	for _, it := range m.Items {
		if p, ok := it.(*Pad); ok {
			pads = append(pads, p)
		}
	}
	return pads
}

// Text returns the first fp_text of the given kind, or nil.
func (m *Module) Text(kind string) *FpText {
	for _, it := range m.Items {
		if t, ok := it.(*FpText); ok && t.Kind == kind {
			return t
		}
	}
	return nil
}

// Reference returns the reference designator, or "" if there is none.
func (m *Module) Reference() string {
	if t := m.Text("reference"); t != nil {
		return t.Text
	}
	return ""
}

// Clone returns a deep copy of m.
func (m *Module) Clone() *Module {
	c := *m
	c.TEdit = clonePtr(m.TEdit)
	c.TStamp = clonePtr(m.TStamp)
	c.Descr = clonePtr(m.Descr)
	c.Tags = clonePtr(m.Tags)
	c.Attr = clonePtr(m.Attr)
	c.Items = nil
	for _, it := range m.Items {
		c.Items = append(c.Items, cloneItem(it))
	}
	return &c
}

// Place returns a copy of m positioned at (x, y) and rotated by angle
// degrees, with its reference text set to ref. Child text and pad angles
// are absolute on a board, so the rotation is added to them as well.
func (m *Module) Place(x, y float64, angle Angle, ref string) *Module {
	c := m.Clone()
	c.At = PositionAngle{Position: Position{X: x, Y: y}, Angle: c.At.Angle + angle}
	for _, it := range c.Items {
		switch t := it.(type) {
		case *FpText:
			t.At.Angle += angle
			if t.Kind == "reference" {
				t.Text = ref
			}
		case *Pad:
			t.At.Angle += angle
		}
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneItem(it ModuleItem) ModuleItem {
	switch t := it.(type) {
	case *FpText:
		c := *t
		if t.Effects != nil {
			e := *t.Effects
			if t.Effects.Font != nil {
				f := *t.Effects.Font
				f.Size = clonePtr(f.Size)
				f.Thickness = clonePtr(f.Thickness)
				e.Font = &f
			}
			e.Justify = append([]string(nil), t.Effects.Justify...)
			c.Effects = &e
		}
		return &c
	case *FpLine:
		c := *t
		return &c
	case *Pad:
		c := *t
		c.Size = clonePtr(t.Size)
		c.RectDelta = clonePtr(t.RectDelta)
		if t.Drill != nil {
			d := *t.Drill
			d.Offset = clonePtr(t.Drill.Offset)
			c.Drill = &d
		}
		c.Layers = append([]string(nil), t.Layers...)
		c.Net = clonePtr(t.Net)
		c.SolderMaskMargin = clonePtr(t.SolderMaskMargin)
		c.SolderPasteMargin = clonePtr(t.SolderPasteMargin)
		c.SolderPasteMarginRatio = clonePtr(t.SolderPasteMarginRatio)
		return &c
	case *Model:
		c := *t
		c.At = clonePtr(t.At)
		c.Offset = clonePtr(t.Offset)
		c.Scale = clonePtr(t.Scale)
		c.Rotate = clonePtr(t.Rotate)
		return &c
	}
	panic(fmt.Sprintf("pcb: unknown module item %T", it))
}

func (m *Module) write(w *writer, depth int) {
	w.line(depth)
	w.put("(module ", w.required("module", "name", m.Name))
	if m.Locked {
		w.put(" locked")
	}
	w.put(" ", list("layer", w.required("module", "layer", m.Layer)))
	if m.TEdit != nil {
		w.put(" ", list("tedit", sexp.FormatHex(*m.TEdit)))
	}
	if m.TStamp != nil {
		w.put(" ", list("tstamp", sexp.FormatHex(*m.TStamp)))
	}
	w.put(" ", atList(m.At))
	if m.Descr != nil {
		w.line(depth + 1)
		w.put(list("descr", w.str("descr", *m.Descr)))
	}
	if m.Tags != nil {
		w.line(depth + 1)
		w.put(list("tags", w.str("tags", *m.Tags)))
	}
	if m.Attr != nil {
		w.line(depth + 1)
		w.put(list("attr", w.str("attr", *m.Attr)))
	}
	for _, it := range m.Items {
		if it == nil {
			w.fail(fmt.Errorf("module %s: nil item", m.Name))
			continue
		}
		it.write(w, depth+1)
	}
	w.close(depth)
}

func (t *FpText) write(w *writer, depth int) {
	w.line(depth)
	w.put("(fp_text ", w.required("fp_text", "kind", t.Kind), " ", w.str("fp_text", t.Text),
		" ", atList(t.At), " ", list("layer", w.required("fp_text", "layer", t.Layer)))
	if t.Hide {
		w.put(" hide")
	}
	if t.Effects == nil {
		w.put(")")
		return
	}
	t.Effects.write(w, depth+1)
	w.close(depth)
}

func (e *Effects) write(w *writer, depth int) {
	var parts []string
	if f := e.Font; f != nil {
		var font []string
		if f.Size != nil {
			font = append(font, sizeList("size", *f.Size))
		}
		if f.Thickness != nil {
			font = append(font, list("thickness", num(*f.Thickness)))
		}
		if f.Bold {
			font = append(font, "bold")
		}
		if f.Italic {
			font = append(font, "italic")
		}
		parts = append(parts, list("font", font...))
	}
	if len(e.Justify) > 0 {
		parts = append(parts, list("justify", e.Justify...))
	}
	if e.Hide {
		parts = append(parts, "hide")
	}
	w.line(depth)
	w.put(list("effects", parts...))
}

func (p *Pad) write(w *writer, depth int) {
	w.line(depth)
	w.put("(pad ", w.str("pad", p.Number), " ", w.required("pad", "kind", p.Kind), " ", w.required("pad", "shape", p.Shape))
	w.put(" ", atList(p.At))
	if p.Size != nil {
		w.put(" ", sizeList("size", *p.Size))
	}
	if p.RectDelta != nil {
		w.put(" ", sizeList("rect_delta", *p.RectDelta))
	}
	if p.Drill != nil {
		w.put(" ", p.Drill.format())
	}
	if len(p.Layers) > 0 {
		w.put(" ", layersList(w, "pad", p.Layers))
	}
	if p.Net != nil {
		w.put(" ", list("net", itoa(p.Net.Number), w.str("net", p.Net.Name)))
	}
	if p.SolderMaskMargin != nil {
		w.put(" ", list("solder_mask_margin", num(*p.SolderMaskMargin)))
	}
	if p.SolderPasteMargin != nil {
		w.put(" ", list("solder_paste_margin", num(*p.SolderPasteMargin)))
	}
	if p.SolderPasteMarginRatio != nil {
		w.put(" ", list("solder_paste_margin_ratio", num(*p.SolderPasteMarginRatio)))
	}
	w.put(")")
}

func (m *Model) write(w *writer, depth int) {
	w.line(depth)
	w.put("(model ", w.required("model", "path", m.Path))
	for _, v := range []struct {
		key string
		vec *Vec3
	}{{"at", m.At}, {"offset", m.Offset}, {"scale", m.Scale}, {"rotate", m.Rotate}} {
		if v.vec != nil {
			w.line(depth + 1)
			w.put(xyzList(v.key, *v.vec))
		}
	}
	w.close(depth)
}

func atValue(s *atStmt) PositionAngle {
	pa := PositionAngle{Position: Position{X: s.X, Y: s.Y}}
	if s.Angle != nil {
		pa.Angle = Angle(*s.Angle)
	}
	return pa
}

// buildModule extracts a footprint module
// Expected format: (module name [locked] (layer F.Cu) (tedit X) (at x y [angle]) ... items)
func buildModule(s *moduleStmt) (*Module, error) {
	m := &Module{Name: s.Name.Value, Locked: s.Locked}
	set := seen{}
	for _, it := range s.Items {
		if it.Child != nil {
			item, err := buildModuleItem(it.Child)
			if err != nil {
				return nil, err
			}
			m.Items = append(m.Items, item)
			continue
		}

		var key string
		switch {
		case it.Layer != nil:
			key = "layer"
			m.Layer = it.Layer.Value
		case it.TEdit != nil:
			key = "tedit"
			m.TEdit = (*uint32)(it.TEdit)
		case it.TStamp != nil:
			key = "tstamp"
			m.TStamp = (*uint32)(it.TStamp)
		case it.At != nil:
			key = "at"
			m.At = atValue(it.At)
		case it.Descr != nil:
			key = "descr"
			m.Descr = Ptr(it.Descr.Value)
		case it.Tags != nil:
			key = "tags"
			m.Tags = Ptr(it.Tags.Value)
		case it.Attr != nil:
			key = "attr"
			m.Attr = Ptr(it.Attr.Value)
		}
		if err := set.once("module", key, it.Pos); err != nil {
			return nil, err
		}
	}
	if !set["layer"] {
		return nil, missingField("module", "layer", s.Pos)
	}
	return m, nil
}

func buildModuleItem(s *moduleChildStmt) (ModuleItem, error) {
	switch {
	case s.Text != nil:
		return buildFpText(s.Text)
	case s.Line != nil:
		return buildFpLine(s.Line)
	case s.Pad != nil:
		return buildPad(s.Pad)
	case s.Model != nil:
		return buildModel(s.Model)
	}
	return nil, fmt.Errorf("empty module item")
}

// buildFpText extracts a footprint text
// Expected format: (fp_text reference R1 (at 0 -1.65) (layer F.SilkS) [hide] (effects ...))
func buildFpText(s *fpTextStmt) (*FpText, error) {
	t := &FpText{Kind: s.Kind, Text: s.Text.Value}
	set := seen{}
	for _, it := range s.Items {
		var key string
		switch {
		case it.At != nil:
			key = "at"
			t.At = atValue(it.At)
		case it.Layer != nil:
			key = "layer"
			t.Layer = it.Layer.Value
		case it.Effects != nil:
			key = "effects"
			e, err := buildEffects(it.Effects)
			if err != nil {
				return nil, err
			}
			t.Effects = e
		case it.Hide:
			key = "hide"
			t.Hide = true
		}
		if err := set.once("fp_text", key, it.Pos); err != nil {
			return nil, err
		}
	}
	if !set["at"] {
		return nil, missingField("fp_text", "at", s.Pos)
	}
	if !set["layer"] {
		return nil, missingField("fp_text", "layer", s.Pos)
	}
	return t, nil
}

func buildEffects(s *effectsStmt) (*Effects, error) {
	e := &Effects{}
	set := seen{}
	for _, it := range s.Items {
		var key string
		switch {
		case it.Font != nil:
			key = "font"
			f, err := buildFont(it.Font)
			if err != nil {
				return nil, err
			}
			e.Font = f
		case it.Justify != nil:
			key = "justify"
			e.Justify = it.Justify.Values
		case it.Hide:
			key = "hide"
			e.Hide = true
		}
		if err := set.once("effects", key, it.Pos); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func buildFont(s *fontStmt) (*Font, error) {
	f := &Font{}
	set := seen{}
	for _, it := range s.Items {
		var key string
		switch {
		case it.Size != nil:
			key = "size"
			f.Size = &Size{Width: it.Size.X, Height: it.Size.Y}
		case it.Thickness != nil:
			key = "thickness"
			f.Thickness = it.Thickness
		case it.Italic:
			key = "italic"
			f.Italic = true
		case it.Bold:
			key = "bold"
			f.Bold = true
		}
		if err := set.once("font", key, it.Pos); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// buildPad extracts a footprint pad
// Expected format: (pad 1 smd rect (at x y [angle]) (size w h) (drill d) (layers ...) (net n name))
func buildPad(s *padStmt) (*Pad, error) {
	if len(s.Args) != 3 {
		return nil, arityError("pad", 3, 3, len(s.Args), s.Pos)
	}
	kind, ok := s.Args[1].Ident()
	if !ok {
		return nil, lexicalError(s.Args[1].Pos, "pad type must be an identifier, got %q", s.Args[1].Text())
	}
	shape, ok := s.Args[2].Ident()
	if !ok {
		return nil, lexicalError(s.Args[2].Pos, "pad shape must be an identifier, got %q", s.Args[2].Text())
	}

	pad := &Pad{Number: s.Args[0].Text(), Kind: kind, Shape: shape}
	set := seen{}
	for _, it := range s.Items {
		var key string
		switch {
		case it.At != nil:
			key = "at"
			pad.At = atValue(it.At)
		case it.Size != nil:
			key = "size"
			pad.Size = &Size{Width: it.Size.X, Height: it.Size.Y}
		case it.RectDelta != nil:
			key = "rect_delta"
			pad.RectDelta = &Size{Width: it.RectDelta.X, Height: it.RectDelta.Y}
		case it.Drill != nil:
			key = "drill"
			d, err := buildDrill(it.Drill)
			if err != nil {
				return nil, err
			}
			pad.Drill = d
		case it.Layers != nil:
			key = "layers"
			pad.Layers = layerNames(it.Layers)
		case it.Net != nil:
			key = "net"
			number, name, err := netArgs(it.Net, 2)
			if err != nil {
				return nil, err
			}
			pad.Net = &NetRef{Number: number, Name: name}
		case it.SolderMaskMargin != nil:
			key = "solder_mask_margin"
			pad.SolderMaskMargin = it.SolderMaskMargin
		case it.SolderPasteMargin != nil:
			key = "solder_paste_margin"
			pad.SolderPasteMargin = it.SolderPasteMargin
		case it.SolderPasteMarginRatio != nil:
			key = "solder_paste_margin_ratio"
			pad.SolderPasteMarginRatio = it.SolderPasteMarginRatio
		}
		if err := set.once("pad", key, it.Pos); err != nil {
			return nil, err
		}
	}
	return pad, nil
}

// buildModel extracts a 3D model reference
// Expected format: (model path (at (xyz 0 0 0)) (scale (xyz 1 1 1)) (rotate (xyz 0 0 0)))
func buildModel(s *modelStmt) (*Model, error) {
	m := &Model{Path: s.Path.Value}
	set := seen{}
	for _, it := range s.Items {
		var key string
		var v *xyz
		switch {
		case it.At != nil:
			key, v = "at", it.At
			m.At = &Vec3{X: v.X, Y: v.Y, Z: v.Z}
		case it.Offset != nil:
			key, v = "offset", it.Offset
			m.Offset = &Vec3{X: v.X, Y: v.Y, Z: v.Z}
		case it.Scale != nil:
			key, v = "scale", it.Scale
			m.Scale = &Vec3{X: v.X, Y: v.Y, Z: v.Z}
		case it.Rotate != nil:
			key, v = "rotate", it.Rotate
			m.Rotate = &Vec3{X: v.X, Y: v.Y, Z: v.Z}
		}
		if err := set.once("model", key, it.Pos); err != nil {
			return nil, err
		}
	}
	return m, nil
}
