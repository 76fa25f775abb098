package pcb

import (
	"fmt"
	"io"
	"strings"
)

// Document represents a complete KiCad 4 board file
type Document struct {
	Version  int       // File format version (4 for pcbnew 4.x)
	Host     Host      // Writing program; the zero value omits (host ...)
	Elements []Element // Top-level statements in file order
}

// Element is one top-level statement of a board. The set of
// implementations is closed: *Net, *NetClass, *General, *Setup, *Page,
// *LayerList, *GrLine, *GrCircle, *GrArc, *Via, *Segment and *Module.
type Element interface {
	// Render returns the statement indented to depth, without a trailing
	// newline.
	Render(depth int) (string, error)

	statement
	element()
}

// NewDocument returns the skeleton pcbnew 4.0.7 writes for an empty board.
func NewDocument() *Document {
	return &Document{
		Version: 4,
		Host:    Host{Name: "pcbnew", Version: "4.0.7"},
		Elements: []Element{
			DefaultGeneral(),
			&Page{Size: "A4"},
			DefaultLayerList(),
			DefaultSetup(),
			&Net{Number: 0, Name: ""},
			DefaultNetClass(),
		},
	}
}

// Add appends elements in order.
func (d *Document) Add(elems ...Element) {
	d.Elements = append(d.Elements, elems...)
}

// Render returns the whole document text, ending with a newline.
func (d *Document) Render() (string, error) {
	s, err := render(d, 0)
	if err != nil {
		return "", err
	}
	return s + "\n", nil
}

// WriteTo writes the rendered document to out.
func (d *Document) WriteTo(out io.Writer) (int64, error) {
	s, err := d.Render()
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(out, s)
	return int64(n), err
}

func (d *Document) write(w *writer, depth int) {
	w.line(depth)
	w.put("(kicad_pcb ", list("version", itoa(d.Version)))
	if d.Host != (Host{}) {
		w.put(" ", list("host", w.required("host", "name", d.Host.Name), w.required("host", "version", d.Host.Version)))
	}
	for _, e := range d.Elements {
		if e == nil {
			w.fail(fmt.Errorf("kicad_pcb: nil element"))
			continue
		}
		e.write(w, depth+1)
	}
	w.close(depth)
}

func buildDocument(s *documentStmt) (*Document, error) {
	doc := &Document{}
	set := seen{}
	for _, item := range s.Items {
		switch {
		case item.Version != nil:
			if err := set.once("kicad_pcb", "version", item.Pos); err != nil {
				return nil, err
			}
			doc.Version = int(*item.Version)
		case item.Host != nil:
			if err := set.once("kicad_pcb", "host", item.Pos); err != nil {
				return nil, err
			}
			host, err := buildHost(item.Host)
			if err != nil {
				return nil, err
			}
			doc.Host = host
		case item.Element != nil:
			elem, err := buildElement(item.Element)
			if err != nil {
				return nil, err
			}
			doc.Elements = append(doc.Elements, elem)
		}
	}
	if !set["version"] {
		return nil, missingField("kicad_pcb", "version", s.Pos)
	}
	return doc, nil
}

func buildHost(s *hostStmt) (Host, error) {
	if len(s.Args) != 2 {
		return Host{}, arityError("host", 2, 2, len(s.Args), s.Pos)
	}
	return Host{Name: s.Args[0].Text(), Version: s.Args[1].Text()}, nil
}

func buildElement(s *elementStmt) (Element, error) {
	switch {
	case s.Net != nil:
		number, name, err := netArgs(s.Net, 2)
		if err != nil {
			return nil, err
		}
		return &Net{Number: number, Name: name}, nil
	case s.NetClass != nil:
		return buildNetClass(s.NetClass)
	case s.General != nil:
		return buildGeneral(s.General)
	case s.Setup != nil:
		return buildSetup(s.Setup)
	case s.Page != nil:
		return &Page{Size: s.Page.Size.Value}, nil
	case s.Layers != nil:
		return buildLayerList(s.Layers)
	case s.GrLine != nil:
		return buildGrLine(s.GrLine)
	case s.GrCircle != nil:
		return buildGrCircle(s.GrCircle)
	case s.GrArc != nil:
		return buildGrArc(s.GrArc)
	case s.Via != nil:
		return buildVia(s.Via)
	case s.Segment != nil:
		return buildSegment(s.Segment)
	case s.Module != nil:
		return buildModule(s.Module)
	}
	return nil, fmt.Errorf("empty element")
}

// netArgs reads the positional values of a net statement: number and name
// when want is 2, number only when want is 1.
func netArgs(s *netStmt, want int) (int, string, error) {
	if len(s.Args) != want {
		return 0, "", arityError("net", want, want, len(s.Args), s.Pos)
	}
	number, ok := s.Args[0].Uint()
	if !ok {
		return 0, "", lexicalError(s.Args[0].Pos, "(net) expects an unsigned net number, got %q", s.Args[0].Text())
	}
	if want == 1 {
		return number, "", nil
	}
	return number, s.Args[1].Text(), nil
}

func (*Net) element() {}

// Render implements Element.
func (n *Net) Render(depth int) (string, error) { return render(n, depth) }

func (n *Net) write(w *writer, depth int) {
	w.line(depth)
	w.put(list("net", itoa(n.Number), w.str("net", n.Name)))
}

func (*Page) element() {}

// Render implements Element.
func (p *Page) Render(depth int) (string, error) { return render(p, depth) }

func (p *Page) write(w *writer, depth int) {
	w.line(depth)
	w.put(list("page", w.required("page", "size", p.Size)))
}

func (*LayerList) element() {}

// Render implements Element.
func (l *LayerList) Render(depth int) (string, error) { return render(l, depth) }

func (l *LayerList) write(w *writer, depth int) {
	w.line(depth)
	w.put("(layers")
	for _, def := range l.Layers {
		parts := []string{
			itoa(def.Number),
			w.required("layers", "name", def.Name),
			w.required("layers", "kind", def.Kind),
		}
		if def.UserName != nil {
			parts = append(parts, w.str("layers", *def.UserName))
		}
		w.line(depth + 1)
		w.put("(", strings.Join(parts, " "), ")")
	}
	w.close(depth)
}

// Map indexes the layers by name and number.
func (l *LayerList) Map() *LayerMap {
	return NewLayerMap(l.Layers)
}

func buildLayerList(s *layerListStmt) (*LayerList, error) {
	l := &LayerList{}
	for _, def := range s.Defs {
		if n := len(def.Args); n < 3 || n > 4 {
			return nil, arityError("layers", 3, 4, n, def.Pos)
		}
		number, ok := def.Args[0].Uint()
		if !ok {
			return nil, lexicalError(def.Args[0].Pos, "layer number must be an unsigned integer, got %q", def.Args[0].Text())
		}
		kind, ok := def.Args[2].Ident()
		if !ok {
			return nil, lexicalError(def.Args[2].Pos, "layer kind must be an identifier, got %q", def.Args[2].Text())
		}
		ld := LayerDef{Number: number, Name: def.Args[1].Text(), Kind: kind}
		if len(def.Args) == 4 {
			ld.UserName = Ptr(def.Args[3].Text())
		}
		l.Layers = append(l.Layers, ld)
	}
	return l, nil
}

// Nets returns the top-level net declarations in file order.
func (d *Document) Nets() []*Net {
	var nets []*Net
	for _, e := range d.Elements {
		if n, ok := e.(*Net); ok {
			nets = append(nets, n)
		}
	}
	return nets
}

// NetMap indexes the top-level nets.
func (d *Document) NetMap() *NetMap {
	return NewNetMap(d.Nets())
}

// Modules returns the footprint modules in file order.
func (d *Document) Modules() []*Module {
	var modules []*Module
	for _, e := range d.Elements {
		if m, ok := e.(*Module); ok {
			modules = append(modules, m)
		}
	}
	return modules
}

// General returns the first general block, or nil.
func (d *Document) General() *General {
	for _, e := range d.Elements {
		if g, ok := e.(*General); ok {
			return g
		}
	}
	return nil
}

// Setup returns the first setup block, or nil.
func (d *Document) Setup() *Setup {
	for _, e := range d.Elements {
		if s, ok := e.(*Setup); ok {
			return s
		}
	}
	return nil
}

// Layers returns the first layer list, or nil.
func (d *Document) Layers() *LayerList {
	for _, e := range d.Elements {
		if l, ok := e.(*LayerList); ok {
			return l
		}
	}
	return nil
}

// NetPads returns all pads connected to the numbered net
func (d *Document) NetPads(number int) []*Pad {
	var pads []*Pad
	for _, m := range d.Modules() {
		for _, pad := range m.Pads() {
			if pad.Net != nil && pad.Net.Number == number {
				pads = append(pads, pad)
			}
		}
	}
	return pads
}

// NetTracks returns the segments and vias on the numbered net
func (d *Document) NetTracks(number int) ([]*Segment, []*Via) {
	var segments []*Segment
	var vias []*Via
	for _, e := range d.Elements {
		switch t := e.(type) {
		case *Segment:
			if t.Net != nil && *t.Net == number {
				segments = append(segments, t)
			}
		case *Via:
			if t.Net != nil && *t.Net == number {
				vias = append(vias, t)
			}
		}
	}
	return segments, vias
}

// Counts tallies top-level elements by statement keyword.
func (d *Document) Counts() map[string]int {
	counts := make(map[string]int)
	for _, e := range d.Elements {
		counts[Keyword(e)]++
	}
	return counts
}

// Keyword returns the statement keyword an element renders as.
func Keyword(e Element) string {
	switch e.(type) {
	case *Net:
		return "net"
	case *NetClass:
		return "net_class"
	case *General:
		return "general"
	case *Setup:
		return "setup"
	case *Page:
		return "page"
	case *LayerList:
		return "layers"
	case *GrLine:
		return "gr_line"
	case *GrCircle:
		return "gr_circle"
	case *GrArc:
		return "gr_arc"
	case *Via:
		return "via"
	case *Segment:
		return "segment"
	case *Module:
		return "module"
	}
	return ""
}
