package pcb

// General holds the board statistics block. pcbnew recomputes these on
// save; they are carried through unchanged.
type General struct {
	Links      int
	NoConnects int
	Area       Area
	Thickness  float64 // Board thickness in mm
	Drawings   int
	Tracks     int
	Zones      int
	Modules    int
	Nets       int
}

// DefaultGeneral returns the general block of an empty board.
func DefaultGeneral() *General {
	return &General{Thickness: 1.6, Nets: 1}
}

var generalFields = []fieldSpec[General]{
	{Key: "links", Ref: func(g *General) any { return &g.Links }},
	{Key: "no_connects", Ref: func(g *General) any { return &g.NoConnects }},
	{Key: "area", Ref: func(g *General) any { return &g.Area }},
	{Key: "thickness", Ref: func(g *General) any { return &g.Thickness }},
	{Key: "drawings", Ref: func(g *General) any { return &g.Drawings }},
	{Key: "tracks", Ref: func(g *General) any { return &g.Tracks }},
	{Key: "zones", Ref: func(g *General) any { return &g.Zones }},
	{Key: "modules", Ref: func(g *General) any { return &g.Modules }},
	{Key: "nets", Ref: func(g *General) any { return &g.Nets }},
}

func (*General) element() {}

// Render implements Element.
func (g *General) Render(depth int) (string, error) { return render(g, depth) }

func (g *General) write(w *writer, depth int) {
	w.line(depth)
	w.put("(general")
	writeFields(w, depth+1, generalFields, g)
	w.close(depth)
}

func buildGeneral(s *generalStmt) (*General, error) {
	g := DefaultGeneral()
	params := make([]param, len(s.Items))
	for i, item := range s.Items {
		params[i] = param{Pos: item.Pos, Key: item.Key, Args: item.Args}
	}
	if err := applyParams("general", generalFields, g, params); err != nil {
		return nil, err
	}
	return g, nil
}

// Setup contains board design rules and editor defaults. Every field has a
// default; a parsed block overrides only the fields it names, and
// rendering always writes every field.
type Setup struct {
	LastTraceWidth     float64
	TraceClearance     float64
	ZoneClearance      float64
	Zone45Only         bool
	TraceMin           float64
	SegmentWidth       float64
	EdgeWidth          float64
	ViaSize            float64
	ViaDia             *float64 // older boards only
	ViaDrill           float64
	ViaMinSize         float64
	ViaMinDrill        float64
	UViaSize           float64
	UViaDia            *float64 // older boards only
	UViaDrill          float64
	UViasAllowed       bool
	UViaMinSize        float64
	UViaMinDrill       float64
	PCBTextWidth       float64
	PCBTextSize        Size
	ModEdgeWidth       float64
	ModTextSize        Size
	ModTextWidth       float64
	PadSize            Size
	PadDrill           float64
	PadToMaskClearance float64
	AuxAxisOrigin      Position
	VisibleElements    uint32
	PlotParams         PlotParams
}

// DefaultSetup returns the setup block used for new boards.
func DefaultSetup() *Setup {
	return &Setup{
		LastTraceWidth:     0.25,
		TraceClearance:     0.2,
		ZoneClearance:      0.5,
		TraceMin:           0.2,
		SegmentWidth:       0.2,
		EdgeWidth:          0.1,
		ViaSize:            0.6,
		ViaDrill:           0.4,
		ViaMinSize:         0.4,
		ViaMinDrill:        0.3,
		UViaSize:           0.3,
		UViaDrill:          0.1,
		UViaMinSize:        0.2,
		UViaMinDrill:       0.1,
		PCBTextWidth:       0.3,
		PCBTextSize:        Size{Width: 1.5, Height: 1.5},
		ModEdgeWidth:       0.15,
		ModTextSize:        Size{Width: 1, Height: 1},
		ModTextWidth:       0.15,
		PadSize:            Size{Width: 1.524, Height: 1.524},
		PadDrill:           0.762,
		PadToMaskClearance: 0.2,
		VisibleElements:    0x7FFFFFFF,
		PlotParams:         *DefaultPlotParams(),
	}
}

var setupFields = []fieldSpec[Setup]{
	{Key: "last_trace_width", Ref: func(s *Setup) any { return &s.LastTraceWidth }},
	{Key: "trace_clearance", Ref: func(s *Setup) any { return &s.TraceClearance }},
	{Key: "zone_clearance", Ref: func(s *Setup) any { return &s.ZoneClearance }},
	{Key: "zone_45_only", Ref: func(s *Setup) any { return &s.Zone45Only }},
	{Key: "trace_min", Ref: func(s *Setup) any { return &s.TraceMin }},
	{Key: "segment_width", Ref: func(s *Setup) any { return &s.SegmentWidth }},
	{Key: "edge_width", Ref: func(s *Setup) any { return &s.EdgeWidth }},
	{Key: "via_size", Ref: func(s *Setup) any { return &s.ViaSize }},
	{Key: "via_dia", Ref: func(s *Setup) any { return &s.ViaDia }},
	{Key: "via_drill", Ref: func(s *Setup) any { return &s.ViaDrill }},
	{Key: "via_min_size", Ref: func(s *Setup) any { return &s.ViaMinSize }},
	{Key: "via_min_drill", Ref: func(s *Setup) any { return &s.ViaMinDrill }},
	{Key: "uvia_size", Ref: func(s *Setup) any { return &s.UViaSize }},
	{Key: "uvia_dia", Ref: func(s *Setup) any { return &s.UViaDia }},
	{Key: "uvia_drill", Ref: func(s *Setup) any { return &s.UViaDrill }},
	{Key: "uvias_allowed", Ref: func(s *Setup) any { return &s.UViasAllowed }},
	{Key: "uvia_min_size", Ref: func(s *Setup) any { return &s.UViaMinSize }},
	{Key: "uvia_min_drill", Ref: func(s *Setup) any { return &s.UViaMinDrill }},
	{Key: "pcb_text_width", Ref: func(s *Setup) any { return &s.PCBTextWidth }},
	{Key: "pcb_text_size", Ref: func(s *Setup) any { return &s.PCBTextSize }},
	{Key: "mod_edge_width", Ref: func(s *Setup) any { return &s.ModEdgeWidth }},
	{Key: "mod_text_size", Ref: func(s *Setup) any { return &s.ModTextSize }},
	{Key: "mod_text_width", Ref: func(s *Setup) any { return &s.ModTextWidth }},
	{Key: "pad_size", Ref: func(s *Setup) any { return &s.PadSize }},
	{Key: "pad_drill", Ref: func(s *Setup) any { return &s.PadDrill }},
	{Key: "pad_to_mask_clearance", Ref: func(s *Setup) any { return &s.PadToMaskClearance }},
	{Key: "aux_axis_origin", Ref: func(s *Setup) any { return &s.AuxAxisOrigin }},
	{Key: "visible_elements", Ref: func(s *Setup) any { return &s.VisibleElements }},
}

func (*Setup) element() {}

// Render implements Element.
func (s *Setup) Render(depth int) (string, error) { return render(s, depth) }

func (s *Setup) write(w *writer, depth int) {
	w.line(depth)
	w.put("(setup")
	writeFields(w, depth+1, setupFields, s)
	s.PlotParams.write(w, depth+1)
	w.close(depth)
}

func buildSetup(s *setupStmt) (*Setup, error) {
	setup := DefaultSetup()
	set := seen{}
	var params []param
	for _, item := range s.Items {
		if item.Plot == nil {
			params = append(params, param{Pos: item.Pos, Key: item.Key, Args: item.Args})
			continue
		}
		if err := set.once("setup", "pcbplotparams", item.Pos); err != nil {
			return nil, err
		}
		plot, err := buildPlotParams(item.Plot)
		if err != nil {
			return nil, err
		}
		setup.PlotParams = *plot
	}
	if err := applyParams("setup", setupFields, setup, params); err != nil {
		return nil, err
	}
	return setup, nil
}

// PlotParams are the plot dialog settings stored inside setup.
type PlotParams struct {
	LayerSelection       string
	UseGerberExtensions  bool
	ExcludeEdgeLayer     bool
	LineWidth            float64
	PlotFrameRef         bool
	ViasOnMask           bool
	Mode                 int
	UseAuxOrigin         bool
	HPGLPenNumber        float64
	HPGLPenSpeed         float64
	HPGLPenDiameter      float64
	HPGLPenOverlay       float64
	PSNegative           bool
	PSA4Output           bool
	PlotReference        bool
	PlotValue            bool
	PlotOtherText        bool
	PlotInvisibleText    bool
	PadsOnSilk           bool
	SubtractMaskFromSilk bool
	OutputFormat         int
	Mirror               bool
	DrillShape           int
	ScaleSelection       int
	OutputDirectory      string
}

// DefaultPlotParams returns pcbnew 4's plot settings for a new board.
func DefaultPlotParams() *PlotParams {
	return &PlotParams{
		LayerSelection:      "0x00030_80000001",
		UseGerberExtensions: true,
		ExcludeEdgeLayer:    true,
		LineWidth:           0.1,
		Mode:                1,
		HPGLPenNumber:       1,
		HPGLPenSpeed:        20,
		HPGLPenDiameter:     15,
		HPGLPenOverlay:      2,
		PlotReference:       true,
		PlotValue:           true,
		PlotOtherText:       true,
		OutputFormat:        1,
		DrillShape:          1,
		ScaleSelection:      1,
	}
}

var plotFields = []fieldSpec[PlotParams]{
	{Key: "layerselection", Ref: func(p *PlotParams) any { return &p.LayerSelection }},
	{Key: "usegerberextensions", Ref: func(p *PlotParams) any { return &p.UseGerberExtensions }, TrueFalse: true},
	{Key: "excludeedgelayer", Ref: func(p *PlotParams) any { return &p.ExcludeEdgeLayer }, TrueFalse: true},
	{Key: "linewidth", Ref: func(p *PlotParams) any { return &p.LineWidth }},
	{Key: "plotframeref", Ref: func(p *PlotParams) any { return &p.PlotFrameRef }, TrueFalse: true},
	{Key: "viasonmask", Ref: func(p *PlotParams) any { return &p.ViasOnMask }, TrueFalse: true},
	{Key: "mode", Ref: func(p *PlotParams) any { return &p.Mode }},
	{Key: "useauxorigin", Ref: func(p *PlotParams) any { return &p.UseAuxOrigin }, TrueFalse: true},
	{Key: "hpglpennumber", Ref: func(p *PlotParams) any { return &p.HPGLPenNumber }},
	{Key: "hpglpenspeed", Ref: func(p *PlotParams) any { return &p.HPGLPenSpeed }},
	{Key: "hpglpendiameter", Ref: func(p *PlotParams) any { return &p.HPGLPenDiameter }},
	{Key: "hpglpenoverlay", Ref: func(p *PlotParams) any { return &p.HPGLPenOverlay }},
	{Key: "psnegative", Ref: func(p *PlotParams) any { return &p.PSNegative }, TrueFalse: true},
	{Key: "psa4output", Ref: func(p *PlotParams) any { return &p.PSA4Output }, TrueFalse: true},
	{Key: "plotreference", Ref: func(p *PlotParams) any { return &p.PlotReference }, TrueFalse: true},
	{Key: "plotvalue", Ref: func(p *PlotParams) any { return &p.PlotValue }, TrueFalse: true},
	{Key: "plotothertext", Ref: func(p *PlotParams) any { return &p.PlotOtherText }, TrueFalse: true},
	{Key: "plotinvisibletext", Ref: func(p *PlotParams) any { return &p.PlotInvisibleText }, TrueFalse: true},
	{Key: "padsonsilk", Ref: func(p *PlotParams) any { return &p.PadsOnSilk }, TrueFalse: true},
	{Key: "subtractmaskfromsilk", Ref: func(p *PlotParams) any { return &p.SubtractMaskFromSilk }, TrueFalse: true},
	{Key: "outputformat", Ref: func(p *PlotParams) any { return &p.OutputFormat }},
	{Key: "mirror", Ref: func(p *PlotParams) any { return &p.Mirror }, TrueFalse: true},
	{Key: "drillshape", Ref: func(p *PlotParams) any { return &p.DrillShape }},
	{Key: "scaleselection", Ref: func(p *PlotParams) any { return &p.ScaleSelection }},
	{Key: "outputdirectory", Ref: func(p *PlotParams) any { return &p.OutputDirectory }},
}

func (p *PlotParams) write(w *writer, depth int) {
	w.line(depth)
	w.put("(pcbplotparams")
	writeFields(w, depth+1, plotFields, p)
	w.close(depth)
}

func buildPlotParams(s *plotParamsStmt) (*PlotParams, error) {
	p := DefaultPlotParams()
	params := make([]param, len(s.Items))
	for i, item := range s.Items {
		params[i] = param{Pos: item.Pos, Key: item.Key, Args: item.Args}
	}
	if err := applyParams("pcbplotparams", plotFields, p, params); err != nil {
		return nil, err
	}
	return p, nil
}

// NetClass is a named set of design rules and the nets it governs.
type NetClass struct {
	Name        string
	Description string
	Clearance   float64
	TraceWidth  float64
	ViaDia      float64
	ViaDrill    float64
	UViaDia     float64
	UViaDrill   float64
	Nets        []string // names of member nets, in source order
}

// NewNetClass returns a net class with pcbnew's default rules.
func NewNetClass(name, description string) *NetClass {
	return &NetClass{
		Name:        name,
		Description: description,
		Clearance:   0.2,
		TraceWidth:  0.25,
		ViaDia:      0.6,
		ViaDrill:    0.4,
		UViaDia:     0.3,
		UViaDrill:   0.1,
	}
}

// DefaultNetClass returns the class every board declares.
func DefaultNetClass() *NetClass {
	return NewNetClass("Default", "This is the default net class.")
}

// AddNet appends a member net by name.
func (nc *NetClass) AddNet(name string) {
	nc.Nets = append(nc.Nets, name)
}

var netClassFields = []fieldSpec[NetClass]{
	{Key: "clearance", Ref: func(nc *NetClass) any { return &nc.Clearance }},
	{Key: "trace_width", Ref: func(nc *NetClass) any { return &nc.TraceWidth }},
	{Key: "via_dia", Ref: func(nc *NetClass) any { return &nc.ViaDia }},
	{Key: "via_drill", Ref: func(nc *NetClass) any { return &nc.ViaDrill }},
	{Key: "uvia_dia", Ref: func(nc *NetClass) any { return &nc.UViaDia }},
	{Key: "uvia_drill", Ref: func(nc *NetClass) any { return &nc.UViaDrill }},
}

func (*NetClass) element() {}

// Render implements Element.
func (nc *NetClass) Render(depth int) (string, error) { return render(nc, depth) }

func (nc *NetClass) write(w *writer, depth int) {
	w.line(depth)
	w.put("(net_class ", w.required("net_class", "name", nc.Name), " ", w.str("net_class", nc.Description))
	writeFields(w, depth+1, netClassFields, nc)
	for _, name := range nc.Nets {
		w.line(depth + 1)
		w.put(list("add_net", w.str("add_net", name)))
	}
	w.close(depth)
}

func buildNetClass(s *netClassStmt) (*NetClass, error) {
	nc := NewNetClass(s.Name.Value, s.Description.Value)
	var params []param
	for _, item := range s.Items {
		if item.AddNet != nil {
			nc.AddNet(item.AddNet.Value)
			continue
		}
		params = append(params, param{Pos: item.Pos, Key: item.Key, Args: item.Args})
	}
	if err := applyParams("net_class", netClassFields, nc, params); err != nil {
		return nil, err
	}
	return nc, nil
}
