package pcb

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp/kicadsexp"
)

// The grammar is written as participle struct tags. Every statement has the
// shape LParen "keyword" parts... RParen. Blocks whose fields may appear in
// any order (or not at all) are a union repeated with @@*; construction
// enforces that each field appears at most once. Keywords match in any
// letter case.

var parserOptions = []participle.Option{
	participle.Lexer(kicadsexp.Definition{}),
	participle.CaseInsensitive("Ident", "Bool", "Hex"),
	participle.UseLookahead(2),
}

// Parsers are built once and shared; they hold no per-parse state.
var (
	documentParser   = participle.MustBuild[documentStmt](parserOptions...)
	moduleParser     = participle.MustBuild[moduleStmt](parserOptions...)
	elementParser    = participle.MustBuild[elementStmt](parserOptions...)
	moduleItemParser = participle.MustBuild[moduleChildStmt](parserOptions...)
)

// (kicad_pcb (version 4) (host pcbnew 4.0.7) elements...)
type documentStmt struct {
	Pos   lexer.Position
	Items []*documentItem `LParen "kicad_pcb" @@* RParen`
}

type documentItem struct {
	Pos     lexer.Position
	Version *kicadsexp.IntValue `  LParen "version" @Uint RParen`
	Host    *hostStmt           `| @@`
	Element *elementStmt        `| @@`
}

type hostStmt struct {
	Pos  lexer.Position
	Args []*kicadsexp.Atom `LParen "host" @@* RParen`
}

type elementStmt struct {
	Net      *netStmt       `  @@`
	NetClass *netClassStmt  `| @@`
	General  *generalStmt   `| @@`
	Setup    *setupStmt     `| @@`
	Page     *pageStmt      `| @@`
	Layers   *layerListStmt `| @@`
	GrLine   *grLineStmt    `| @@`
	GrCircle *grCircleStmt  `| @@`
	GrArc    *grArcStmt     `| @@`
	Via      *viaStmt       `| @@`
	Segment  *segmentStmt   `| @@`
	Module   *moduleStmt    `| @@`
}

// Shared value shapes.

type xy struct {
	X float64 `@(Float | Uint | Int)`
	Y float64 `@(Float | Uint | Int)`
}

type xyz struct {
	X float64 `@(Float | Uint | Int)`
	Y float64 `@(Float | Uint | Int)`
	Z float64 `@(Float | Uint | Int)`
}

type atStmt struct {
	Pos   lexer.Position
	X     float64  `LParen "at" @(Float | Uint | Int)`
	Y     float64  `@(Float | Uint | Int)`
	Angle *float64 `@(Float | Uint | Int)? RParen`
}

// (net 3 GND) at top level and in pads, (net 3) in vias and segments.
type netStmt struct {
	Pos  lexer.Position
	Args []*kicadsexp.Atom `LParen "net" @@* RParen`
}

type layersStmt struct {
	Pos   lexer.Position
	Names []*kicadsexp.Text `LParen "layers" @@+ RParen`
}

// (drill 0.8), (drill oval 1 1.5), (drill 0.8 (offset 0 0.1))
type drillStmt struct {
	Pos      lexer.Position
	Oval     bool     `LParen "drill" @"oval"?`
	Diameter float64  `@(Float | Uint | Int)`
	Height   *float64 `@(Float | Uint | Int)?`
	Offset   *xy      `( LParen "offset" @@ RParen )? RParen`
}

// Net classes and header blocks.

type netClassStmt struct {
	Pos         lexer.Position
	Name        kicadsexp.Text  `LParen "net_class" @@`
	Description kicadsexp.Text  `@@`
	Items       []*netClassItem `@@* RParen`
}

type netClassItem struct {
	Pos    lexer.Position
	Key    string            `  LParen @( "clearance" | "trace_width" | "via_dia" | "via_drill" | "uvia_dia" | "uvia_drill" )`
	Args   []*kicadsexp.Atom `  @@* RParen`
	AddNet *kicadsexp.Text   `| LParen "add_net" @@ RParen`
}

type generalStmt struct {
	Pos   lexer.Position
	Items []*generalItem `LParen "general" @@* RParen`
}

type generalItem struct {
	Pos  lexer.Position
	Key  string            `LParen @( "links" | "no_connects" | "area" | "thickness" | "drawings" | "tracks" | "zones" | "modules" | "nets" )`
	Args []*kicadsexp.Atom `@@* RParen`
}

type setupStmt struct {
	Pos   lexer.Position
	Items []*setupItem `LParen "setup" @@* RParen`
}

type setupItem struct {
	Pos  lexer.Position
	Plot *plotParamsStmt   `  @@`
	Key  string            `| LParen @( "last_trace_width" | "trace_clearance" | "zone_clearance" | "zone_45_only" | "trace_min" | "segment_width" | "edge_width" | "via_size" | "via_dia" | "via_drill" | "via_min_size" | "via_min_drill" | "uvia_size" | "uvia_dia" | "uvia_drill" | "uvias_allowed" | "uvia_min_size" | "uvia_min_drill" | "pcb_text_width" | "pcb_text_size" | "mod_edge_width" | "mod_text_size" | "mod_text_width" | "pad_size" | "pad_drill" | "pad_to_mask_clearance" | "aux_axis_origin" | "visible_elements" )`
	Args []*kicadsexp.Atom `  @@* RParen`
}

type plotParamsStmt struct {
	Pos   lexer.Position
	Items []*plotItem `LParen "pcbplotparams" @@* RParen`
}

type plotItem struct {
	Pos  lexer.Position
	Key  string            `LParen @( "layerselection" | "usegerberextensions" | "excludeedgelayer" | "linewidth" | "plotframeref" | "viasonmask" | "mode" | "useauxorigin" | "hpglpennumber" | "hpglpenspeed" | "hpglpendiameter" | "hpglpenoverlay" | "psnegative" | "psa4output" | "plotreference" | "plotvalue" | "plotothertext" | "plotinvisibletext" | "padsonsilk" | "subtractmaskfromsilk" | "outputformat" | "mirror" | "drillshape" | "scaleselection" | "outputdirectory" )`
	Args []*kicadsexp.Atom `@@* RParen`
}

type pageStmt struct {
	Pos  lexer.Position
	Size kicadsexp.Text `LParen "page" @@ RParen`
}

// (layers (0 F.Cu signal) (31 B.Cu signal) ...)
type layerListStmt struct {
	Pos  lexer.Position
	Defs []*layerDefStmt `LParen "layers" @@* RParen`
}

type layerDefStmt struct {
	Pos  lexer.Position
	Args []*kicadsexp.Atom `LParen @@* RParen`
}

// Graphic primitives. Board graphics and footprint lines share one
// parameter union; construction rejects parameters a statement does not
// take.

type drawItem struct {
	Pos    lexer.Position
	Start  *xy                 `  LParen "start" @@ RParen`
	End    *xy                 `| LParen "end" @@ RParen`
	Center *xy                 `| LParen "center" @@ RParen`
	Angle  *float64            `| LParen "angle" @(Float | Uint | Int) RParen`
	Layer  *kicadsexp.Text     `| LParen "layer" @@ RParen`
	Width  *float64            `| LParen "width" @(Float | Uint | Int) RParen`
	TStamp *kicadsexp.HexValue `| LParen "tstamp" @(Hex | Uint | Ident) RParen`
}

type grLineStmt struct {
	Pos   lexer.Position
	Items []*drawItem `LParen "gr_line" @@* RParen`
}

type grCircleStmt struct {
	Pos   lexer.Position
	Items []*drawItem `LParen "gr_circle" @@* RParen`
}

type grArcStmt struct {
	Pos   lexer.Position
	Items []*drawItem `LParen "gr_arc" @@* RParen`
}

type fpLineStmt struct {
	Pos   lexer.Position
	Items []*drawItem `LParen "fp_line" @@* RParen`
}

// Tracks.

type viaStmt struct {
	Pos   lexer.Position
	Items []*viaItem `LParen "via" @@* RParen`
}

type viaItem struct {
	Pos    lexer.Position
	At     *xy                 `  LParen "at" @@ RParen`
	Size   *float64            `| LParen "size" @(Float | Uint | Int) RParen`
	Drill  *drillStmt          `| @@`
	Layers *layersStmt         `| @@`
	Net    *netStmt            `| @@`
	TStamp *kicadsexp.HexValue `| LParen "tstamp" @(Hex | Uint | Ident) RParen`
}

type segmentStmt struct {
	Pos   lexer.Position
	Items []*segmentItem `LParen "segment" @@* RParen`
}

type segmentItem struct {
	Pos    lexer.Position
	Start  *xy                 `  LParen "start" @@ RParen`
	End    *xy                 `| LParen "end" @@ RParen`
	Width  *float64            `| LParen "width" @(Float | Uint | Int) RParen`
	Layer  *kicadsexp.Text     `| LParen "layer" @@ RParen`
	Net    *netStmt            `| @@`
	TStamp *kicadsexp.HexValue `| LParen "tstamp" @(Hex | Uint | Ident) RParen`
}

// Footprint modules.

type moduleStmt struct {
	Pos    lexer.Position
	Name   kicadsexp.Text `LParen "module" @@`
	Locked bool           `@"locked"?`
	Items  []*moduleItem  `@@* RParen`
}

type moduleItem struct {
	Pos    lexer.Position
	Layer  *kicadsexp.Text     `  LParen "layer" @@ RParen`
	TEdit  *kicadsexp.HexValue `| LParen "tedit" @(Hex | Uint | Ident) RParen`
	TStamp *kicadsexp.HexValue `| LParen "tstamp" @(Hex | Uint | Ident) RParen`
	At     *atStmt             `| @@`
	Descr  *kicadsexp.Text     `| LParen "descr" @@ RParen`
	Tags   *kicadsexp.Text     `| LParen "tags" @@ RParen`
	Attr   *kicadsexp.Text     `| LParen "attr" @@ RParen`
	Child  *moduleChildStmt    `| @@`
}

type moduleChildStmt struct {
	Text  *fpTextStmt `  @@`
	Line  *fpLineStmt `| @@`
	Pad   *padStmt    `| @@`
	Model *modelStmt  `| @@`
}

// (fp_text reference REF** (at 0 -1.65) (layer F.SilkS) hide (effects ...))
type fpTextStmt struct {
	Pos   lexer.Position
	Kind  string         `LParen "fp_text" @Ident`
	Text  kicadsexp.Text `@@`
	Items []*fpTextItem  `@@* RParen`
}

type fpTextItem struct {
	Pos     lexer.Position
	At      *atStmt         `  @@`
	Layer   *kicadsexp.Text `| LParen "layer" @@ RParen`
	Effects *effectsStmt    `| @@`
	Hide    bool            `| @"hide"`
}

type effectsStmt struct {
	Pos   lexer.Position
	Items []*effectsItem `LParen "effects" @@* RParen`
}

type effectsItem struct {
	Pos     lexer.Position
	Font    *fontStmt    `  @@`
	Justify *justifyStmt `| @@`
	Hide    bool         `| @"hide"`
}

type fontStmt struct {
	Pos   lexer.Position
	Items []*fontItem `LParen "font" @@* RParen`
}

type fontItem struct {
	Pos       lexer.Position
	Size      *xy      `  LParen "size" @@ RParen`
	Thickness *float64 `| LParen "thickness" @(Float | Uint | Int) RParen`
	Italic    bool     `| @"italic"`
	Bold      bool     `| @"bold"`
}

type justifyStmt struct {
	Pos    lexer.Position
	Values []string `LParen "justify" @Ident* RParen`
}

// (pad 1 thru_hole rect (at -0.95 0) (size 0.7 1.3) (drill 0.3) ...)
type padStmt struct {
	Pos   lexer.Position
	Args  []*kicadsexp.Atom `LParen "pad" @@*`
	Items []*padItem        `@@* RParen`
}

type padItem struct {
	Pos                    lexer.Position
	At                     *atStmt     `  @@`
	Size                   *xy         `| LParen "size" @@ RParen`
	RectDelta              *xy         `| LParen "rect_delta" @@ RParen`
	Drill                  *drillStmt  `| @@`
	Layers                 *layersStmt `| @@`
	Net                    *netStmt    `| @@`
	SolderMaskMargin       *float64    `| LParen "solder_mask_margin" @(Float | Uint | Int) RParen`
	SolderPasteMargin      *float64    `| LParen "solder_paste_margin" @(Float | Uint | Int) RParen`
	SolderPasteMarginRatio *float64    `| LParen "solder_paste_margin_ratio" @(Float | Uint | Int) RParen`
}

// (model path (at (xyz 0 0 0)) (scale (xyz 1 1 1)) (rotate (xyz 0 0 0)))
type modelStmt struct {
	Pos   lexer.Position
	Path  kicadsexp.Text `LParen "model" @@`
	Items []*modelItem   `@@* RParen`
}

type modelItem struct {
	Pos    lexer.Position
	At     *xyz `  LParen "at" LParen "xyz" @@ RParen RParen`
	Offset *xyz `| LParen "offset" LParen "xyz" @@ RParen RParen`
	Scale  *xyz `| LParen "scale" LParen "xyz" @@ RParen RParen`
	Rotate *xyz `| LParen "rotate" LParen "xyz" @@ RParen RParen`
}
