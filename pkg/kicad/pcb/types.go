package pcb

import (
	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/sexp"
)

// Shared types (aliases to sexp package)
type Position = sexp.Position
type Angle = sexp.Angle
type PositionAngle = sexp.PositionAngle
type Size = sexp.Size
type Vec3 = sexp.Vec3
type BoundingBox = sexp.BoundingBox

// Re-export BoundingBox constructor
var NewBoundingBox = sexp.NewBoundingBox

// Ptr returns a pointer to v, for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// Host names the program that wrote the board, e.g. (host pcbnew 4.0.7).
type Host struct {
	Name    string
	Version string
}

// Net is a top-level net declaration: (net 3 GND)
type Net struct {
	Number int    // Net number (ordinal, 0 is unconnected)
	Name   string // Net name, may be empty
}

// NetRef is a net reference inside a pad: (net 2 VO)
type NetRef struct {
	Number int
	Name   string
}

// Page is the sheet size: (page A4)
type Page struct {
	Size string
}

// Area is the board extent recorded in the general block.
type Area struct {
	X1, Y1, X2, Y2 float64
}

// LayerDef is one entry of the layer list: (0 F.Cu signal [user-name])
type LayerDef struct {
	Number   int     // Layer number (ordinal)
	Name     string  // Layer name (e.g., "F.Cu", "B.SilkS")
	Kind     string  // Layer type (e.g., "signal", "user")
	UserName *string // Optional user-visible name
}

// LayerList is the board layer table: (layers (0 F.Cu signal) ...)
type LayerList struct {
	Layers []LayerDef
}

// DefaultLayerList returns the two-layer stack pcbnew 4 writes for a new
// board.
func DefaultLayerList() *LayerList {
	return &LayerList{Layers: []LayerDef{
		{Number: 0, Name: "F.Cu", Kind: "signal"},
		{Number: 31, Name: "B.Cu", Kind: "signal"},
		{Number: 32, Name: "B.Adhes", Kind: "user"},
		{Number: 33, Name: "F.Adhes", Kind: "user"},
		{Number: 34, Name: "B.Paste", Kind: "user"},
		{Number: 35, Name: "F.Paste", Kind: "user"},
		{Number: 36, Name: "B.SilkS", Kind: "user"},
		{Number: 37, Name: "F.SilkS", Kind: "user"},
		{Number: 38, Name: "B.Mask", Kind: "user"},
		{Number: 39, Name: "F.Mask", Kind: "user"},
		{Number: 40, Name: "Dwgs.User", Kind: "user"},
		{Number: 41, Name: "Cmts.User", Kind: "user"},
		{Number: 42, Name: "Eco1.User", Kind: "user"},
		{Number: 43, Name: "Eco2.User", Kind: "user"},
		{Number: 44, Name: "Edge.Cuts", Kind: "user"},
		{Number: 45, Name: "Margin", Kind: "user"},
		{Number: 46, Name: "B.CrtYd", Kind: "user"},
		{Number: 47, Name: "F.CrtYd", Kind: "user"},
		{Number: 48, Name: "B.Fab", Kind: "user"},
		{Number: 49, Name: "F.Fab", Kind: "user"},
	}}
}

// LayerMap provides efficient lookup of layers by number or name
type LayerMap struct {
	byNumber map[int]*LayerDef
	byName   map[string]*LayerDef
}

// NewLayerMap creates a LayerMap from a slice of layers
func NewLayerMap(layers []LayerDef) *LayerMap {
	lm := &LayerMap{
		byNumber: make(map[int]*LayerDef),
		byName:   make(map[string]*LayerDef),
	}

	for i := range layers {
		layer := &layers[i]
		lm.byNumber[layer.Number] = layer
		lm.byName[layer.Name] = layer
	}

	return lm
}

// GetByName retrieves a layer by its name (e.g., "F.Cu")
func (lm *LayerMap) GetByName(name string) (*LayerDef, bool) {
	layer, ok := lm.byName[name]
	return layer, ok
}

// GetByNumber retrieves a layer by its number
func (lm *LayerMap) GetByNumber(num int) (*LayerDef, bool) {
	layer, ok := lm.byNumber[num]
	return layer, ok
}

// IsCopperLayer checks if a layer is a copper layer
func (lm *LayerMap) IsCopperLayer(name string) bool {
	layer, ok := lm.byName[name]
	if !ok {
		return false
	}
	return layer.Kind == "signal" || layer.Kind == "power" || layer.Kind == "mixed"
}

// NetMap provides efficient lookup of nets by number or name
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []*Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}

	for _, net := range nets {
		nm.byNumber[net.Number] = net
		// Only index non-empty names
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}

	return nm
}

// GetByName retrieves a net by its name (e.g., "GND", "+5V")
func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// IsUnconnected checks if a net number represents an unconnected net
// In KiCad, net 0 is reserved for unconnected pins
func (nm *NetMap) IsUnconnected(num int) bool {
	return num == 0
}
