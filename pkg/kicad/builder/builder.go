// Package builder assembles keyboard boards: switch footprints placed from
// a footprint library and a closed Edge.Cuts outline, on top of the
// skeleton pcbnew writes for a new board.
package builder

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/footprint"
	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/pcb"
)

// Loader supplies footprints by name. Implementations must return a module
// the caller may modify.
type Loader interface {
	Load(name string) (*pcb.Module, error)
}

// Builder accumulates board elements.
type Builder struct {
	cfg    *Config
	lib    Loader
	doc    *pcb.Document
	logger *slog.Logger

	switches int // next switch reference number
}

// New returns a builder for a new board. An unset edge layer or width in
// cfg takes its DefaultConfig value; cfg itself is not modified. Pass nil
// for logger to disable logging.
func New(cfg *Config, lib Loader, logger *slog.Logger) (*Builder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lib == nil {
		return nil, fmt.Errorf("builder: no footprint library")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := &Builder{
		cfg:    cfg,
		lib:    lib,
		doc:    pcb.NewDocument(),
		logger: logger,
	}
	b.SetThickness(cfg.Thickness)
	return b, nil
}

// NewFromConfig opens the footprint library named by cfg and returns a
// builder over it.
func NewFromConfig(cfg *Config, logger *slog.Logger) (*Builder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lib, err := footprint.Open(cfg.Library, logger)
	if err != nil {
		return nil, err
	}
	return New(cfg, lib, logger)
}

// SetThickness sets the board thickness in the general block.
func (b *Builder) SetThickness(mm float64) {
	g := b.doc.General()
	if g == nil {
		g = pcb.DefaultGeneral()
		b.doc.Elements = append([]pcb.Element{g}, b.doc.Elements...)
	}
	g.Thickness = mm
}

// AddLine adds a board line on layer using the configured edge width.
func (b *Builder) AddLine(start, end pcb.Position, layer string) {
	b.doc.Add(&pcb.GrLine{Start: start, End: end, Layer: layer, Width: b.cfg.EdgeWidth})
}

// AddEdgeCuts outlines the board with a closed polygon through path: one
// line per consecutive pair and a last line back to the first point.
func (b *Builder) AddEdgeCuts(path []pcb.Position) error {
	if len(path) < 2 {
		return fmt.Errorf("builder: edge cuts need at least 2 points, got %d", len(path))
	}
	for i := 0; i < len(path)-1; i++ {
		b.AddLine(path[i], path[i+1], b.cfg.EdgeLayer)
	}
	b.AddLine(path[len(path)-1], path[0], b.cfg.EdgeLayer)
	b.logger.Debug("edge cuts added", slog.Int("points", len(path)))
	return nil
}

// Place adds the named footprint at (x, y) rotated by angle degrees and
// labelled ref.
func (b *Builder) Place(name string, x, y float64, angle pcb.Angle, ref string) (*pcb.Module, error) {
	m, err := b.lib.Load(name)
	if err != nil {
		return nil, err
	}
	placed := m.Place(x, y, angle, ref)
	b.doc.Add(placed)
	b.logger.Debug("footprint placed",
		slog.String("footprint", name),
		slog.String("ref", ref),
		slog.Float64("x", x),
		slog.Float64("y", y))
	return placed, nil
}

// AddSwitch places a key switch centred at (x, y) for a key w by h mm
// rotated r degrees counter-clockwise. References count up from zero.
func (b *Builder) AddSwitch(x, y, w, h, r float64) (*pcb.Module, error) {
	ref := fmt.Sprintf(b.cfg.Reference, b.switches)
	m, err := b.Place(b.cfg.Footprint(w, h), x, y, pcb.Angle(-r), ref)
	if err != nil {
		return nil, fmt.Errorf("builder: switch %s: %w", ref, err)
	}
	b.switches++
	return m, nil
}

// Apply adds every switch and the outline of a layout.
func (b *Builder) Apply(l *Layout) error {
	for _, k := range l.Keys {
		if _, err := b.AddSwitch(k.X, k.Y, k.W, k.H, k.R); err != nil {
			return err
		}
	}
	if len(l.Outline) > 0 {
		path := make([]pcb.Position, len(l.Outline))
		for i, p := range l.Outline {
			path[i] = pcb.Position{X: p[0], Y: p[1]}
		}
		return b.AddEdgeCuts(path)
	}
	return nil
}

// Document returns the board with its general block brought up to date.
func (b *Builder) Document() *pcb.Document {
	b.refreshGeneral()
	return b.doc
}

// Render returns the board text.
func (b *Builder) Render() (string, error) {
	return b.Document().Render()
}

// WriteFile writes the board to path.
func (b *Builder) WriteFile(path string) error {
	s, err := b.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	b.logger.Info("board written", slog.String("path", path), slog.Int("switches", b.switches))
	return nil
}

// refreshGeneral recomputes the statistics pcbnew keeps in (general).
func (b *Builder) refreshGeneral() {
	g := b.doc.General()
	if g == nil {
		return
	}
	counts := b.doc.Counts()
	g.Drawings = counts["gr_line"] + counts["gr_circle"] + counts["gr_arc"]
	g.Tracks = counts["segment"] + counts["via"]
	g.Modules = counts["module"]
	g.Nets = counts["net"]
	if bbox := b.doc.BoundingBox(); !bbox.IsEmpty() {
		g.Area = pcb.Area{X1: bbox.Min.X, Y1: bbox.Min.Y, X2: bbox.Max.X, Y2: bbox.Max.Y}
	}
}
