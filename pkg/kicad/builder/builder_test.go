package builder

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/pcb"
)

const mxLibrary = "../../../testdata/footprints/mx.pretty"

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Library = mxLibrary
	b, err := NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	return b
}

// mapLoader serves footprints from memory.
type mapLoader map[string]*pcb.Module

func (m mapLoader) Load(name string) (*pcb.Module, error) {
	mod, ok := m[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return mod.Clone(), nil
}

func TestConfigFootprint(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		w, h float64
		want string
	}{
		{"1u", 19, 19, "Cherry_MX_Matias_u1_NoSilk_Back"},
		{"1.25u", 23.75, 19, "Cherry_MX_Matias_u1.25_NoSilk_Back"},
		{"2u", 38, 19, "Cherry_MX_Matias_u2_NoSilk_Back"},
		{"3u", 57, 19, "Cherry_MX_Matias_u3_NoSilk_Back"},
		{"6.25u spacebar", 118.75, 19, "Cherry_MX_Matias_NoSilk_Back"},
		{"2u vertical", 19, 38, "Cherry_MX_Matias_NoSilk_Back"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Footprint(tt.w, tt.h); got != tt.want {
				t.Errorf("Footprint(%v, %v) = %q, want %q", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no thickness", func(c *Config) { c.Thickness = 0 }, true},
		{"no spacing", func(c *Config) { c.Spacing = -1 }, true},
		{"reference without verb", func(c *Config) { c.Reference = "SW" }, true},
		{"reference with two verbs", func(c *Config) { c.Reference = "SW%d_%d" }, true},
		{"reference with string verb", func(c *Config) { c.Reference = "SW%s" }, true},
		{"no default footprint", func(c *Config) { c.DefaultFootprint = "" }, true},
		{"bad rule", func(c *Config) { c.Footprints = append(c.Footprints, FootprintRule{Units: 0, Name: "x"}) }, true},
		{"no edge layer", func(c *Config) { c.EdgeLayer = "" }, true},
		{"negative edge width", func(c *Config) { c.EdgeWidth = -0.1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDoesNotModify(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EdgeLayer = ""
	cfg.EdgeWidth = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted an empty edge layer")
	}
	if cfg.EdgeLayer != "" || cfg.EdgeWidth != 0 {
		t.Errorf("Validate() changed edge settings to %q %v", cfg.EdgeLayer, cfg.EdgeWidth)
	}
}

func TestNewFillsEdgeDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EdgeLayer = ""
	cfg.EdgeWidth = 0

	b, err := New(cfg, mapLoader{}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.EdgeLayer != "" || cfg.EdgeWidth != 0 {
		t.Errorf("New() changed the caller's config to %q %v", cfg.EdgeLayer, cfg.EdgeWidth)
	}
	if err := b.AddEdgeCuts([]pcb.Position{{X: 0, Y: 0}, {X: 1, Y: 0}}); err != nil {
		t.Fatalf("AddEdgeCuts() error = %v", err)
	}
	line, ok := b.Document().Elements[len(b.Document().Elements)-1].(*pcb.GrLine)
	if !ok {
		t.Fatal("last element is not a gr_line")
	}
	if line.Layer != "Edge.Cuts" || line.Width != 0.15 {
		t.Errorf("edge line on %q width %v, want Edge.Cuts 0.15", line.Layer, line.Width)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	content := `{"thickness": 1.2, "reference": "K%d", "library": "keys.pretty"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Thickness != 1.2 || cfg.Reference != "K%d" || cfg.Library != "keys.pretty" {
		t.Errorf("LoadConfig() = %+v", cfg)
	}
	if cfg.Spacing != 19 || len(cfg.Footprints) != 9 {
		t.Errorf("LoadConfig() lost defaults: spacing %v, %d rules", cfg.Spacing, len(cfg.Footprints))
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"reference": "K"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("LoadConfig(invalid) expected error, got nil")
	}

	blank := filepath.Join(t.TempDir(), "blank.json")
	if err := os.WriteFile(blank, []byte(`{"edge_layer": "", "edge_width": 0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(blank)
	if err != nil {
		t.Fatalf("LoadConfig(blank edges) error = %v", err)
	}
	if cfg.EdgeLayer != "Edge.Cuts" || cfg.EdgeWidth != 0.15 {
		t.Errorf("LoadConfig() edge settings = %q %v, want defaults", cfg.EdgeLayer, cfg.EdgeWidth)
	}
}

func TestNewDefaults(t *testing.T) {
	b := newTestBuilder(t)
	doc := b.Document()

	if doc.Version != 4 || doc.Host.Version != "4.0.7" {
		t.Errorf("header = %d %+v", doc.Version, doc.Host)
	}
	if g := doc.General(); g == nil || g.Thickness != 1.6 {
		t.Errorf("General() = %+v, want thickness 1.6", g)
	}

	b.SetThickness(1.2)
	if g := b.Document().General(); g.Thickness != 1.2 {
		t.Errorf("SetThickness(1.2) left thickness %v", g.Thickness)
	}
}

func TestAddEdgeCuts(t *testing.T) {
	b := newTestBuilder(t)
	path := []pcb.Position{{X: 0, Y: 0}, {X: 95, Y: 0}, {X: 95, Y: 38}, {X: 0, Y: 38}}
	if err := b.AddEdgeCuts(path); err != nil {
		t.Fatalf("AddEdgeCuts() error = %v", err)
	}

	var lines []*pcb.GrLine
	for _, e := range b.Document().Elements {
		if l, ok := e.(*pcb.GrLine); ok {
			lines = append(lines, l)
		}
	}
	if len(lines) != len(path) {
		t.Fatalf("got %d lines, want %d", len(lines), len(path))
	}
	for i, l := range lines {
		want := pcb.GrLine{Start: path[i], End: path[(i+1)%len(path)], Layer: "Edge.Cuts", Width: 0.15}
		if *l != want {
			t.Errorf("line %d = %+v, want %+v", i, *l, want)
		}
	}

	if err := b.AddEdgeCuts(path[:1]); err == nil {
		t.Error("AddEdgeCuts() with one point expected error")
	}

	bbox := b.Document().EdgeBounds("Edge.Cuts")
	if bbox.Width() != 95 || bbox.Height() != 38 {
		t.Errorf("EdgeBounds() = %+v", bbox)
	}
}

func TestAddSwitch(t *testing.T) {
	b := newTestBuilder(t)

	keys := []struct {
		x, y, w, h, r float64
		footprint     string
	}{
		{9.5, 9.5, 19, 19, 0, "Cherry_MX_Matias_u1_NoSilk_Back"},
		{30.875, 9.5, 23.75, 19, 0, "Cherry_MX_Matias_u1.25_NoSilk_Back"},
		{9.5, 38, 19, 38, 15, "Cherry_MX_Matias_NoSilk_Back"},
	}
	for i, k := range keys {
		m, err := b.AddSwitch(k.x, k.y, k.w, k.h, k.r)
		if err != nil {
			t.Fatalf("AddSwitch(%d) error = %v", i, err)
		}
		if m.Name != k.footprint {
			t.Errorf("switch %d footprint = %q, want %q", i, m.Name, k.footprint)
		}
		if want := "SW" + string(rune('0'+i)); m.Reference() != want {
			t.Errorf("switch %d reference = %q, want %q", i, m.Reference(), want)
		}
		if m.At.X != k.x || m.At.Y != k.y || m.At.Angle != pcb.Angle(-k.r) {
			t.Errorf("switch %d at %+v", i, m.At)
		}
	}

	doc := b.Document()
	if got := len(doc.Modules()); got != 3 {
		t.Errorf("len(Modules()) = %d, want 3", got)
	}
	if g := doc.General(); g.Modules != 3 || g.Nets != 1 {
		t.Errorf("General() = %+v, want 3 modules and 1 net", g)
	}
}

func TestAddSwitchMissingFootprint(t *testing.T) {
	b, err := New(DefaultConfig(), mapLoader{}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := b.AddSwitch(0, 0, 19, 19, 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("AddSwitch() error = %v, want os.ErrNotExist", err)
	}
	if b.switches != 0 {
		t.Errorf("a failed switch consumed reference %d", b.switches)
	}
}

func TestPlaceDoesNotShareLibraryModules(t *testing.T) {
	base := &pcb.Module{Name: "KEY", Layer: "F.Cu"}
	base.Add(&pcb.FpText{Kind: "reference", Text: "REF**", Layer: "F.SilkS"})
	lib := mapLoader{"KEY": base}

	cfg := DefaultConfig()
	cfg.DefaultFootprint = "KEY"
	cfg.Footprints = nil
	b, err := New(cfg, lib, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := b.AddSwitch(float64(i)*19, 0, 19, 19, 0); err != nil {
			t.Fatalf("AddSwitch() error = %v", err)
		}
	}

	mods := b.Document().Modules()
	if mods[0].Reference() != "SW0" || mods[1].Reference() != "SW1" {
		t.Errorf("references = %q, %q", mods[0].Reference(), mods[1].Reference())
	}
	if base.Reference() != "REF**" {
		t.Errorf("library module modified: %q", base.Reference())
	}
}

func TestRenderRoundTrip(t *testing.T) {
	b := newTestBuilder(t)
	if _, err := b.AddSwitch(9.5, 9.5, 19, 19, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddEdgeCuts([]pcb.Position{{X: 0, Y: 0}, {X: 19, Y: 0}, {X: 19, Y: 19}, {X: 0, Y: 19}}); err != nil {
		t.Fatal(err)
	}

	out, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "(fp_text reference SW0 ") {
		t.Errorf("Render() missing SW0 reference:\n%s", out)
	}

	doc, err := pcb.ParseString(out)
	if err != nil {
		t.Fatalf("ParseString(Render()) error = %v", err)
	}
	if !reflect.DeepEqual(doc, b.Document()) {
		t.Error("ParseString(Render()) differs from the built document")
	}
}

func TestApplyAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "layout.json")
	layout := `{
  "keys": [
    {"x": 9.5, "y": 9.5, "w": 19, "h": 19},
    {"x": 28.5, "y": 9.5, "w": 19, "h": 19, "r": 10}
  ],
  "outline": [[0, 0], [38, 0], [38, 19], [0, 19]]
}`
	if err := os.WriteFile(layoutPath, []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLayout(layoutPath)
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}
	b := newTestBuilder(t)
	if err := b.Apply(l); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	out := filepath.Join(dir, "kb.kicad_pcb")
	if err := b.WriteFile(out); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	doc, err := pcb.ParseFile(out)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	counts := doc.Counts()
	if counts["module"] != 2 || counts["gr_line"] != 4 {
		t.Errorf("Counts() = %v, want 2 modules and 4 lines", counts)
	}
	if g := doc.General(); g.Drawings != 4 || g.Modules != 2 {
		t.Errorf("General() = %+v", g)
	}
}

func TestLoadLayoutErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "keys:"},
		{"zero width", `{"keys": [{"x": 0, "y": 0, "w": 0, "h": 19}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadLayout(path); err == nil {
				t.Error("LoadLayout() expected error, got nil")
			}
		})
	}
}
