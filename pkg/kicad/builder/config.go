package builder

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// FootprintRule selects a switch footprint by key width in units (1u, 1.25u...).
type FootprintRule struct {
	Units float64 `json:"units"`
	Name  string  `json:"name"`
}

// Config controls how a keyboard board is assembled.
type Config struct {
	Thickness float64 `json:"thickness"` // Board thickness in mm (default: 1.6)

	// Footprint selection
	Library          string          `json:"library"`           // .pretty directory holding the switch footprints
	DefaultFootprint string          `json:"default_footprint"` // Used when no rule matches
	Footprints       []FootprintRule `json:"footprints"`

	Reference string  `json:"reference"` // fmt pattern with one %d (default: "SW%d")
	Spacing   float64 `json:"spacing"`   // Size of 1u in mm (default: 19)

	EdgeLayer string  `json:"edge_layer"` // default: Edge.Cuts
	EdgeWidth float64 `json:"edge_width"` // default: 0.15
}

// DefaultConfig returns a Config for Cherry MX switches on 19 mm centres.
func DefaultConfig() *Config {
	return &Config{
		Thickness:        1.6,
		Library:          "mx.pretty",
		DefaultFootprint: "Cherry_MX_Matias_NoSilk_Back",
		Footprints: []FootprintRule{
			{Units: 1, Name: "Cherry_MX_Matias_u1_NoSilk_Back"},
			{Units: 1.25, Name: "Cherry_MX_Matias_u1.25_NoSilk_Back"},
			{Units: 1.5, Name: "Cherry_MX_Matias_u1.5_NoSilk_Back"},
			{Units: 1.75, Name: "Cherry_MX_Matias_u1.75_NoSilk_Back"},
			{Units: 2, Name: "Cherry_MX_Matias_u2_NoSilk_Back"},
			{Units: 2.25, Name: "Cherry_MX_Matias_u2.25_NoSilk_Back"},
			{Units: 2.5, Name: "Cherry_MX_Matias_u2.5_NoSilk_Back"},
			{Units: 2.75, Name: "Cherry_MX_Matias_u2.75_NoSilk_Back"},
			{Units: 3, Name: "Cherry_MX_Matias_u3_NoSilk_Back"},
		},
		Reference: "SW%d",
		Spacing:   19,
		EdgeLayer: "Edge.Cuts",
		EdgeWidth: 0.15,
	}
}

// LoadConfig reads a JSON config file. Fields the file leaves out keep
// their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Thickness <= 0 {
		return fmt.Errorf("thickness must be positive, got %v", c.Thickness)
	}
	if c.Spacing <= 0 {
		return fmt.Errorf("spacing must be positive, got %v", c.Spacing)
	}
	if c.DefaultFootprint == "" {
		return fmt.Errorf("default_footprint is required")
	}
	if strings.Count(c.Reference, "%") != 1 || !strings.Contains(c.Reference, "%d") {
		return fmt.Errorf("reference %q must contain exactly one %%d", c.Reference)
	}
	if c.EdgeLayer == "" {
		return fmt.Errorf("edge_layer is required")
	}
	if c.EdgeWidth <= 0 {
		return fmt.Errorf("edge_width must be positive, got %v", c.EdgeWidth)
	}
	for _, r := range c.Footprints {
		if r.Units <= 0 || r.Name == "" {
			return fmt.Errorf("invalid footprint rule %+v", r)
		}
	}
	return nil
}

// withDefaults returns a copy of c with an empty edge layer or width
// replaced by the DefaultConfig value.
func (c *Config) withDefaults() *Config {
	out := *c
	out.Footprints = append([]FootprintRule(nil), c.Footprints...)
	def := DefaultConfig()
	if out.EdgeLayer == "" {
		out.EdgeLayer = def.EdgeLayer
	}
	if out.EdgeWidth == 0 {
		out.EdgeWidth = def.EdgeWidth
	}
	return &out
}

// Footprint returns the footprint for a key of the given size in mm. Rules
// apply only to keys one unit tall; anything else gets DefaultFootprint.
func (c *Config) Footprint(w, h float64) string {
	units, tall := w/c.Spacing, h/c.Spacing
	if !near(tall, 1) {
		return c.DefaultFootprint
	}
	for _, r := range c.Footprints {
		if near(units, r.Units) {
			return r.Name
		}
	}
	return c.DefaultFootprint
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
