package builder

import (
	"encoding/json"
	"fmt"
	"os"
)

// Key is one switch position in a layout, in mm. X and Y are the key
// centre; R is the rotation in degrees, counter-clockwise.
type Key struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
	R float64 `json:"r,omitempty"`
}

// Layout lists the keys of a board and its outline polygon.
type Layout struct {
	Keys    []Key        `json:"keys"`
	Outline [][2]float64 `json:"outline"`
}

// LoadLayout reads a JSON layout file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	for i, k := range l.Keys {
		if k.W <= 0 || k.H <= 0 {
			return nil, fmt.Errorf("layout %s: key %d has non-positive size %vx%v", path, i, k.W, k.H)
		}
	}
	return &l, nil
}
