// Package sexp provides the value types and text formatting shared by the
// KiCad board codec: coordinates, sizes, 3D vectors, bounding boxes, and
// the quoting and number rules used when generating statements.
package sexp

import "math"

// Position is a 2D coordinate in millimetres.
type Position struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rotate rotates p about the origin by a degrees, using KiCad's
// clockwise-positive convention (Y grows downwards).
func (p Position) Rotate(a Angle) Position {
	if a == 0 {
		return p
	}
	rad := -float64(a) * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Position{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// Angle is a rotation in degrees
type Angle float64

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// Size represents dimensions
type Size struct {
	Width  float64
	Height float64
}

// Vec3 is a 3D vector used by model placement (offset, scale, rotation).
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Position // Minimum (top-left) corner
	Max Position // Maximum (bottom-right) corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: math.Inf(1), Y: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.Min.X && pos.X <= bb.Max.X &&
		pos.Y >= bb.Min.Y && pos.Y <= bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(pos Position) {
	bb.Min.X = math.Min(bb.Min.X, pos.X)
	bb.Min.Y = math.Min(bb.Min.Y, pos.Y)
	bb.Max.X = math.Max(bb.Max.X, pos.X)
	bb.Max.Y = math.Max(bb.Max.Y, pos.Y)
}

// ExpandBox expands to include another bounding box
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}

// Center returns the center point of the bounding box
func (bb BoundingBox) Center() Position {
	return Position{
		X: (bb.Min.X + bb.Max.X) / 2.0,
		Y: (bb.Min.Y + bb.Max.Y) / 2.0,
	}
}
