package pcb

import "math"

// BoundingBox calculates the bounding box of the entire board
// Includes tracks, vias, module pads and board graphics
func (d *Document) BoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, e := range d.Elements {
		switch el := e.(type) {
		case *Segment:
			if el.Start != nil {
				bbox.Expand(*el.Start)
			}
			if el.End != nil {
				bbox.Expand(*el.End)
			}

		case *Via:
			if el.At == nil {
				continue
			}
			// Vias have a size, so expand by radius
			radius := 0.0
			if el.Size != nil {
				radius = *el.Size / 2.0
			}
			bbox.Expand(Position{X: el.At.X - radius, Y: el.At.Y - radius})
			bbox.Expand(Position{X: el.At.X + radius, Y: el.At.Y + radius})

		case *Module:
			bbox.ExpandBox(el.BoundingBox())

		case *GrLine:
			bbox.Expand(el.Start)
			bbox.Expand(el.End)

		case *GrCircle:
			// Calculate radius from center to end point
			dx := el.End.X - el.Center.X
			dy := el.End.Y - el.Center.Y
			radius := math.Sqrt(dx*dx + dy*dy)
			bbox.Expand(Position{X: el.Center.X - radius, Y: el.Center.Y - radius})
			bbox.Expand(Position{X: el.Center.X + radius, Y: el.Center.Y + radius})

		case *GrArc:
			// Start is the arc center; include both endpoints of the sweep.
			// This is approximate but good enough for bounding box
			bbox.Expand(el.End)
			bbox.Expand(el.End.Sub(el.Start).Rotate(Angle(el.Angle)).Add(el.Start))
		}
	}

	return bbox
}

// EdgeBounds returns the bounding box of the graphic lines on layer, which
// for Edge.Cuts is the board outline.
func (d *Document) EdgeBounds(layer string) BoundingBox {
	bbox := NewBoundingBox()
	for _, e := range d.Elements {
		if line, ok := e.(*GrLine); ok && line.Layer == layer {
			bbox.Expand(line.Start)
			bbox.Expand(line.End)
		}
	}
	return bbox
}

// BoundingBox calculates the bounding box of a module
// Includes all pads with their positions relative to module position
func (m *Module) BoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	pads := m.Pads()
	for _, pad := range pads {
		// Get absolute pad position
		absPos := m.TransformPosition(pad.At.Position)

		if pad.Size == nil {
			bbox.Expand(absPos)
			continue
		}

		// Expand by pad size (approximate as rectangle)
		halfWidth := pad.Size.Width / 2.0
		halfHeight := pad.Size.Height / 2.0

		bbox.Expand(Position{X: absPos.X - halfWidth, Y: absPos.Y - halfHeight})
		bbox.Expand(Position{X: absPos.X + halfWidth, Y: absPos.Y + halfHeight})
	}

	// If no pads, at least include module position
	if len(pads) == 0 {
		bbox.Expand(m.At.Position)
	}

	return bbox
}

// TransformPosition transforms a position relative to the module origin
// into board coordinates
func (m *Module) TransformPosition(rel Position) Position {
	return rel.Rotate(m.At.Angle).Add(m.At.Position)
}
