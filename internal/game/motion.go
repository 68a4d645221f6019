package game

import "math"

// moveHumans integrates every human entity and clamps it to the field.
// The bot is driven by its own policy instead.
func (w *World) moveHumans() {
	for _, e := range w.entities {
		if e.IsBot() {
			continue
		}
		MoveEntity(e, w.field)
	}
}

// MoveEntity applies one step of velocity and keeps the circle inside the field.
func MoveEntity(e *Entity, f Field) {
	e.X += e.DX
	e.Y += e.DY

	e.X = clamp(e.X, e.Radius, f.Width-e.Radius)
	e.Y = clamp(e.Y, e.Radius, f.Height-e.Radius)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
