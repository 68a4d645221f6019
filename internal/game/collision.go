package game

import "math"

// updateBall integrates and damps the ball, bounces it off the top and
// bottom walls, then resolves contacts in entity insertion order.
func (w *World) updateBall() {
	b := w.ball

	b.X += b.DX
	b.Y += b.DY

	b.DX *= BallDamping
	b.DY *= BallDamping

	BounceWalls(b, w.field)

	for _, e := range w.entities {
		if !ResolveContact(b, e) {
			continue
		}
		// Bot kicks are counted by the bot policy.
		if e.IsBot() {
			continue
		}
		if s, ok := w.stats[e.ID]; ok {
			s.Kicks++
			w.emit(EventTypeKick, e.ID, KickPayload{EntityID: e.ID, Kicks: s.Kicks})
		}
	}
}

// BounceWalls negates the vertical velocity when the ball pokes through the
// top or bottom edge. Position is not corrected.
func BounceWalls(b *Ball, f Field) bool {
	if b.Y-b.Radius < 0 || b.Y+b.Radius > f.Height {
		b.DY = -b.DY
		return true
	}
	return false
}

// ResolveContact redirects the ball away from an overlapping entity along
// the center line, keeping its speed, and moves it to the contact surface.
// A ball at rest leaves at DefaultContactSpeed.
func ResolveContact(b *Ball, e *Entity) bool {
	distX := b.X - e.X
	distY := b.Y - e.Y
	reach := b.Radius + e.Radius
	if math.Hypot(distX, distY) >= reach {
		return false
	}

	angle := math.Atan2(distY, distX)
	speed := math.Hypot(b.DX, b.DY)
	if speed == 0 {
		speed = DefaultContactSpeed
	}
	cos, sin := math.Cos(angle), math.Sin(angle)

	b.DX = speed * cos
	b.DY = speed * sin

	b.X = e.X + reach*cos
	b.Y = e.Y + reach*sin
	return true
}
