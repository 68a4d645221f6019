package game

// InGoalBand reports whether y lies strictly inside the goal mouths' vertical span.
func (f Field) InGoalBand(y float64) bool {
	return y > (f.Height-f.GoalHeight)/2 && y < (f.Height+f.GoalHeight)/2
}

// InLeftGoal reports whether the ball's leading edge is in the left goal mouth.
func (f Field) InLeftGoal(b *Ball) bool {
	return b.X-b.Radius < f.GoalWidth && f.InGoalBand(b.Y)
}

// InRightGoal reports whether the ball's leading edge is in the right goal mouth.
func (f Field) InRightGoal(b *Ball) bool {
	return b.X+b.Radius > f.Width-f.GoalWidth && f.InGoalBand(b.Y)
}

// checkGoals scores the ball. The two checks are independent; the second
// one sees the fresh kickoff ball if the first one fired.
func (w *World) checkGoals() {
	if w.field.InLeftGoal(w.ball) {
		w.score.Red++
		scorer := ""
		if s, ok := w.stats[BotID]; ok {
			s.Goals++
			scorer = BotID
		}
		w.emit(EventTypeGoal, scorer, GoalPayload{Side: SideRed, Blue: w.score.Blue, Red: w.score.Red})
		w.resetRound()
	}

	if w.field.InRightGoal(w.ball) {
		w.score.Blue++
		w.emit(EventTypeGoal, "", GoalPayload{Side: SideBlue, Blue: w.score.Blue, Red: w.score.Red})
		w.resetRound()
	}
}

// resetRound starts a new round: fresh ball, every entity back on its
// spawn at rest. Score, stats and match time are kept.
func (w *World) resetRound() {
	w.ball = NewBall(w.field, w.rng)
	for _, e := range w.entities {
		e.X, e.Y = SpawnPoint(w.field, e.Slot)
		e.DX = 0
		e.DY = 0
	}
	w.emit(EventTypeRoundReset, "", RoundResetPayload{BallDX: w.ball.DX, BallDY: w.ball.DY})
}
