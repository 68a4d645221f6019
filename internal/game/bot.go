package game

import "math"

// updateBot runs the bot policy before collision resolution.
func (w *World) updateBot() {
	bot := w.bot()
	if bot == nil {
		return
	}
	if !DriveBot(bot, w.ball, w.field) {
		return
	}
	if s, ok := w.stats[BotID]; ok {
		s.Kicks++
		w.emit(EventTypeKick, BotID, KickPayload{EntityID: BotID, Kicks: s.Kicks, Bot: true})
	}
}

// DriveBot tracks the ball vertically and, when the ball is within reach,
// kicks it back toward the human side. It reports whether it kicked.
//
// The reach is wider than true contact, so the generic contact rule may
// still fire against the bot later in the same tick.
func DriveBot(bot *Entity, ball *Ball, f Field) bool {
	deltaY := ball.Y - bot.Y
	switch {
	case deltaY > bot.Radius+BotDeadZone:
		bot.Y += BotSpeed
	case deltaY < -(bot.Radius + BotDeadZone):
		bot.Y -= BotSpeed
	}
	bot.Y = clamp(bot.Y, bot.Radius, f.Height-bot.Radius)

	distX := ball.X - bot.X
	distY := ball.Y - bot.Y
	if math.Hypot(distX, distY) >= ball.Radius+bot.Radius+BotReach {
		return false
	}

	ball.DX = BotKickDX
	ball.DY = distY * BotKickLift
	return true
}
