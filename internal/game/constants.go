package game

// Physics and gameplay constants. Together with the field geometry in
// config.FieldConfig these form the contract with every client renderer.
const (
	BallRadius   = 15.0
	PlayerRadius = 20.0
	BotRadius    = 20.0

	// Kickoff: horizontal speed with a random sign, vertical in [-2, 2).
	BallKickoffSpeed  = 5.0
	BallKickoffSpread = 4.0

	// Multiplicative drag applied to the ball velocity every tick.
	BallDamping = 0.995

	// Redirect speed used when the ball is touched while at rest.
	DefaultContactSpeed = 5.0

	// Distance of the spawn point from the owning side's edge.
	SpawnInset = 100.0

	BotSpeed    = 4.0  // Vertical units per tick
	BotDeadZone = 5.0  // Tracking tolerance beyond the bot radius
	BotReach    = 10.0 // Proximity margin beyond true contact
	BotKickDX   = -7.0 // Always back toward the human side
	BotKickLift = 0.3  // Vertical kick per unit of vertical offset

	MaxNameLength = 15
)

// Reserved identity of the autonomous opponent. Human identities are
// opaque connection IDs and never collide with it.
const (
	BotID   = "bot"
	BotName = "BOT"
	BotSlot = 2
)

// Sides of the field. Blue defends the left goal, red the right one.
const (
	SideBlue = "blue"
	SideRed  = "red"
)
