package game

import (
	"math/rand"
	"strings"
	"unicode/utf8"
)

// EntityKind distinguishes human-controlled entities from the bot.
type EntityKind uint8

const (
	KindHuman EntityKind = iota
	KindBot
)

// Color is a palette tag understood by the client renderer.
type Color string

// Palette is indexed by slot; slots past its end render white.
var Palette = []Color{"blue", "red", "yellow", "cyan"}

// BallColor is the drawn color of every ball.
const BallColor Color = "white"

// PaletteColor returns the default color for a slot.
func PaletteColor(slot int) Color {
	if slot < 1 || slot > len(Palette) {
		return BallColor
	}
	return Palette[slot-1]
}

// Entity is any controllable circle: a human player or the bot.
// Velocity is set directly (intent or bot policy), never integrated from forces.
type Entity struct {
	ID     string
	Kind   EntityKind
	X, Y   float64
	DX, DY float64
	Radius float64
	Color  Color
	Slot   int // 1-based, odd slots start left and even slots start right
}

// IsBot reports whether the entity is the autonomous opponent.
func (e *Entity) IsBot() bool {
	return e.Kind == KindBot
}

// Ball is recreated on every kickoff and never keeps identity across rounds.
type Ball struct {
	X, Y   float64
	DX, DY float64
	Radius float64
	Color  Color
}

// Score holds one counter per side.
type Score struct {
	Blue int `json:"blue"`
	Red  int `json:"red"`
}

// Stats are the per-identity counters.
type Stats struct {
	Goals int `json:"goals"`
	Kicks int `json:"kicks"`
}

// NewBall creates a kickoff ball at the center of the field.
func NewBall(f Field, rng *rand.Rand) *Ball {
	dx := BallKickoffSpeed
	if rng.Float64() >= 0.5 {
		dx = -dx
	}
	return &Ball{
		X:      f.Width / 2,
		Y:      f.Height / 2,
		DX:     dx,
		DY:     (rng.Float64() - 0.5) * BallKickoffSpread,
		Radius: BallRadius,
		Color:  BallColor,
	}
}

// NewBot creates the bot at its fixed spawn on the right side.
func NewBot(f Field) *Entity {
	return &Entity{
		ID:     BotID,
		Kind:   KindBot,
		X:      f.Width - SpawnInset,
		Y:      f.Height / 2,
		Radius: BotRadius,
		Color:  PaletteColor(BotSlot),
		Slot:   BotSlot,
	}
}

// SpawnPoint returns the canonical start position for a slot.
func SpawnPoint(f Field, slot int) (float64, float64) {
	if slot%2 == 1 {
		return SpawnInset, f.Height / 2
	}
	return f.Width - SpawnInset, f.Height / 2
}

// SanitizeName trims and truncates a display name. Blank names yield "".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}
