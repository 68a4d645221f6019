package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/WanessaDiniztech/Haxball/internal/config"
)

// ErrMatchFull is returned when a join would exceed the human player cap.
var ErrMatchFull = errors.New("match is full")

// Field is the playfield geometry in world units.
type Field struct {
	Width      float64
	Height     float64
	GoalWidth  float64
	GoalHeight float64
}

// FieldFromConfig converts the configured geometry.
func FieldFromConfig(cfg config.FieldConfig) Field {
	return Field{
		Width:      float64(cfg.Width),
		Height:     float64(cfg.Height),
		GoalWidth:  float64(cfg.GoalWidth),
		GoalHeight: float64(cfg.GoalHeight),
	}
}

// JoinResult is the identity assignment returned to a joining client.
type JoinResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
	Slot  int    `json:"playerNum"`

	// MatchStarted is set when this join started the match.
	MatchStarted bool `json:"-"`
}

// World is the single owned record of the match. It has no locking: the
// Engine actor is its only caller, one command or one Step at a time.
type World struct {
	field      Field
	maxPlayers int

	// Insertion order is the collision iteration order.
	entities []*Entity
	names    map[string]string
	stats    map[string]*Stats

	ball      *Ball
	score     Score
	running   bool
	startTime time.Time
	tick      uint64

	rng *rand.Rand
	now func() time.Time

	pending []Event
}

// NewWorld creates an empty world. maxPlayers <= 0 means no cap.
func NewWorld(field Field, maxPlayers int, rng *rand.Rand, now func() time.Time) *World {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &World{
		field:      field,
		maxPlayers: maxPlayers,
		names:      make(map[string]string),
		stats:      make(map[string]*Stats),
		rng:        rng,
		now:        now,
	}
}

// Field returns the playfield geometry.
func (w *World) Field() Field { return w.field }

// Running reports whether the match has started. It is never cleared once
// set, so the tick loop keeps stepping after everyone leaves.
func (w *World) Running() bool { return w.running }

// Tick returns the number of steps executed.
func (w *World) Tick() uint64 { return w.tick }

// Ball returns the current ball, nil before the match starts.
func (w *World) Ball() *Ball { return w.ball }

// Score returns the current score.
func (w *World) Score() Score { return w.score }

// Entity returns the entity with the given identity.
func (w *World) Entity(id string) *Entity {
	if i := w.indexOf(id); i >= 0 {
		return w.entities[i]
	}
	return nil
}

// Entities returns the entities in insertion order. The slice is shared.
func (w *World) Entities() []*Entity { return w.entities }

// StatsFor returns a copy of an identity's counters.
func (w *World) StatsFor(id string) (Stats, bool) {
	s, ok := w.stats[id]
	if !ok {
		return Stats{}, false
	}
	return *s, true
}

// HumanCount returns the number of human entities.
func (w *World) HumanCount() int {
	n := 0
	for _, e := range w.entities {
		if !e.IsBot() {
			n++
		}
	}
	return n
}

func (w *World) indexOf(id string) int {
	for i, e := range w.entities {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (w *World) bot() *Entity {
	return w.Entity(BotID)
}

// Join creates the entity, name and stats records for a new identity,
// starts the match if it is not running and rebalances the bot.
// Joining again with a known identity only updates its name and color.
func (w *World) Join(id, name string, color Color) (JoinResult, error) {
	name = SanitizeName(name)
	color = Color(strings.TrimSpace(string(color)))

	if e := w.Entity(id); e != nil && !e.IsBot() {
		if name != "" {
			w.names[id] = name
		}
		if color != "" {
			e.Color = color
		}
		return JoinResult{ID: id, Name: w.names[id], Color: e.Color, Slot: e.Slot}, nil
	}

	if id == "" || id == BotID {
		return JoinResult{}, fmt.Errorf("join %q: reserved identity", id)
	}
	if w.maxPlayers > 0 && w.HumanCount() >= w.maxPlayers {
		return JoinResult{}, fmt.Errorf("join %s: %w", id, ErrMatchFull)
	}

	if name == "" {
		name = fmt.Sprintf("Player%d", len(w.entities)+1)
	}
	slot := w.nextSlot()
	if color == "" {
		color = PaletteColor(slot)
	}

	x, y := SpawnPoint(w.field, slot)
	w.entities = append(w.entities, &Entity{
		ID:     id,
		Kind:   KindHuman,
		X:      x,
		Y:      y,
		Radius: PlayerRadius,
		Color:  color,
		Slot:   slot,
	})
	w.names[id] = name
	w.stats[id] = &Stats{}
	w.emit(EventTypePlayerJoin, id, PlayerJoinPayload{
		PlayerID: id, PlayerName: name, Slot: slot, Color: string(color), SpawnX: x, SpawnY: y,
	})

	result := JoinResult{ID: id, Name: name, Color: color, Slot: slot}
	if !w.running {
		w.startMatch()
		result.MatchStarted = true
	}

	w.balanceBot()
	return result, nil
}

// Leave destroys every record of an identity. Unknown identities are ignored.
func (w *World) Leave(id string) bool {
	if id == BotID {
		return false
	}
	i := w.indexOf(id)
	if i < 0 {
		return false
	}
	w.removeAt(i)
	w.emit(EventTypePlayerLeave, id, PlayerLeavePayload{PlayerID: id})

	w.balanceBot()
	return true
}

// SetIntent sets a human entity's velocity. Unknown identities, the bot and
// non-finite values are silently dropped.
func (w *World) SetIntent(id string, dx, dy float64) bool {
	if !finite(dx) || !finite(dy) {
		return false
	}
	e := w.Entity(id)
	if e == nil || e.IsBot() {
		return false
	}
	e.DX = dx
	e.DY = dy
	return true
}

// Step runs one full simulation step: humans, bot, ball, goals.
func (w *World) Step() {
	w.tick++

	w.moveHumans()
	if w.ball == nil {
		return
	}
	w.updateBot()
	w.updateBall()
	w.checkGoals()
}

func (w *World) startMatch() {
	w.ball = NewBall(w.field, w.rng)
	w.score = Score{}
	w.startTime = w.now()
	w.running = true
	w.emit(EventTypeMatchStart, "", MatchStartPayload{StartedAt: w.startTime.UnixMilli()})
}

// nextSlot returns the lowest slot not held by a human.
func (w *World) nextSlot() int {
	taken := make(map[int]bool, len(w.entities))
	for _, e := range w.entities {
		if !e.IsBot() {
			taken[e.Slot] = true
		}
	}
	slot := 1
	for taken[slot] {
		slot++
	}
	return slot
}

// balanceBot keeps the bot present iff exactly one human is present.
func (w *World) balanceBot() {
	humans := w.HumanCount()
	i := w.indexOf(BotID)

	switch {
	case humans == 1 && i < 0:
		bot := NewBot(w.field)
		w.entities = append(w.entities, bot)
		w.names[BotID] = BotName
		w.stats[BotID] = &Stats{}
		w.emit(EventTypeBotSpawn, BotID, BotPayload{X: bot.X, Y: bot.Y})
	case humans != 1 && i >= 0:
		w.removeAt(i)
		w.emit(EventTypeBotDespawn, BotID, BotPayload{})
	}
}

func (w *World) removeAt(i int) {
	id := w.entities[i].ID
	w.entities = append(w.entities[:i], w.entities[i+1:]...)
	delete(w.names, id)
	delete(w.stats, id)
}

func (w *World) emit(eventType EventType, playerID string, payload interface{}) {
	w.pending = append(w.pending, NewEvent(eventType, w.tick, playerID, payload))
}

// TakeEvents returns and clears the events produced since the last call.
func (w *World) TakeEvents() []Event {
	events := w.pending
	w.pending = nil
	return events
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
