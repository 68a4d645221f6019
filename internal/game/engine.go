package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/WanessaDiniztech/Haxball/internal/config"
	"github.com/WanessaDiniztech/Haxball/internal/metrics"
)

// ErrEngineStopped is returned for commands submitted after Run has returned.
var ErrEngineStopped = errors.New("engine stopped")

// InboxSize bounds the number of pending commands.
const InboxSize = 256

// EngineConfig contains everything needed to construct an Engine.
type EngineConfig struct {
	Field  config.FieldConfig
	Limits config.ResourceLimits

	// Seed for the kickoff RNG; zero picks one from the clock.
	Seed int64

	// Clock for match timing; nil uses time.Now.
	Clock func() time.Time
}

// Engine is the tick scheduler. Its Run goroutine is the only owner of the
// World: commands arrive through the inbox and are applied between steps,
// so a command never observes a half-finished tick.
type Engine struct {
	world    *World
	tickRate int
	eventLog *EventLog

	inbox chan interface{}
	done  chan struct{}

	snapshot  atomic.Pointer[Snapshot]
	tickCount atomic.Uint64

	// OnSnapshot receives every tick's snapshot, in tick order, from the
	// engine goroutine. It must not block.
	OnSnapshot func(*Snapshot)
}

type joinCommand struct {
	id    string
	name  string
	color Color
	reply chan joinReply
}

type joinReply struct {
	result JoinResult
	err    error
}

type intentCommand struct {
	id     string
	dx, dy float64
}

type leaveCommand struct {
	id string
}

// NewEngine creates an engine. Nothing runs until Run is called.
func NewEngine(cfg EngineConfig) *Engine {
	defaults := config.DefaultField()
	if cfg.Field.Width <= 0 || cfg.Field.Height <= 0 {
		cfg.Field = defaults
	}
	if cfg.Field.TickRate <= 0 {
		cfg.Field.TickRate = defaults.TickRate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		world:    NewWorld(FieldFromConfig(cfg.Field), cfg.Limits.MaxPlayers, rand.New(rand.NewSource(seed)), cfg.Clock),
		tickRate: cfg.Field.TickRate,
		eventLog: NewEventLog(cfg.Limits.EventFeedSize),
		inbox:    make(chan interface{}, InboxSize),
		done:     make(chan struct{}),
	}
	e.snapshot.Store(e.world.Snapshot())
	return e
}

// Run processes commands and steps the world until ctx is cancelled.
// It must be called once.
// Steps are scheduled only while the match is running; each step re-arms
// the timer after it completes, so a slow step delays the next one.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)

	interval := time.Second / time.Duration(e.tickRate)
	timer := time.NewTimer(interval)
	timer.Stop()
	var tickC <-chan time.Time

	log.Printf("🎮 Game engine ready at %d TPS", e.tickRate)

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("🛑 Game engine stopped")
			return

		case cmd := <-e.inbox:
			e.handleCommand(cmd)
			if tickC == nil && e.world.Running() {
				timer.Reset(interval)
				tickC = timer.C
			}

		case <-tickC:
			e.step()
			if e.world.Running() {
				timer.Reset(interval)
			} else {
				tickC = nil
			}
		}
	}
}

func (e *Engine) step() {
	start := time.Now()

	e.world.Step()
	snap := e.world.Snapshot()
	e.publish(snap)
	e.tickCount.Add(1)

	metrics.RecordTick(time.Since(start))

	if e.OnSnapshot != nil {
		e.OnSnapshot(snap)
	}
}

func (e *Engine) handleCommand(cmd interface{}) {
	switch c := cmd.(type) {
	case joinCommand:
		result, err := e.world.Join(c.id, c.name, c.color)
		if err == nil {
			if result.MatchStarted {
				log.Println("⚽ Match started")
			}
			log.Printf("👤 Player joined: %s (%s, slot %d)", result.Name, result.Color, result.Slot)
		}
		e.publish(e.world.Snapshot())
		c.reply <- joinReply{result: result, err: err}

	case intentCommand:
		e.world.SetIntent(c.id, c.dx, c.dy)

	case leaveCommand:
		if e.world.Leave(c.id) {
			log.Printf("👋 Player left: %s", c.id)
			e.publish(e.world.Snapshot())
		}
	}
}

// publish stores the snapshot for readers and drains world events into the
// feed and metrics.
func (e *Engine) publish(snap *Snapshot) {
	e.snapshot.Store(snap)

	humans, bots := 0, 0
	for _, p := range snap.Players {
		if p.Entity.IsBot {
			bots++
		} else {
			humans++
		}
	}
	metrics.UpdateEntityCount(humans, bots)

	for _, ev := range e.world.TakeEvents() {
		e.eventLog.Emit(ev)

		switch ev.Type {
		case EventTypeGoal:
			var g GoalPayload
			if err := json.Unmarshal(ev.Payload, &g); err == nil {
				metrics.RecordGoal(g.Side)
				log.Printf("🥅 Goal for %s! Score %d x %d", g.Side, g.Blue, g.Red)
			}
		case EventTypeKick:
			metrics.RecordKick(ev.PlayerID == BotID)
		case EventTypeBotSpawn:
			log.Println("🤖 Bot created")
		case EventTypeBotDespawn:
			log.Println("🤖 Bot removed")
		}
	}
}

// Join submits a join and waits for the assigned identity. If ctx ends after
// the command was queued the join is still applied; callers own the cleanup.
func (e *Engine) Join(ctx context.Context, id, name string, color Color) (JoinResult, error) {
	reply := make(chan joinReply, 1)
	if err := e.submit(ctx, joinCommand{id: id, name: name, color: color, reply: reply}); err != nil {
		return JoinResult{}, err
	}
	select {
	case r := <-reply:
		return r.result, r.err
	case <-ctx.Done():
		return JoinResult{}, ctx.Err()
	case <-e.done:
		return JoinResult{}, ErrEngineStopped
	}
}

// Intent queues a velocity update. It never blocks; when the inbox is full
// the intent is dropped and the entity keeps its previous velocity.
func (e *Engine) Intent(id string, dx, dy float64) {
	select {
	case e.inbox <- intentCommand{id: id, dx: dx, dy: dy}:
	default:
		metrics.RecordCommandDropped()
	}
}

// Leave queues the removal of an identity.
func (e *Engine) Leave(ctx context.Context, id string) error {
	return e.submit(ctx, leaveCommand{id: id})
}

func (e *Engine) submit(ctx context.Context, cmd interface{}) error {
	select {
	case <-e.done:
		return ErrEngineStopped
	default:
	}

	select {
	case e.inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineStopped
	}
}

// Snapshot returns the latest published snapshot. It is never nil and must
// be treated as read-only.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// TickCount returns the number of steps executed.
func (e *Engine) TickCount() uint64 {
	return e.tickCount.Load()
}

// Events returns up to n recent gameplay events, oldest first.
func (e *Engine) Events(n int) []Event {
	return e.eventLog.Recent(n)
}

// GetEventLogStats returns event feed statistics for monitoring
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// Field returns the playfield geometry.
func (e *Engine) Field() Field {
	return e.world.Field()
}
