package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/WanessaDiniztech/Haxball/internal/config"
)

func newTestEngine(t *testing.T) (*Engine, chan *Snapshot) {
	t.Helper()
	cfg := EngineConfig{
		Field:  config.DefaultField(),
		Limits: config.DefaultLimits(),
		Seed:   1,
	}
	cfg.Field.TickRate = 100

	engine := NewEngine(cfg)
	snaps := make(chan *Snapshot, 1024)
	engine.OnSnapshot = func(s *Snapshot) {
		select {
		case snaps <- s:
		default:
		}
	}
	return engine, snaps
}

func runEngine(t *testing.T, engine *Engine) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-engine.done
	})
	return cancel
}

func nextSnapshot(t *testing.T, snaps <-chan *Snapshot) *Snapshot {
	t.Helper()
	select {
	case s := <-snaps:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a snapshot")
		return nil
	}
}

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	if engine.tickRate != 60 {
		t.Errorf("Expected default 60 TPS, got %d", engine.tickRate)
	}
	if f := engine.Field(); f.Width != 800 || f.Height != 400 {
		t.Errorf("Expected default field, got %+v", f)
	}
	snap := engine.Snapshot()
	if snap == nil || snap.Running || len(snap.Players) != 0 {
		t.Errorf("Expected empty initial snapshot, got %+v", snap)
	}
}

func TestEngineIdleUntilJoin(t *testing.T) {
	engine, snaps := newTestEngine(t)
	runEngine(t, engine)

	select {
	case <-snaps:
		t.Fatal("Engine should not tick before the match starts")
	case <-time.After(100 * time.Millisecond):
	}
	if engine.TickCount() != 0 {
		t.Errorf("Expected no ticks, got %d", engine.TickCount())
	}
}

func TestEngineJoinStartsTicking(t *testing.T) {
	engine, snaps := newTestEngine(t)
	runEngine(t, engine)
	ctx := context.Background()

	res, err := engine.Join(ctx, "alice", "Alice", "")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if res.ID != "alice" || res.Slot != 1 || res.Color != "blue" {
		t.Errorf("Unexpected join result: %+v", res)
	}

	// Join is visible to readers before the next tick
	if _, ok := engine.Snapshot().Players.Get(BotID); !ok {
		t.Error("Bot should be published right after the join")
	}

	// Snapshots arrive in tick order with no gaps
	prev := nextSnapshot(t, snaps).Tick
	for i := 0; i < 5; i++ {
		tick := nextSnapshot(t, snaps).Tick
		if tick != prev+1 {
			t.Fatalf("Expected tick %d, got %d", prev+1, tick)
		}
		prev = tick
	}
}

func TestEngineIntentMovesPlayer(t *testing.T) {
	engine, snaps := newTestEngine(t)
	runEngine(t, engine)

	if _, err := engine.Join(context.Background(), "alice", "Alice", ""); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	engine.Intent("alice", 0, 3)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-snaps:
			if p, _ := s.Players.Get("alice"); p.Y > 200 {
				if p.DY != 3 {
					t.Errorf("Expected dy=3, got %v", p.DY)
				}
				return
			}
		case <-deadline:
			t.Fatal("Intent never applied")
		}
	}
}

func TestEngineLeaveRemovesPlayer(t *testing.T) {
	engine, _ := newTestEngine(t)
	runEngine(t, engine)
	ctx := context.Background()

	engine.Join(ctx, "alice", "Alice", "")
	engine.Join(ctx, "bob", "Bob", "")
	if err := engine.Leave(ctx, "bob"); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	// Round-trip through the inbox so the leave has been applied
	engine.Join(ctx, "alice", "Alice", "")

	snap := engine.Snapshot()
	if _, ok := snap.Players.Get("bob"); ok {
		t.Error("bob should be gone")
	}
	if _, ok := snap.Stats["bob"]; ok {
		t.Error("bob's stats should be gone")
	}
	if _, ok := snap.Players.Get(BotID); !ok {
		t.Error("Bot should return with one human left")
	}
}

func TestEngineTimedOutJoinStillApplies(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Queued before Run, so the caller gives up while the command waits
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := engine.Join(ctx, "alice", "Alice", ""); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}

	runEngine(t, engine)
	bg := context.Background()
	engine.Join(bg, "bob", "Bob", "")
	if _, ok := engine.Snapshot().Players.Get("alice"); !ok {
		t.Fatal("Queued join should be applied once the engine runs")
	}

	// Leave is the caller's cleanup for a join it gave up on
	if err := engine.Leave(bg, "alice"); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	engine.Join(bg, "bob", "Bob", "")
	snap := engine.Snapshot()
	if _, ok := snap.Players.Get("alice"); ok {
		t.Error("alice should be gone after leave")
	}
	if _, ok := snap.Players.Get(BotID); !ok {
		t.Error("Bot should return with one human left")
	}
}

func TestEngineJoinFull(t *testing.T) {
	engine, _ := newTestEngine(t)
	runEngine(t, engine)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		if _, err := engine.Join(ctx, id, "", ""); err != nil {
			t.Fatalf("Join %s failed: %v", id, err)
		}
	}
	if _, err := engine.Join(ctx, "e", "", ""); !errors.Is(err, ErrMatchFull) {
		t.Errorf("Expected ErrMatchFull, got %v", err)
	}
}

func TestEngineStopped(t *testing.T) {
	engine, _ := newTestEngine(t)
	cancel := runEngine(t, engine)
	cancel()
	<-engine.done

	ctx := context.Background()
	if _, err := engine.Join(ctx, "alice", "Alice", ""); !errors.Is(err, ErrEngineStopped) {
		t.Errorf("Expected ErrEngineStopped from Join, got %v", err)
	}
	if err := engine.Leave(ctx, "alice"); !errors.Is(err, ErrEngineStopped) {
		t.Errorf("Expected ErrEngineStopped from Leave, got %v", err)
	}
}

func TestEngineEventsFeed(t *testing.T) {
	engine, _ := newTestEngine(t)
	runEngine(t, engine)

	engine.Join(context.Background(), "alice", "Alice", "")

	events := engine.Events(10)
	if len(events) < 3 {
		t.Fatalf("Expected join, match start and bot events, got %d", len(events))
	}
	if events[0].Type != EventTypePlayerJoin || events[0].Sequence != 1 {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
}
