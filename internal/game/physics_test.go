package game

import (
	"math"
	"math/rand"
	"testing"
)

const epsilon = 1e-9

func testField() Field {
	return Field{Width: 800, Height: 400, GoalWidth: 10, GoalHeight: 150}
}

func TestMoveEntityClampsToField(t *testing.T) {
	f := testField()
	rng := rand.New(rand.NewSource(7))
	e := &Entity{ID: "p", X: 100, Y: 200, Radius: PlayerRadius}

	for i := 0; i < 5000; i++ {
		e.DX = (rng.Float64() - 0.5) * 200
		e.DY = (rng.Float64() - 0.5) * 200
		MoveEntity(e, f)

		if e.X < e.Radius || e.X > f.Width-e.Radius {
			t.Fatalf("Step %d: x=%v outside [%v, %v]", i, e.X, e.Radius, f.Width-e.Radius)
		}
		if e.Y < e.Radius || e.Y > f.Height-e.Radius {
			t.Fatalf("Step %d: y=%v outside [%v, %v]", i, e.Y, e.Radius, f.Height-e.Radius)
		}
	}
}

func TestMoveEntityKeepsVelocity(t *testing.T) {
	e := &Entity{X: 30, Y: 200, DX: -50, DY: 0, Radius: PlayerRadius}
	MoveEntity(e, testField())

	if e.X != PlayerRadius {
		t.Errorf("Expected x clamped to %v, got %v", PlayerRadius, e.X)
	}
	if e.DX != -50 {
		t.Errorf("Clamping should not touch velocity, got dx=%v", e.DX)
	}
}

func TestBallDampingStrictlyDecreasesSpeed(t *testing.T) {
	w, _ := newTestWorld(t)
	w.ball = &Ball{X: 400, Y: 200, DX: 1, DY: 0.5, Radius: BallRadius, Color: BallColor}

	prev := math.Hypot(w.ball.DX, w.ball.DY)
	for i := 0; i < 100; i++ {
		w.updateBall()
		speed := math.Hypot(w.ball.DX, w.ball.DY)
		if speed >= prev {
			t.Fatalf("Tick %d: speed %v did not decrease from %v", i, speed, prev)
		}
		prev = speed
	}
}

func TestBounceWalls(t *testing.T) {
	f := testField()
	tests := []struct {
		name   string
		y, dy  float64
		bounce bool
	}{
		{"top", 10, -2, true},
		{"bottom", 390, 2, true},
		{"touching top edge", 15, -2, false},
		{"middle", 200, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Ball{X: 400, Y: tt.y, DX: 1, DY: tt.dy, Radius: BallRadius}
			got := BounceWalls(b, f)
			if got != tt.bounce {
				t.Fatalf("Expected bounce=%v, got %v", tt.bounce, got)
			}
			want := tt.dy
			if tt.bounce {
				want = -tt.dy
			}
			if b.DY != want {
				t.Errorf("Expected dy=%v, got %v", want, b.DY)
			}
			if b.Y != tt.y {
				t.Errorf("Bounce should not move the ball, got y=%v", b.Y)
			}
		})
	}
}

func TestResolveContactPreservesSpeed(t *testing.T) {
	p := &Entity{X: 100, Y: 200, Radius: PlayerRadius}
	b := &Ball{X: 130, Y: 205, DX: -3, DY: 1, Radius: BallRadius}
	before := math.Hypot(b.DX, b.DY)

	if !ResolveContact(b, p) {
		t.Fatal("Expected contact")
	}

	if after := math.Hypot(b.DX, b.DY); math.Abs(after-before) > epsilon {
		t.Errorf("Speed changed: %v -> %v", before, after)
	}
	if d := math.Hypot(b.X-p.X, b.Y-p.Y); math.Abs(d-(b.Radius+p.Radius)) > epsilon {
		t.Errorf("Ball should sit on the contact surface, distance %v", d)
	}
	if b.DX <= 0 {
		t.Errorf("Ball should move away from the player, dx=%v", b.DX)
	}
}

func TestResolveContactAtRestUsesDefaultSpeed(t *testing.T) {
	p := &Entity{X: 100, Y: 200, Radius: PlayerRadius}
	b := &Ball{X: 100, Y: 225, Radius: BallRadius}

	if !ResolveContact(b, p) {
		t.Fatal("Expected contact")
	}
	if speed := math.Hypot(b.DX, b.DY); math.Abs(speed-DefaultContactSpeed) > epsilon {
		t.Errorf("Expected speed %v, got %v", DefaultContactSpeed, speed)
	}
	if math.Abs(b.DY-DefaultContactSpeed) > epsilon || math.Abs(b.DX) > epsilon {
		t.Errorf("Expected straight down at rest speed, got (%v,%v)", b.DX, b.DY)
	}
}

func TestResolveContactMiss(t *testing.T) {
	p := &Entity{X: 100, Y: 200, Radius: PlayerRadius}
	b := &Ball{X: 135, Y: 200, DX: 2, Radius: BallRadius}

	if ResolveContact(b, p) {
		t.Error("Touching circles are not in contact")
	}
	if b.X != 135 || b.DX != 2 {
		t.Error("Missed contact should not change the ball")
	}
}

// TestContactsResolveInInsertionOrder puts the ball inside a human and the
// bot at once: the human resolves first, the bot sees the displaced ball,
// and the bot's result is the final one.
func TestContactsResolveInInsertionOrder(t *testing.T) {
	w, _ := newTestWorld(t)
	mustJoin(t, w, "alice", "Alice", "")
	w.TakeEvents()

	human := w.Entity("alice")
	bot := w.Entity(BotID)
	human.X, human.Y = 400, 200
	bot.X, bot.Y = 430, 210
	w.ball = &Ball{X: 405, Y: 200, Radius: BallRadius, Color: BallColor}

	// Expected: human pushes the ball to (435,200) at rest speed, then the bot
	// redirects it along its own center line.
	afterHuman := &Ball{X: 400 + 35, Y: 200, DX: DefaultContactSpeed, Radius: BallRadius}
	angle := math.Atan2(afterHuman.Y-bot.Y, afterHuman.X-bot.X)
	wantX := bot.X + 35*math.Cos(angle)
	wantY := bot.Y + 35*math.Sin(angle)

	w.updateBall()

	if math.Abs(w.ball.X-wantX) > epsilon || math.Abs(w.ball.Y-wantY) > epsilon {
		t.Errorf("Expected ball at (%v,%v), got (%v,%v)", wantX, wantY, w.ball.X, w.ball.Y)
	}
	if speed := math.Hypot(w.ball.DX, w.ball.DY); math.Abs(speed-DefaultContactSpeed) > epsilon {
		t.Errorf("Expected speed %v after both contacts, got %v", DefaultContactSpeed, speed)
	}

	if s, _ := w.StatsFor("alice"); s.Kicks != 1 {
		t.Errorf("Expected 1 kick for alice, got %d", s.Kicks)
	}
	if s, _ := w.StatsFor(BotID); s.Kicks != 0 {
		t.Errorf("Bot contact should not count as a kick, got %d", s.Kicks)
	}
}

func TestDriveBotTracksBall(t *testing.T) {
	f := testField()
	tests := []struct {
		name  string
		ballY float64
		wantY float64
	}{
		{"below", 300, 204},
		{"above", 100, 196},
		{"dead zone", 224, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := NewBot(f)
			ball := &Ball{X: 200, Y: tt.ballY, DX: 3, Radius: BallRadius}
			if DriveBot(bot, ball, f) {
				t.Fatal("Far ball should not be kicked")
			}
			if bot.Y != tt.wantY {
				t.Errorf("Expected bot y=%v, got %v", tt.wantY, bot.Y)
			}
			if bot.X != 700 {
				t.Errorf("Bot should never move horizontally, got x=%v", bot.X)
			}
		})
	}
}

func TestDriveBotClampsToField(t *testing.T) {
	f := testField()
	bot := NewBot(f)
	bot.Y = 22
	ball := &Ball{X: 100, Y: -4, Radius: BallRadius}

	DriveBot(bot, ball, f)
	if bot.Y != BotRadius {
		t.Errorf("Expected bot clamped to y=%v, got %v", BotRadius, bot.Y)
	}
}

func TestDriveBotKicksWithinReach(t *testing.T) {
	f := testField()
	bot := NewBot(f)
	ball := &Ball{X: 660, Y: 210, DX: 4, DY: 0, Radius: BallRadius}

	if !DriveBot(bot, ball, f) {
		t.Fatal("Ball within reach should be kicked")
	}
	if ball.DX != BotKickDX {
		t.Errorf("Expected dx=%v, got %v", BotKickDX, ball.DX)
	}
	if want := (210 - bot.Y) * BotKickLift; math.Abs(ball.DY-want) > epsilon {
		t.Errorf("Expected dy=%v, got %v", want, ball.DY)
	}
}

func TestBotKickCountsInStats(t *testing.T) {
	w, _ := newTestWorld(t)
	mustJoin(t, w, "alice", "Alice", "")
	w.ball = &Ball{X: 660, Y: 200, Radius: BallRadius, Color: BallColor}

	w.Step()

	if s, _ := w.StatsFor(BotID); s.Kicks != 1 {
		t.Errorf("Expected 1 bot kick, got %d", s.Kicks)
	}
	if w.ball.DX >= 0 {
		t.Errorf("Bot kick should send the ball left, dx=%v", w.ball.DX)
	}
}

func TestBotProximityKickThenContactInOneStep(t *testing.T) {
	w, _ := newTestWorld(t)
	mustJoin(t, w, "alice", "Alice", "")
	bot := w.Entity(BotID)
	w.ball = &Ball{X: bot.X - 20, Y: bot.Y, Radius: BallRadius, Color: BallColor}

	w.Step()

	// Proximity kick sets dx=-7, the ball moves and damps, then the contact
	// pushes it out of the bot keeping the damped speed.
	b := w.Ball()
	wantX := bot.X - bot.Radius - BallRadius
	if math.Abs(b.X-wantX) > epsilon || math.Abs(b.Y-bot.Y) > epsilon {
		t.Errorf("Expected ball at (%v,%v), got (%v,%v)", wantX, bot.Y, b.X, b.Y)
	}
	if math.Abs(b.DX-BotKickDX*BallDamping) > epsilon || math.Abs(b.DY) > epsilon {
		t.Errorf("Expected velocity (%v,0), got (%v,%v)", BotKickDX*BallDamping, b.DX, b.DY)
	}
	if s, _ := w.StatsFor(BotID); s.Kicks != 1 {
		t.Errorf("Contact must not add a second bot kick, got %d", s.Kicks)
	}
}

func TestStepBeforeMatchOnlyAdvancesTick(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Step()
	if w.Tick() != 1 {
		t.Errorf("Expected tick 1, got %d", w.Tick())
	}
	if w.Ball() != nil {
		t.Error("No ball before the match starts")
	}
}
