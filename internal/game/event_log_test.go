package game

import "testing"

func TestEventLogRecentOldestFirst(t *testing.T) {
	el := NewEventLog(4)
	for i := 0; i < 6; i++ {
		el.Emit(NewEvent(EventTypeRoundReset, uint64(i), "", RoundResetPayload{}))
	}

	events := el.Recent(0)
	if len(events) != 4 {
		t.Fatalf("Expected 4 retained events, got %d", len(events))
	}
	for i, ev := range events {
		if want := uint64(i + 3); ev.Sequence != want {
			t.Errorf("Event %d: expected sequence %d, got %d", i, want, ev.Sequence)
		}
	}

	last := el.Recent(2)
	if len(last) != 2 || last[0].Sequence != 5 || last[1].Sequence != 6 {
		t.Errorf("Unexpected tail: %+v", last)
	}
}

func TestEventLogEmpty(t *testing.T) {
	el := NewEventLog(0)
	if got := el.Recent(10); len(got) != 0 {
		t.Errorf("Expected no events, got %d", len(got))
	}
}

func TestEventLogPerPlayerLimit(t *testing.T) {
	el := NewEventLog(128)

	accepted := 0
	for i := 0; i < 50; i++ {
		if el.Emit(NewEvent(EventTypeKick, 1, "alice", KickPayload{EntityID: "alice", Kicks: i})) {
			accepted++
		}
	}

	if accepted >= 50 {
		t.Error("A single player should be rate limited")
	}
	stats := el.GetStats()
	if stats["dropped"].(uint64) == 0 {
		t.Errorf("Expected dropped events, got %v", stats)
	}
	if stats["total"].(uint64) != uint64(accepted) {
		t.Errorf("Expected total %d, got %v", accepted, stats["total"])
	}

	// Other players are unaffected
	if !el.Emit(NewEvent(EventTypeKick, 1, "bob", KickPayload{EntityID: "bob"})) {
		t.Error("Other players should still be accepted")
	}
}

func TestEventTypeMarshalsByName(t *testing.T) {
	text, _ := EventTypeGoal.MarshalText()
	if string(text) != "goal" {
		t.Errorf("Expected goal, got %s", text)
	}
	if EventType(200).String() != "unknown" {
		t.Error("Out of range types should be unknown")
	}
}
