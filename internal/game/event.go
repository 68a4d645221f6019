package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeMatchStart
	EventTypePlayerJoin
	EventTypePlayerLeave
	EventTypeBotSpawn
	EventTypeBotDespawn
	EventTypeKick
	EventTypeGoal
	EventTypeRoundReset
)

// EventVersion is bumped when a payload changes shape.
const EventVersion uint8 = 1

// Event is one gameplay occurrence in the event feed
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`  // Assigned by the EventLog
	TickNum   uint64          `json:"tickNum"`   // Game tick this occurred in
	PlayerID  string          `json:"playerId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeMatchStart:
		return "match_start"
	case EventTypePlayerJoin:
		return "player_join"
	case EventTypePlayerLeave:
		return "player_leave"
	case EventTypeBotSpawn:
		return "bot_spawn"
	case EventTypeBotDespawn:
		return "bot_despawn"
	case EventTypeKick:
		return "kick"
	case EventTypeGoal:
		return "goal"
	case EventTypeRoundReset:
		return "round_reset"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name in the event feed.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads for different event types

// MatchStartPayload is emitted when the first join starts the match
type MatchStartPayload struct {
	StartedAt int64 `json:"startedAt"` // Unix millis
}

// PlayerJoinPayload contains player join details
type PlayerJoinPayload struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Slot       int     `json:"slot"`
	Color      string  `json:"color"`
	SpawnX     float64 `json:"spawnX"`
	SpawnY     float64 `json:"spawnY"`
}

// PlayerLeavePayload contains player leave details
type PlayerLeavePayload struct {
	PlayerID string `json:"playerId"`
}

// BotPayload describes a bot spawn or despawn
type BotPayload struct {
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// KickPayload is emitted for every counted kick
type KickPayload struct {
	EntityID string `json:"entityId"`
	Kicks    int    `json:"kicks"`
	Bot      bool   `json:"bot,omitempty"`
}

// GoalPayload carries the scoring side and the score after the goal
type GoalPayload struct {
	Side string `json:"side"`
	Blue int    `json:"blue"`
	Red  int    `json:"red"`
}

// RoundResetPayload carries the kickoff velocity of the new ball
type RoundResetPayload struct {
	BallDX float64 `json:"ballDx"`
	BallDY float64 `json:"ballDy"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, playerID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		PlayerID:  playerID,
		Payload:   EncodePayload(payload),
	}
}
