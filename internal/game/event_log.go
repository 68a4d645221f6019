package game

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultEventFeedSize = 256
	MaxEventsPerSec      = 1000            // Global rate limit
	MaxEventsPerPlayer   = 60              // Per-player rate limit per second
	PlayerLimiterCleanup = 5 * time.Minute // Cleanup interval for player limiters
)

// EventLog is a bounded, rate-limited in-memory feed of recent gameplay
// events. The engine writes, HTTP readers call Recent.
type EventLog struct {
	mu     sync.Mutex
	buffer []Event
	next   uint64 // sequence of the last stored event

	// Rate limiting for DoS protection
	globalLimiter  *rate.Limiter
	playerLimiters map[string]*playerLimiterEntry
	lastCleanup    time.Time

	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
}

// playerLimiterEntry tracks per-player rate limiting
type playerLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewEventLog creates a feed keeping the last size events.
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = DefaultEventFeedSize
	}
	return &EventLog{
		buffer:         make([]Event, size),
		globalLimiter:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		playerLimiters: make(map[string]*playerLimiterEntry),
		lastCleanup:    time.Now(),
	}
}

// Emit adds an event with rate limiting.
// Returns false if the event was rate limited.
func (el *EventLog) Emit(event Event) bool {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}

	// Per-player rate limit (a ball stuck against one player must not flood the feed)
	if event.PlayerID != "" && !el.playerLimiter(event.PlayerID).Allow() {
		el.droppedCount.Add(1)
		return false
	}

	el.next++
	event.Sequence = el.next
	el.buffer[el.next%uint64(len(el.buffer))] = event
	el.totalCount.Add(1)
	return true
}

// playerLimiter returns/creates a per-player rate limiter. Caller holds mu.
func (el *EventLog) playerLimiter(playerID string) *rate.Limiter {
	now := time.Now()
	if now.Sub(el.lastCleanup) > PlayerLimiterCleanup {
		el.cleanupPlayerLimiters(now)
	}

	if entry, ok := el.playerLimiters[playerID]; ok {
		entry.lastUsed = now
		return entry.limiter
	}

	entry := &playerLimiterEntry{
		limiter:  rate.NewLimiter(MaxEventsPerPlayer, MaxEventsPerPlayer/4),
		lastUsed: now,
	}
	el.playerLimiters[playerID] = entry
	return entry.limiter
}

// cleanupPlayerLimiters removes inactive player limiters
func (el *EventLog) cleanupPlayerLimiters(now time.Time) {
	cutoff := now.Add(-PlayerLimiterCleanup)
	for id, entry := range el.playerLimiters {
		if entry.lastUsed.Before(cutoff) {
			delete(el.playerLimiters, id)
		}
	}
	el.lastCleanup = now
}

// Recent returns up to n events, oldest first.
func (el *EventLog) Recent(n int) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()

	size := uint64(len(el.buffer))
	count := el.next
	if count > size {
		count = size
	}
	if n > 0 && uint64(n) < count {
		count = uint64(n)
	}

	events := make([]Event, 0, count)
	for seq := el.next - count + 1; seq <= el.next; seq++ {
		events = append(events, el.buffer[seq%size])
	}
	return events
}

// GetStats returns metrics for monitoring
func (el *EventLog) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"total":   el.totalCount.Load(),
		"dropped": el.droppedCount.Load(),
	}
}
