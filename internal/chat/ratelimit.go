package chat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/WanessaDiniztech/Haxball/internal/config"
)

// RateLimiter implements per-user message rate limiting
type RateLimiter struct {
	mu          sync.Mutex
	users       map[string]*userLimit
	config      config.ChatConfig
	lastCleanup time.Time
}

type userLimit struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.ChatConfig) *RateLimiter {
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = config.DefaultChat().MessagesPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = config.DefaultChat().Burst
	}
	if cfg.IdleCleanup <= 0 {
		cfg.IdleCleanup = config.DefaultChat().IdleCleanup
	}
	return &RateLimiter{
		users:       make(map[string]*userLimit),
		config:      cfg,
		lastCleanup: time.Now(),
	}
}

// Allow checks if a user can send a message
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > rl.config.IdleCleanup {
		rl.cleanup(now)
	}

	limit, exists := rl.users[userID]
	if !exists {
		limit = &userLimit{
			limiter: rate.NewLimiter(rate.Limit(rl.config.MessagesPerSecond), rl.config.Burst),
		}
		rl.users[userID] = limit
	}
	limit.lastUsed = now
	return limit.limiter.Allow()
}

// Forget drops a user's limiter, e.g. when the connection closes
func (rl *RateLimiter) Forget(userID string) {
	rl.mu.Lock()
	delete(rl.users, userID)
	rl.mu.Unlock()
}

// cleanup removes idle entries. Caller holds mu.
func (rl *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.config.IdleCleanup)
	for key, limit := range rl.users {
		if limit.lastUsed.Before(cutoff) {
			delete(rl.users, key)
		}
	}
	rl.lastCleanup = now
}
