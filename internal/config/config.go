// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for field geometry, server and limit settings.
//
// IMPORTANT: The field geometry is a contract with every connected client.
// Change it here only, and only together with the client.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// FIELD CONFIGURATION
// =============================================================================

// FieldConfig holds the playfield geometry and simulation rate.
// These values are shared between the game engine, the renderer and clients.
type FieldConfig struct {
	Width      int // Playfield width in world units
	Height     int // Playfield height in world units
	GoalWidth  int // Goal mouth depth, inset from each horizontal edge
	GoalHeight int // Goal mouth height, centered vertically
	TickRate   int // Simulation steps per second
}

// DefaultField returns the default field configuration.
func DefaultField() FieldConfig {
	return FieldConfig{
		Width:      800,
		Height:     400,
		GoalWidth:  10,
		GoalHeight: 150,
		TickRate:   60,
	}
}

// FieldFromEnv returns field configuration with environment variable overrides.
// Only the tick rate is overridable; geometry is fixed by the client contract.
func FieldFromEnv() FieldConfig {
	cfg := DefaultField()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and match capacity.
type ResourceLimits struct {
	MaxPlayers            int // Human entities allowed in the match
	MaxWSConnections      int // Hard cap on open WebSocket connections
	MaxWSConnectionsPerIP int // Per-IP WebSocket cap
	ChatMessageMaxLen     int // Longer chat messages are cut
	EventFeedSize         int // Gameplay events kept in memory
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxPlayers:            4,
		MaxWSConnections:      64,
		MaxWSConnectionsPerIP: 8,
		ChatMessageMaxLen:     200,
		EventFeedSize:         256,
	}
}

// LimitsFromEnv returns limits with environment variable overrides.
func LimitsFromEnv() ResourceLimits {
	cfg := DefaultLimits()

	if mp := getEnvInt("MAX_PLAYERS", 0); mp > 0 {
		cfg.MaxPlayers = mp
	}
	if mc := getEnvInt("MAX_WS_CONNECTIONS", 0); mc > 0 {
		cfg.MaxWSConnections = mc
	}

	return cfg
}

// =============================================================================
// CHAT CONFIGURATION
// =============================================================================

// ChatConfig holds per-user chat throttling.
type ChatConfig struct {
	MessagesPerSecond float64
	Burst             int
	IdleCleanup       time.Duration // Limiters unused this long are dropped
}

// DefaultChat returns the default chat configuration.
func DefaultChat() ChatConfig {
	return ChatConfig{
		MessagesPerSecond: 2,
		Burst:             5,
		IdleCleanup:       5 * time.Minute,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	StaticDir      string
	AllowedOrigins []string
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:      5000,
		StaticDir: "public",
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		cfg.StaticDir = dir
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// ObservabilityConfig configures the debug server (pprof + metrics).
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // Localhost only unless ALLOW_DEBUG_EXTERNAL=true
	AllowExternal bool
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservability returns safe defaults.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// ObservabilityFromEnv returns observability configuration with overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := DefaultObservability()

	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.AllowExternal = os.Getenv("ALLOW_DEBUG_EXTERNAL") == "true"
	cfg.BasicAuthUser = os.Getenv("DEBUG_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_PASS")

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Field         FieldConfig
	Server        ServerConfig
	Limits        ResourceLimits
	Chat          ChatConfig
	Observability ObservabilityConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Field:         FieldFromEnv(),
		Server:        ServerFromEnv(),
		Limits:        LimitsFromEnv(),
		Chat:          DefaultChat(),
		Observability: ObservabilityFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
