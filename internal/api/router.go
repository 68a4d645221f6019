package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/WanessaDiniztech/Haxball/internal/game"
	"github.com/WanessaDiniztech/Haxball/internal/metrics"
	"github.com/WanessaDiniztech/Haxball/internal/render"
)

// EngineInterface defines the game engine methods used by the HTTP API.
// It enables mocking for tests without spinning up the tick loop.
type EngineInterface interface {
	// Snapshot returns the latest immutable published state
	Snapshot() *game.Snapshot
	// TickCount returns the number of simulation steps executed
	TickCount() uint64
	// Events returns up to n recent gameplay events, oldest first
	Events(n int) []game.Event
	// GetEventLogStats returns event feed statistics
	GetEventLogStats() map[string]interface{}
}

// ClientCounter reports connected WebSocket clients
type ClientCounter interface {
	ClientCount() int
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine: mockEngine,
//	    Field:  field,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Field sizes the /api/field.png preview
	Field game.Field

	// Clients is optional; stats report zero clients without it
	Clients ClientCounter

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	// If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins are allowed in addition to DefaultOrigins
	CORSOrigins []string

	// StaticDir is served at "/". Empty disables static files.
	StaticDir string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine      EngineInterface
	clients     ClientCounter
	rateLimiter *IPRateLimiter
	renderer    *render.Renderer
}

// NewRouter constructs the HTTP router with all middleware and routes.
// It has no side effects: no goroutines, no listeners, so it is safe to
// use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: append(append([]string{}, DefaultOrigins...), cfg.CORSOrigins...),
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &routerHandlers{
		engine:      cfg.Engine,
		clients:     cfg.Clients,
		rateLimiter: rateLimiter,
		renderer:    render.NewRenderer(cfg.Field),
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Get("/events", h.handleGetEvents)
		r.Get("/field.png", h.handleFieldPNG)
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

// requestMetrics counts requests by method and status
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			// Hijacked by a WebSocket upgrade or nothing written
			status = http.StatusOK
			if r.Header.Get("Upgrade") == "websocket" {
				status = http.StatusSwitchingProtocols
			}
		}
		metrics.RecordRequest(r.Method, status)
	})
}
