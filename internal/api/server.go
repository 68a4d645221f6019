package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/WanessaDiniztech/Haxball/internal/chat"
	"github.com/WanessaDiniztech/Haxball/internal/config"
	"github.com/WanessaDiniztech/Haxball/internal/game"
)

// Engine is everything the server needs from the game engine
type Engine interface {
	EngineInterface
	GameEngine
	Field() game.Field
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	router *chi.Mux
	wsHub  *WebSocketHub
	http   *http.Server
}

// NewServer creates a new API server.
//
// Background workers do NOT start until Start() is called. The hub is
// registered as the engine's snapshot sink here, so NewServer must run
// before the engine's Run loop starts.
func NewServer(engine *game.Engine, cfg config.AppConfig) *Server {
	s := newServer(engine, cfg)
	engine.OnSnapshot = s.wsHub.PublishSnapshot
	return s
}

func newServer(engine Engine, cfg config.AppConfig) *Server {
	s := &Server{
		wsHub: NewWebSocketHub(HubConfig{
			Engine:         engine,
			Chat:           chat.NewHandler(engine, cfg.Chat, cfg.Limits.ChatMessageMaxLen),
			MaxConnections: cfg.Limits.MaxWSConnections,
			MaxPerIP:       cfg.Limits.MaxWSConnectionsPerIP,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Field:       engine.Field(),
		Clients:     s.wsHub,
		CORSOrigins: cfg.Server.AllowedOrigins,
		StaticDir:   cfg.Server.StaticDir,
	})
	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds WebSocket-specific routes to the router.
// These routes need access to the wsHub instance, so they can't be
// part of the generic NewRouter factory.
func (s *Server) setupWebSocketRoutes() {
	// Same endpoint under the Socket.IO path for existing clients
	s.router.Get("/socket.io/", s.handleSocketIO)
	s.router.Get("/ws", s.wsHub.HandleWebSocket)
}

// Start runs the hub and serves HTTP until ctx is cancelled, then shuts
// the listener down gracefully. Call it only once.
func (s *Server) Start(ctx context.Context, port int) error {
	go s.wsHub.Run(ctx)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 API server starting on :%d", port)
		log.Printf("⚽ Game: http://localhost:%d", port)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

func (s *Server) handleSocketIO(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Upgrade") == "websocket" {
		s.wsHub.HandleWebSocket(w, r)
		return
	}

	// No long-polling fallback, only WebSocket
	writeError(w, "use websocket", http.StatusNotFound)
}
