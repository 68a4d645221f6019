package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/WanessaDiniztech/Haxball/internal/game"
)

const (
	defaultLeaderboardSize = 10
	defaultEventsLimit     = 50
	maxEventsLimit         = 500
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()

	humans, bots := 0, 0
	for _, p := range snap.Players {
		if p.Entity.IsBot {
			bots++
		} else {
			humans++
		}
	}

	clients := 0
	if h.clients != nil {
		clients = h.clients.ClientCount()
	}

	writeJSON(w, map[string]interface{}{
		"tick":        h.engine.TickCount(),
		"running":     snap.Running,
		"entityCount": len(snap.Players),
		"humanCount":  humans,
		"botCount":    bots,
		"score":       snap.Score,
		"elapsedTime": snap.ElapsedTime,
		"wsClients":   clients,
		"eventLog":    h.engine.GetEventLogStats(),
		"rateLimit":   h.rateLimiter.GetStats(),
	})
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r, defaultLeaderboardSize, 0)
	if !ok {
		return
	}
	writeJSON(w, game.Leaderboard(h.engine.Snapshot(), limit))
}

func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r, defaultEventsLimit, maxEventsLimit)
	if !ok {
		return
	}
	writeJSON(w, h.engine.Events(limit))
}

func (h *routerHandlers) handleFieldPNG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.EncodePNG(w, h.engine.Snapshot()); err != nil {
		log.Printf("⚠️ Field render failed: %v", err)
	}
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"tick":   h.engine.TickCount(),
	})
}

// queryLimit parses ?limit=. Zero max means no upper bound.
func queryLimit(w http.ResponseWriter, r *http.Request, def, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeError(w, "limit must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit, true
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
