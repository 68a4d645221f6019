// Package metrics holds the Prometheus collectors shared by the engine and the transport.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality (no per-player labels to prevent DoS)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in one simulation step",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.0167},
	})

	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_ticks_total",
		Help: "Simulation steps executed",
	})

	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "game_entity_count",
		Help: "Current number of entities on the field",
	}, []string{"kind"}) // Bounded: "human", "bot"

	goalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_goals_total",
		Help: "Goals scored",
	}, []string{"side"}) // Bounded: "blue", "red"

	kicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_kicks_total",
		Help: "Ball contacts counted as kicks",
	}, []string{"kind"}) // Bounded: "human", "bot"

	commandsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_commands_dropped_total",
		Help: "Intents dropped because the engine inbox was full",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "WebSocket messages by direction",
	}, []string{"direction"}) // Bounded: "in", "out", "dropped", "coalesced"

	chatMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Chat messages handled",
	}, []string{"result"}) // Bounded: "broadcast", "command", "rate_limited"
)

// RecordTick records one simulation step.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
	ticksTotal.Inc()
}

// UpdateEntityCount updates the entity gauges.
func UpdateEntityCount(humans int, bots int) {
	entityCount.WithLabelValues("human").Set(float64(humans))
	entityCount.WithLabelValues("bot").Set(float64(bots))
}

// RecordGoal increments the goal counter for the scoring side.
func RecordGoal(side string) {
	goalsTotal.WithLabelValues(side).Inc()
}

// RecordKick increments the kick counter.
func RecordKick(bot bool) {
	kind := "human"
	if bot {
		kind = "bot"
	}
	kicksTotal.WithLabelValues(kind).Inc()
}

// RecordCommandDropped counts an intent that did not fit in the inbox.
func RecordCommandDropped() {
	commandsDropped.Inc()
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records an HTTP request.
func RecordRequest(method string, status int) {
	requestTotal.WithLabelValues(method, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// RecordWSMessage counts a WebSocket message; direction is "in", "out", "dropped" or "coalesced".
func RecordWSMessage(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}

// RecordChat counts a chat message by result.
func RecordChat(result string) {
	chatMessagesTotal.WithLabelValues(result).Inc()
}
