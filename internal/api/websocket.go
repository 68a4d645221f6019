package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/WanessaDiniztech/Haxball/internal/chat"
	"github.com/WanessaDiniztech/Haxball/internal/game"
	"github.com/WanessaDiniztech/Haxball/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	clientSendSize = 64
)

// Wire event names
const (
	EventSetNameColor = "setNameColor"
	EventPlayerMove   = "playerMove"
	EventChatMessage  = "chatMessage"
	EventInit         = "init"
	EventGameState    = "gameState"
	EventError        = "error"
)

// GameEngine is the part of the engine the hub drives
type GameEngine interface {
	Join(ctx context.Context, id, name string, color game.Color) (game.JoinResult, error)
	Intent(id string, dx, dy float64)
	Leave(ctx context.Context, id string) error
	Snapshot() *game.Snapshot
}

// HubConfig contains the hub's limits and collaborators
type HubConfig struct {
	Engine         GameEngine
	Chat           *chat.Handler
	MaxConnections int
	MaxPerIP       int
	AllowedOrigins []string
}

type frame struct {
	messageType int
	data        []byte
}

// wsClient is one connection. Its identity is assigned at connect time and
// becomes an entity only after setNameColor.
type wsClient struct {
	id    string
	conn  *websocket.Conn
	ip    string
	codec Codec
	send  chan frame

	closed    chan struct{}
	closeOnce sync.Once

	// Owned by the read goroutine
	joined bool
	name   string
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// enqueue never blocks; a full queue drops the frame.
func (c *wsClient) enqueue(f frame) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		metrics.RecordWSMessage("dropped")
		return false
	}
}

func (c *wsClient) sendEvent(event string, data interface{}) {
	msg, err := c.codec.Encode(event, data)
	if err != nil {
		log.Printf("⚠️ Encode %s for %s failed: %v", event, c.id, err)
		return
	}
	c.enqueue(frame{messageType: c.codec.MessageType(), data: msg})
}

type broadcastMsg struct {
	event string
	data  interface{}
}

// WebSocketHub manages all WebSocket connections with DoS protection.
// Its Run goroutine owns the client set and fans out snapshots and chat.
type WebSocketHub struct {
	engine GameEngine
	chat   *chat.Handler

	clients    map[*wsClient]struct{}
	register   chan *wsClient
	unregister chan *wsClient
	snapshots  chan *game.Snapshot
	broadcast  chan broadcastMsg
	done       chan struct{}
	mu         sync.RWMutex

	maxConnections int
	connLimiter    *ConnLimiter
	upgrader       websocket.Upgrader
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub(cfg HubConfig) *WebSocketHub {
	h := &WebSocketHub{
		engine:         cfg.Engine,
		chat:           cfg.Chat,
		clients:        make(map[*wsClient]struct{}),
		register:       make(chan *wsClient),
		unregister:     make(chan *wsClient),
		snapshots:      make(chan *game.Snapshot, 1),
		broadcast:      make(chan broadcastMsg, 256),
		done:           make(chan struct{}),
		maxConnections: cfg.MaxConnections,
		connLimiter:    NewConnLimiter(cfg.MaxPerIP),
	}

	origins := append(append([]string{}, DefaultOrigins...), cfg.AllowedOrigins...)
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if OriginAllowed(r, origins) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", r.Header.Get("Origin"))
			metrics.RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run starts the hub. It returns when ctx is cancelled, closing every client.
func (h *WebSocketHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			metrics.UpdateWSConnections(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client %s connected from %s (%d total, %d from this IP)", c.id, c.ip, count, h.connLimiter.Count(c.ip))
			metrics.UpdateWSConnections(count)

		case c := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[c]
			delete(h.clients, c)
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				h.connLimiter.Release(c.ip)
				c.close()
				log.Printf("📱 Client %s disconnected (%d remaining)", c.id, count)
				metrics.UpdateWSConnections(count)
			}

		case snap := <-h.snapshots:
			h.fanOut(EventGameState, snap)

		case msg := <-h.broadcast:
			h.fanOut(msg.event, msg.data)
		}
	}
}

// fanOut encodes a message once per codec and queues it on every client.
func (h *WebSocketHub) fanOut(event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	encoded := make(map[string][]byte, 2)
	for c := range h.clients {
		name := c.codec.Name()
		msg, ok := encoded[name]
		if !ok {
			var err error
			msg, err = c.codec.Encode(event, data)
			if err != nil {
				log.Printf("⚠️ Encode %s (%s) failed: %v", event, name, err)
				return
			}
			encoded[name] = msg
		}
		if c.enqueue(frame{messageType: c.codec.MessageType(), data: msg}) {
			metrics.RecordWSMessage("out")
		}
	}
}

// PublishSnapshot hands a tick's snapshot to the hub. It never blocks: a
// snapshot the hub has not picked up yet is replaced by the newer one and
// counted as coalesced.
// It is meant to be the engine's OnSnapshot callback (single producer).
func (h *WebSocketHub) PublishSnapshot(snap *game.Snapshot) {
	select {
	case h.snapshots <- snap:
		return
	default:
	}
	select {
	case <-h.snapshots:
		metrics.RecordWSMessage("coalesced")
	default:
	}
	select {
	case h.snapshots <- snap:
	default:
	}
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	select {
	case h.broadcast <- broadcastMsg{event: event, data: data}:
	default:
		// Channel full, skip (backpressure)
		metrics.RecordWSMessage("dropped")
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.maxConnections > 0 && h.ClientCount() >= h.maxConnections {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", h.maxConnections)
		metrics.RecordConnectionRejected("ws_total_limit")
		writeError(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.connLimiter.Acquire(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		metrics.RecordConnectionRejected("ws_ip_limit")
		writeError(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.connLimiter.Release(ip)
		return
	}

	c := &wsClient{
		id:     uuid.NewString(),
		conn:   conn,
		ip:     ip,
		codec:  CodecFromRequest(r),
		send:   make(chan frame, clientSendSize),
		closed: make(chan struct{}),
	}

	select {
	case h.register <- c:
	case <-h.done:
		h.connLimiter.Release(ip)
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// writePump is the only writer on the connection.
func (h *WebSocketHub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(f.messageType, f.data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump decodes client commands until the connection fails, then
// removes the client's entity and unregisters it.
func (h *WebSocketHub) readPump(c *wsClient) {
	defer func() {
		// A join that timed out may still be applied, so leave regardless
		// of c.joined. Unknown identities are ignored by the engine.
		if err := h.engine.Leave(context.Background(), c.id); err != nil && !errors.Is(err, game.ErrEngineStopped) {
			log.Printf("⚠️ Leave %s failed: %v", c.id, err)
		}
		if h.chat != nil {
			h.chat.Forget(c.id)
		}
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ WebSocket read error from %s: %v", c.id, err)
			}
			return
		}
		metrics.RecordWSMessage("in")

		in, err := c.codec.Decode(msg)
		if err != nil {
			c.sendEvent(EventError, errorMessage{Message: "malformed message"})
			continue
		}
		h.dispatch(c, in)
	}
}

type errorMessage struct {
	Message string `json:"message"`
}

type setNameColorData struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type playerMoveData struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (h *WebSocketHub) dispatch(c *wsClient, in Inbound) {
	switch in.Event {
	case EventSetNameColor:
		var data setNameColorData
		if err := in.Bind(&data); err != nil {
			c.sendEvent(EventError, errorMessage{Message: "invalid setNameColor"})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		res, err := h.engine.Join(ctx, c.id, data.Name, game.Color(data.Color))
		cancel()
		if err != nil {
			log.Printf("⚠️ Join %s failed: %v", c.id, err)
			msg := "join failed"
			if errors.Is(err, game.ErrMatchFull) {
				msg = "match is full"
			}
			c.sendEvent(EventError, errorMessage{Message: msg})
			return
		}
		c.joined = true
		c.name = res.Name
		c.sendEvent(EventInit, res)

	case EventPlayerMove:
		if !c.joined {
			return
		}
		var data playerMoveData
		if err := in.Bind(&data); err != nil {
			return
		}
		h.engine.Intent(c.id, data.DX, data.DY)

	case EventChatMessage:
		if !c.joined || h.chat == nil {
			return
		}
		var text string
		if err := in.Bind(&text); err != nil {
			return
		}
		reply, ok := h.chat.Handle(c.id, c.name, text)
		if !ok {
			return
		}
		if reply.Private {
			c.sendEvent(EventChatMessage, reply.Message)
			return
		}
		h.Broadcast(EventChatMessage, reply.Message)

	default:
		c.sendEvent(EventError, errorMessage{Message: "unknown event"})
	}
}
