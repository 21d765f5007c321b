// Package relay accepts player page WebSocket connections and runs one
// session per page.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-panorama/internal/log"
	"github.com/teslashibe/go-panorama/pkg/events"
	"github.com/teslashibe/go-panorama/pkg/gesture"
	"github.com/teslashibe/go-panorama/pkg/player"
	"github.com/teslashibe/go-panorama/pkg/protocol"
	"github.com/teslashibe/go-panorama/pkg/session"
)

// ErrSessionNotFound is returned when no player is connected under an ID.
var ErrSessionNotFound = errors.New("relay: session not found")

// PlayerConnection represents a connected player page
type PlayerConnection struct {
	ID        string
	Conn      *websocket.Conn
	Session   *session.Session
	Connected time.Time
	LastSeen  time.Time

	relay *Relay
	mu    sync.Mutex
}

// Send sends a message to the player page. Safe for concurrent use.
func (p *PlayerConnection) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	p.relay.messagesSent.Add(1)
	return nil
}

func (p *PlayerConnection) touch() {
	p.mu.Lock()
	p.LastSeen = time.Now()
	p.mu.Unlock()
}

// Option configures a Relay.
type Option func(*Relay)

// WithSessionOptions passes options to every session the relay creates.
func WithSessionOptions(opts ...session.Option) Option {
	return func(r *Relay) {
		r.sessionOpts = append(r.sessionOpts, opts...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// Relay manages WebSocket connections from player pages
type Relay struct {
	mu          sync.RWMutex
	players     map[string]*PlayerConnection
	sessionOpts []session.Option
	logger      *slog.Logger

	// Callbacks
	onConnect    func(id string)
	onDisconnect func(id string)
	onState      func(id string, ui player.UIState)

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	rejected         atomic.Uint64
}

// New creates a new player relay
func New(opts ...Option) *Relay {
	r := &Relay{
		players: make(map[string]*PlayerConnection),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.For("relay")
	}
	return r
}

// OnConnect sets the callback for new player connections
func (r *Relay) OnConnect(callback func(id string)) {
	r.mu.Lock()
	r.onConnect = callback
	r.mu.Unlock()
}

// OnDisconnect sets the callback for closed player connections
func (r *Relay) OnDisconnect(callback func(id string)) {
	r.mu.Lock()
	r.onDisconnect = callback
	r.mu.Unlock()
}

// OnState sets the callback for UI state changes in any session
func (r *Relay) OnState(callback func(id string, ui player.UIState)) {
	r.mu.Lock()
	r.onState = callback
	r.mu.Unlock()
}

func (r *Relay) dispatchState(id string, ui player.UIState) {
	r.mu.RLock()
	cb := r.onState
	r.mu.RUnlock()
	if cb != nil {
		cb(id, ui)
	}
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (r *Relay) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/player", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/player", websocket.New(r.handlePlayer))
	app.Get("/ws/player/:id", websocket.New(r.handlePlayer))
}

// handlePlayer runs one player connection until the page goes away
func (r *Relay) handlePlayer(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	conn := &PlayerConnection{
		ID:        id,
		Conn:      c,
		Connected: now,
		LastSeen:  now,
		relay:     r,
	}

	opts := append([]session.Option{}, r.sessionOpts...)
	opts = append(opts,
		session.WithID(id),
		session.WithLogger(r.logger),
		session.WithStateObserver(r.dispatchState),
	)
	conn.Session = session.New(conn, opts...)

	r.mu.Lock()
	if prev, ok := r.players[id]; ok {
		r.logger.Warn("replacing player connection", "session", id)
		prev.Session.Close()
		prev.Conn.Close()
	}
	r.players[id] = conn
	count := len(r.players)
	connectCb := r.onConnect
	r.mu.Unlock()

	r.logger.Info("player connected", "session", id, "total", count)
	if connectCb != nil {
		connectCb(id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := conn.Session.Run(ctx); err != nil {
			r.logger.Warn("session stopped", "session", id, "error", err)
		}
	}()

	defer func() {
		conn.Session.Close()
		cancel()
		<-done

		r.mu.Lock()
		if r.players[id] == conn {
			delete(r.players, id)
		}
		count := len(r.players)
		disconnectCb := r.onDisconnect
		r.mu.Unlock()

		r.logger.Info("player disconnected", "session", id, "total", count)
		if disconnectCb != nil {
			disconnectCb(id)
		}
	}()

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			r.logger.Debug("player read error", "session", id, "error", err)
			return
		}

		conn.touch()
		r.messagesReceived.Add(1)
		r.handleMessage(conn, data)
	}
}

// handleMessage processes an incoming message from a player page
func (r *Relay) handleMessage(conn *PlayerConnection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		r.rejected.Add(1)
		r.logger.Debug("parse error", "session", conn.ID, "error", err)
		return
	}

	if err := conn.Session.Deliver(msg); err != nil {
		r.rejected.Add(1)
		r.logger.Debug("message rejected", "session", conn.ID, "type", msg.Type, "error", err)
	}
}

// Post enqueues an event on a session's loop
func (r *Relay) Post(id string, ev events.Event) error {
	conn := r.Get(id)
	if conn == nil {
		return ErrSessionNotFound
	}
	return conn.Session.Post(ev)
}

// Control applies a transport control action to a session
func (r *Relay) Control(id, action, value string) error {
	return r.Post(id, events.Event{
		Type:   events.Control,
		Time:   time.Now(),
		Action: action,
		Value:  value,
	})
}

// Broadcast sends a message to all connected players
func (r *Relay) Broadcast(msg *protocol.Message) {
	for _, conn := range r.Connections() {
		if err := conn.Send(msg); err != nil {
			r.logger.Warn("broadcast error", "session", conn.ID, "error", err)
		}
	}
}

// Get returns a player connection by ID
func (r *Relay) Get(id string) *PlayerConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.players[id]
}

// Connections returns all connected players
func (r *Relay) Connections() []*PlayerConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*PlayerConnection, 0, len(r.players))
	for _, p := range r.players {
		conns = append(conns, p)
	}
	return conns
}

// Count returns the number of connected players
func (r *Relay) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Stats contains relay statistics
type Stats struct {
	SessionCount     int    `json:"session_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	Rejected         uint64 `json:"rejected"`
}

// GetStats returns relay statistics
func (r *Relay) GetStats() Stats {
	return Stats{
		SessionCount:     r.Count(),
		MessagesReceived: r.messagesReceived.Load(),
		MessagesSent:     r.messagesSent.Load(),
		Rejected:         r.rejected.Load(),
	}
}

// SessionInfo contains info about a connected player
type SessionInfo struct {
	ID          string                 `json:"id"`
	Connected   time.Time              `json:"connected"`
	LastSeen    time.Time              `json:"last_seen"`
	UI          player.UIState         `json:"ui"`
	Orientation gesture.Orientation    `json:"orientation"`
	Media       protocol.MediaSnapshot `json:"media"`
	Stats       session.Stats          `json:"stats"`
}

func (p *PlayerConnection) info() SessionInfo {
	p.mu.Lock()
	last := p.LastSeen
	p.mu.Unlock()
	return SessionInfo{
		ID:          p.ID,
		Connected:   p.Connected,
		LastSeen:    last,
		UI:          p.Session.State(),
		Orientation: p.Session.Orientation(),
		Media:       p.Session.Media(),
		Stats:       p.Session.Stats(),
	}
}

// GetSessionInfos returns info about all connected players
func (r *Relay) GetSessionInfos() []SessionInfo {
	conns := r.Connections()
	infos := make([]SessionInfo, 0, len(conns))
	for _, p := range conns {
		infos = append(infos, p.info())
	}
	return infos
}

// RegisterAPIRoutes registers API routes for session management
func (r *Relay) RegisterAPIRoutes(api fiber.Router) {
	sessions := api.Group("/sessions")

	// List connected players
	sessions.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions": r.GetSessionInfos(),
			"count":    r.Count(),
		})
	})

	// Get relay stats
	sessions.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(r.GetStats())
	})

	// Get one session
	sessions.Get("/:id", func(c *fiber.Ctx) error {
		conn := r.Get(c.Params("id"))
		if conn == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrSessionNotFound.Error()})
		}
		return c.JSON(conn.info())
	})

	// Load a new source
	sessions.Post("/:id/load", func(c *fiber.Ctx) error {
		var req struct {
			URL string `json:"url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if req.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url required"})
		}
		return r.respond(c, r.Control(c.Params("id"), events.ActionSetURL, req.URL))
	})

	// Skip forward
	sessions.Post("/:id/skip", func(c *fiber.Ctx) error {
		return r.respond(c, r.Control(c.Params("id"), events.ActionSkip, ""))
	})

	// Arbitrary transport control
	sessions.Post("/:id/control", func(c *fiber.Ctx) error {
		var req protocol.ControlData
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return r.respond(c, r.Control(c.Params("id"), req.Action, req.Value))
	})
}

func (r *Relay) respond(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "sent"})
	case errors.Is(err, ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
}
