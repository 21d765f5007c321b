// Package web serves the player page, the player relay and the observer
// streams from one Fiber app.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-panorama/internal/config"
	"github.com/teslashibe/go-panorama/internal/log"
	"github.com/teslashibe/go-panorama/pkg/hub"
	"github.com/teslashibe/go-panorama/pkg/player"
	"github.com/teslashibe/go-panorama/pkg/relay"
)

// maxActivity is how many activity entries are kept for /api/activity.
const maxActivity = 200

// StateUpdate is what /ws/state observers receive on every UI change
type StateUpdate struct {
	Session string         `json:"session"`
	UI      player.UIState `json:"ui"`
}

// ActivityEntry represents a connection event for the dashboard
type ActivityEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // connect, disconnect
	Session string `json:"session"`
}

// Server is the player web server
type Server struct {
	app     *fiber.App
	port    string
	version string
	started time.Time
	logger  *slog.Logger

	relay *relay.Relay

	// Hubs for websocket broadcast
	stateHub    *hub.Hub
	activityHub *hub.Hub

	// Activity buffer (last maxActivity entries)
	activity   []ActivityEntry
	activityMu sync.RWMutex

	cancel context.CancelFunc
}

// NewServer creates the server for cfg
func NewServer(cfg config.Config, version string) *Server {
	s := &Server{
		port:        cfg.Server.Port,
		version:     version,
		started:     time.Now(),
		logger:      log.For("web"),
		activity:    make([]ActivityEntry, 0, maxActivity),
		stateHub:    hub.New("state"),
		activityHub: hub.New("activity"),
	}
	s.relay = relay.New(relay.WithSessionOptions(cfg.SessionOptions()...))
	s.relay.OnState(s.publishState)
	s.relay.OnConnect(func(id string) { s.AddActivity("connect", id) })
	s.relay.OnDisconnect(func(id string) {
		s.AddActivity("disconnect", id)
		s.stateHub.Forget(id)
	})

	app := fiber.New(fiber.Config{
		AppName:               "vrplayer",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if cfg.Log.Level == "debug" {
		app.Use(logger.New())
	}

	// Static player page
	if cfg.Server.StaticDir != "" {
		app.Static("/", cfg.Server.StaticDir)
	}

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", s.handleMetrics)

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/activity", s.handleGetActivity)
	s.relay.RegisterAPIRoutes(api)

	// Player connections
	s.relay.RegisterRoutes(app)

	// Observer streams
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/state/:id", websocket.New(s.handleStateWS))
	app.Get("/ws/activity", websocket.New(s.handleActivityWS))

	s.app = app
	return s
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Relay returns the player relay
func (s *Server) Relay() *relay.Relay {
	return s.relay
}

// Start starts the hubs and blocks serving HTTP
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.stateHub.Run(ctx)
	go s.activityHub.Run(ctx)

	s.logger.Info("player server listening",
		"url", fmt.Sprintf("http://localhost:%s", s.port),
		"player_ws", "/ws/player",
		"state_ws", "/ws/state",
	)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server and its hubs
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) publishState(id string, ui player.UIState) {
	if err := s.stateHub.BroadcastJSON(id, StateUpdate{Session: id, UI: ui}); err != nil {
		s.logger.Warn("encode state", "session", id, "error", err)
	}
}

// AddActivity records a connection event and broadcasts it
func (s *Server) AddActivity(kind, session string) {
	entry := ActivityEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    kind,
		Session: session,
	}

	s.activityMu.Lock()
	s.activity = append(s.activity, entry)
	if len(s.activity) > maxActivity {
		s.activity = s.activity[1:]
	}
	s.activityMu.Unlock()

	s.activityHub.BroadcastJSON("", entry)
}
