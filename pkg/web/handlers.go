package web

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-panorama/pkg/hub"
	"github.com/teslashibe/go-panorama/pkg/relay"
)

// Status is the /api/status response
type Status struct {
	Status    string      `json:"status"`
	Version   string      `json:"version"`
	Uptime    string      `json:"uptime"`
	Sessions  int         `json:"sessions"`
	Observers int         `json:"observers"`
	Relay     relay.Stats `json:"relay"`
}

// handleStatus returns server and relay state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(Status{
		Status:    "ok",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Sessions:  s.relay.Count(),
		Observers: s.stateHub.ClientCount() + s.activityHub.ClientCount(),
		Relay:     s.relay.GetStats(),
	})
}

// handleHealth is a liveness probe
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"version":  s.version,
		"sessions": s.relay.Count(),
	})
}

// handleMetrics exposes counters in Prometheus text format
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	stats := s.relay.GetStats()
	return c.SendString(fmt.Sprintf(`# HELP vrplayer_sessions Connected player sessions
# TYPE vrplayer_sessions gauge
vrplayer_sessions %d

# HELP vrplayer_messages_received Total messages received from players
# TYPE vrplayer_messages_received counter
vrplayer_messages_received %d

# HELP vrplayer_messages_sent Total messages sent to players
# TYPE vrplayer_messages_sent counter
vrplayer_messages_sent %d

# HELP vrplayer_messages_rejected Total player messages rejected
# TYPE vrplayer_messages_rejected counter
vrplayer_messages_rejected %d

# HELP vrplayer_state_dropped State broadcasts dropped under backpressure
# TYPE vrplayer_state_dropped counter
vrplayer_state_dropped %d
`, stats.SessionCount, stats.MessagesReceived, stats.MessagesSent, stats.Rejected, s.stateHub.Dropped()))
}

// handleGetActivity returns recent connection events
func (s *Server) handleGetActivity(c *fiber.Ctx) error {
	s.activityMu.RLock()
	defer s.activityMu.RUnlock()
	return c.JSON(s.activity)
}

// handleStateWS streams UI state, for one session when an ID is given
func (s *Server) handleStateWS(c *websocket.Conn) {
	hub.NewClient(s.stateHub, c, c.Params("id")).Run()
}

// handleActivityWS streams connection events
func (s *Server) handleActivityWS(c *websocket.Conn) {
	hub.NewClient(s.activityHub, c, "").Run()
}
