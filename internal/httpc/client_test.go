package httpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-panorama/pkg/protocol"
	"github.com/teslashibe/go-panorama/pkg/relay"
)

func startServer(t *testing.T, addr string) {
	t.Helper()
	r := relay.New()
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	r.RegisterRoutes(app)
	r.RegisterAPIRoutes(app.Group("/api"))

	go app.Listen(addr)
	t.Cleanup(func() { app.Shutdown() })
	time.Sleep(100 * time.Millisecond)
}

func readUntil(t *testing.T, ws *websocket.Conn, want protocol.MessageType) *protocol.Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			t.Fatalf("ParseMessage() error = %v", err)
		}
		if msg.Type == want {
			return msg
		}
	}
}

func TestNewTrimsBase(t *testing.T) {
	c := New("http://localhost:8080/")
	if c.base != "http://localhost:8080" {
		t.Errorf("base = %q", c.base)
	}
	if c.http != HTTP {
		t.Error("New should use the shared client")
	}

	hc := NewHTTPClient(time.Second)
	if c.WithHTTPClient(hc).http != hc || c.http != HTTP {
		t.Error("WithHTTPClient should copy the client")
	}
}

func TestEmptyServer(t *testing.T) {
	startServer(t, ":18130")
	c := New("http://localhost:18130")
	ctx := context.Background()

	list, err := c.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions error: %v", err)
	}
	if list.Count != 0 || len(list.Sessions) != 0 {
		t.Errorf("list = %+v, want empty", list)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.SessionCount != 0 {
		t.Errorf("SessionCount = %d, want 0", stats.SessionCount)
	}

	if _, err := c.Session(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Session() error = %v, want ErrNotFound", err)
	}
	if err := c.Skip(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Skip() error = %v, want ErrNotFound", err)
	}
}

func TestLoadAndInspect(t *testing.T) {
	startServer(t, ":18131")
	c := New("http://localhost:18131")
	ctx := context.Background()

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18131/ws/player/api", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()
	readUntil(t, ws, protocol.TypeWelcome)

	if err := c.Load(ctx, "api", "https://example.com/b.mp4"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	cmd, _ := readUntil(t, ws, protocol.TypeMediaCmd).GetMediaCommand()
	if cmd.Op != protocol.MediaLoad || cmd.Src != "https://example.com/b.mp4" {
		t.Errorf("command = %+v", cmd)
	}

	// The state snapshot may trail the command slightly
	deadline := time.Now().Add(2 * time.Second)
	for {
		info, err := c.Session(ctx, "api")
		if err != nil {
			t.Fatalf("Session error: %v", err)
		}
		if info.ID == "api" && info.UI.URL == "https://example.com/b.mp4" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("info = %+v", info)
		}
		time.Sleep(10 * time.Millisecond)
	}

	list, err := c.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions error: %v", err)
	}
	if list.Count != 1 || list.Sessions[0].ID != "api" {
		t.Errorf("list = %+v", list)
	}

	if err := c.Control(ctx, "api", "fullscreen", ""); err != nil {
		t.Fatalf("Control error: %v", err)
	}
	fs, _ := readUntil(t, ws, protocol.TypeFullscreen).GetFullscreenCommand()
	if !fs.Enter {
		t.Error("fullscreen command should enter")
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sessions/a/load":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"url required"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("send failed\n"))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	tests := []struct {
		name     string
		call     func() error
		wantCode int
		wantMsg  string
	}{
		{"json body", func() error { return c.Load(context.Background(), "a", "") }, 400, "url required"},
		{"plain body", func() error { return c.Skip(context.Background(), "a") }, 503, "send failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *APIError
			if err := tt.call(); !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.wantCode || apiErr.Message != tt.wantMsg {
				t.Errorf("APIError = %+v", apiErr)
			}
		})
	}
}
