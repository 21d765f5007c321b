package remote

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-panorama/pkg/protocol"
	"github.com/teslashibe/go-panorama/pkg/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// echoServer writes every message it receives straight back
func echoServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := Dial(ctx, "ws://127.0.0.1:1/ws/player"); err == nil {
		t.Error("Dial should fail when nothing listens")
	}
}

func TestSendAndDispatch(t *testing.T) {
	c, err := Dial(context.Background(), echoServer(t))
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}

	got := make(chan *protocol.Message, 4)
	c.OnMessage(func(m *protocol.Message) { got <- m })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	if err := c.SendControl("skip", ""); err != nil {
		t.Fatalf("SendControl error: %v", err)
	}

	select {
	case m := <-got:
		ctl, _ := m.GetControlData()
		if m.Type != protocol.TypeControl || ctl.Action != "skip" {
			t.Errorf("echo = %s %+v", m.Type, ctl)
		}
	case <-time.After(time.Second):
		t.Fatal("no message dispatched")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSendAfterClose(t *testing.T) {
	c, err := Dial(context.Background(), echoServer(t))
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
	if err := c.Ping("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() after Close = %v, want ErrClosed", err)
	}
}

// startRelay serves a relay on addr for end-to-end tests
func startRelay(t *testing.T, addr string) *relay.Relay {
	t.Helper()
	r := relay.New()
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	r.RegisterRoutes(app)

	go app.Listen(addr)
	t.Cleanup(func() { app.Shutdown() })
	time.Sleep(100 * time.Millisecond)
	return r
}

func connectPage(t *testing.T, url string, duration float64) *Page {
	t.Helper()
	c, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	page := NewPage(c, duration)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return page
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPageAgainstRelay(t *testing.T) {
	startRelay(t, ":18120")
	page := connectPage(t, "ws://localhost:18120/ws/player/page", 120)
	c := page.Client()

	eventually(t, "welcome", func() bool { return page.SessionID() == "page" })

	if err := page.Ready(); err != nil {
		t.Fatalf("Ready error: %v", err)
	}
	if err := c.SendControl("load", "https://example.com/pano.mp4"); err != nil {
		t.Fatalf("SendControl error: %v", err)
	}

	// load → loadedmetadata → visible controls with the duration label
	eventually(t, "metadata", func() bool {
		ui := page.UI()
		return ui.Visible && ui.Duration == "02:00"
	})
	if src := page.Media().Src; src != "https://example.com/pano.mp4" {
		t.Errorf("Src = %q", src)
	}

	if err := c.SendControl("play", ""); err != nil {
		t.Fatalf("SendControl error: %v", err)
	}
	eventually(t, "playback", func() bool { return !page.Media().Paused })
	eventually(t, "pause glyph", func() bool { return page.UI().PlayPause == "pause" })

	scene := protocol.TargetRef{ID: "scene"}
	c.SendInput("touchstart", 0, 0, scene)
	c.SendInput("touchmove", 20, 10, scene)
	eventually(t, "rotation", func() bool {
		r := page.Rotation()
		return math.Abs(r.Yaw-4) < 1e-9 && math.Abs(r.Pitch-2) < 1e-9
	})

	if err := c.SendControl("fullscreen", ""); err != nil {
		t.Fatalf("SendControl error: %v", err)
	}
	eventually(t, "fullscreen", func() bool {
		return page.Fullscreen() && page.UI().Fullscreen == "compress"
	})
}

func TestRunnerAgainstRelay(t *testing.T) {
	startRelay(t, ":18121")
	page := connectPage(t, "ws://localhost:18121/ws/player/script", 0)
	eventually(t, "welcome", func() bool { return page.SessionID() == "script" })

	script, err := ParseScript([]byte(`
duration: 200
steps:
  - ready: true
  - control: {action: load, value: clip.mp4}
  - wait: 100ms
    track: {left: 100, width: 400}
  - input: {kind: click, x: 300, y: 5, target: {id: progress-container}}
`))
	if err != nil {
		t.Fatalf("ParseScript error: %v", err)
	}

	var steps int
	runner := NewRunner(page)
	runner.OnStep = func(int, Step) { steps++ }
	if err := runner.Run(context.Background(), script); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if steps != 4 {
		t.Errorf("steps = %d, want 4", steps)
	}

	// Click at the middle of the track seeks to half of 200s
	eventually(t, "seek", func() bool {
		return page.Media().CurrentTime == 100 && page.UI().Elapsed == "01:40"
	})

	var ops []string
	for _, cmd := range page.Commands() {
		ops = append(ops, cmd.Op)
	}
	if len(ops) != 2 || ops[0] != protocol.MediaLoad || ops[1] != protocol.MediaSeek {
		t.Errorf("commands = %v, want [load seek]", ops)
	}
}

func TestRunnerCancel(t *testing.T) {
	c, err := Dial(context.Background(), echoServer(t))
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(NewPage(c, 0))
	err = runner.Run(ctx, &Script{Steps: []Step{{Wait: time.Hour}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
