package hub

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gorilla "github.com/gorilla/websocket"
)

func TestNew(t *testing.T) {
	h := New("test")

	if h.ClientCount() != 0 {
		t.Error("ClientCount should be 0 initially")
	}
	if h.IsRunning() {
		t.Error("hub should not be running before Run")
	}
}

func TestBroadcastJSONError(t *testing.T) {
	h := New("test")

	if err := h.BroadcastJSON("a", make(chan int)); err == nil {
		t.Error("BroadcastJSON should fail for unmarshalable values")
	}
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := New("test")

	// Not running: the channel fills and further broadcasts are dropped
	for i := 0; i < 257; i++ {
		h.Broadcast(NewMessage("a", []byte("{}")))
	}
	if h.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", h.Dropped())
	}
}

func startHub(t *testing.T, addr string) *Hub {
	t.Helper()
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Get("/ws/:topic?", websocket.New(func(c *websocket.Conn) {
		NewClient(h, c, c.Params("topic")).Run()
	}))

	go app.Listen(addr)
	t.Cleanup(func() {
		cancel()
		app.Shutdown()
	})
	time.Sleep(100 * time.Millisecond)
	return h
}

func dial(t *testing.T, url string) *gorilla.Conn {
	t.Helper()
	ws, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want %d", h.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func read(t *testing.T, ws *gorilla.Conn) string {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	return string(data)
}

func TestTopicFiltering(t *testing.T) {
	h := startHub(t, ":18100")

	all := dial(t, "ws://localhost:18100/ws")
	onlyA := dial(t, "ws://localhost:18100/ws/a")
	waitClients(t, h, 2)

	h.BroadcastJSON("b", map[string]string{"session": "b"})
	h.BroadcastJSON("a", map[string]string{"session": "a"})

	if got := read(t, all); got != `{"session":"b"}` {
		t.Errorf("all[0] = %s", got)
	}
	if got := read(t, all); got != `{"session":"a"}` {
		t.Errorf("all[1] = %s", got)
	}
	if got := read(t, onlyA); got != `{"session":"a"}` {
		t.Errorf("onlyA[0] = %s, want the topic a message", got)
	}
}

func TestReplayLatest(t *testing.T) {
	h := startHub(t, ":18101")

	h.BroadcastJSON("a", map[string]int{"n": 1})
	h.BroadcastJSON("a", map[string]int{"n": 2})
	time.Sleep(50 * time.Millisecond)

	ws := dial(t, "ws://localhost:18101/ws/a")
	if got := read(t, ws); got != `{"n":2}` {
		t.Errorf("replayed = %s, want latest", got)
	}
}

func TestForget(t *testing.T) {
	h := startHub(t, ":18102")

	h.BroadcastJSON("gone", map[string]int{"n": 1})
	time.Sleep(50 * time.Millisecond)
	h.Forget("gone")

	ws := dial(t, "ws://localhost:18102/ws")
	waitClients(t, h, 1)
	h.BroadcastJSON("live", map[string]int{"n": 2})

	if got := read(t, ws); got != `{"n":2}` {
		t.Errorf("first message = %s, forgotten topic should not replay", got)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h := startHub(t, ":18103")

	ws := dial(t, "ws://localhost:18103/ws")
	waitClients(t, h, 1)

	ws.Close()
	waitClients(t, h, 0)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if h.IsRunning() {
		t.Error("IsRunning should be false after Run returns")
	}
}
