// Package remote is a Go-side player page: it speaks the player protocol
// over a WebSocket the way the browser does, for replaying recorded
// sessions and for end-to-end tests.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-panorama/internal/log"
	"github.com/teslashibe/go-panorama/pkg/protocol"
)

// ErrClosed is returned when sending on a closed client.
var ErrClosed = errors.New("remote: client closed")

const writeWait = 5 * time.Second

// Client is a protocol connection to a player relay
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	closed bool

	handlerMu sync.RWMutex
	handlers  []func(*protocol.Message)
}

// Dial connects to a relay endpoint such as ws://host:8080/ws/player/abc
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{
		conn:   conn,
		logger: log.For("remote"),
	}, nil
}

// OnMessage registers fn for every message read by Run
func (c *Client) OnMessage(fn func(*protocol.Message)) {
	c.handlerMu.Lock()
	c.handlers = append(c.handlers, fn)
	c.handlerMu.Unlock()
}

// Run reads messages and dispatches them until the connection closes or
// ctx is done.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || c.isClosed() {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			c.logger.Warn("bad message from relay", "error", err)
			continue
		}

		c.handlerMu.RLock()
		handlers := c.handlers
		c.handlerMu.RUnlock()
		for _, fn := range handlers {
			fn(msg)
		}
	}
}

// Send writes msg. Safe for concurrent use.
func (c *Client) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) send(msg *protocol.Message, err error) error {
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// SendInput sends a document input event
func (c *Client) SendInput(kind string, x, y float64, target protocol.TargetRef) error {
	return c.send(protocol.NewInputMessage(kind, x, y, target))
}

// SendMedia sends a media element event with its state snapshot
func (c *Client) SendMedia(name string, snap protocol.MediaSnapshot) error {
	return c.send(protocol.NewMediaMessage(name, snap))
}

// SendControl sends a transport control action
func (c *Client) SendControl(action, value string) error {
	return c.send(protocol.NewControlMessage(action, value))
}

// SendTrack sends the progress track geometry
func (c *Client) SendTrack(left, width float64) error {
	return c.send(protocol.NewTrackMessage(left, width))
}

// Ping sends a ping
func (c *Client) Ping(id string) error {
	return c.send(protocol.NewPingMessage(id))
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close sends a close frame and closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return c.conn.Close()
}
