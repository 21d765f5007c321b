package session

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/teslashibe/go-panorama/pkg/gesture"
	"github.com/teslashibe/go-panorama/pkg/protocol"
)

// Sender delivers messages to the browser. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(msg *protocol.Message) error
}

// outbox builds and sends messages, logging failures.
type outbox struct {
	sender Sender
	logger *slog.Logger
}

func (o *outbox) send(msg *protocol.Message, err error) error {
	if err != nil {
		o.logger.Error("build message", "error", err)
		return err
	}
	if err := o.sender.Send(msg); err != nil {
		o.logger.Warn("send failed", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

// remoteMedia mirrors the browser's video element. The mirror is refreshed
// from each media event's snapshot and updated optimistically when a
// command is issued, the way the element itself updates paused/currentTime
// synchronously.
type remoteMedia struct {
	out *outbox

	mu       sync.RWMutex
	current  float64
	duration float64
	paused   bool
	ended    bool
	src      string
}

func newRemoteMedia(out *outbox) *remoteMedia {
	return &remoteMedia{out: out, duration: math.NaN(), paused: true}
}

func (m *remoteMedia) apply(snap protocol.MediaSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = snap.CurrentTime
	if snap.Duration != nil {
		m.duration = *snap.Duration
	} else {
		m.duration = math.NaN()
	}
	m.paused = snap.Paused
	m.ended = snap.Ended
	if snap.Src != "" {
		m.src = snap.Src
	}
}

func (m *remoteMedia) snapshot() protocol.MediaSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := protocol.MediaSnapshot{
		CurrentTime: m.current,
		Paused:      m.paused,
		Ended:       m.ended,
		Src:         m.src,
	}
	if !math.IsNaN(m.duration) {
		snap.Duration = protocol.Float(m.duration)
	}
	return snap
}

func (m *remoteMedia) CurrentTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *remoteMedia) SetCurrentTime(t float64) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
	m.out.send(protocol.NewMediaCommandMessage(protocol.MediaCommand{Op: protocol.MediaSeek, Time: t}))
}

func (m *remoteMedia) Duration() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.duration
}

func (m *remoteMedia) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

func (m *remoteMedia) Ended() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ended
}

func (m *remoteMedia) Source() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.src
}

// SetSource records the new source. Like assigning video.src, it resets the
// element until the browser reports fresh metadata.
func (m *remoteMedia) SetSource(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = url
	m.current = 0
	m.duration = math.NaN()
	m.paused = true
	m.ended = false
}

func (m *remoteMedia) Play() error {
	if err := m.out.send(protocol.NewMediaCommandMessage(protocol.MediaCommand{Op: protocol.MediaPlay})); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	m.mu.Lock()
	m.paused = false
	m.ended = false
	m.mu.Unlock()
	return nil
}

func (m *remoteMedia) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	m.out.send(protocol.NewMediaCommandMessage(protocol.MediaCommand{Op: protocol.MediaPause}))
}

func (m *remoteMedia) Load() {
	src := m.Source()
	m.out.send(protocol.NewMediaCommandMessage(protocol.MediaCommand{Op: protocol.MediaLoad, Src: src}))
}

// remoteCamera mirrors the scene camera rotation.
type remoteCamera struct {
	out *outbox

	mu sync.RWMutex
	o  gesture.Orientation
}

func (c *remoteCamera) Orientation() gesture.Orientation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.o
}

func (c *remoteCamera) SetOrientation(o gesture.Orientation) {
	c.mu.Lock()
	c.o = o
	c.mu.Unlock()
	c.out.send(protocol.NewRotationMessage(o.Yaw, o.Pitch))
}

// remoteFullscreen mirrors document.fullscreenElement != null.
type remoteFullscreen struct {
	out *outbox

	mu   sync.RWMutex
	full bool
}

func (f *remoteFullscreen) set(full bool) {
	f.mu.Lock()
	f.full = full
	f.mu.Unlock()
}

func (f *remoteFullscreen) IsFullscreen() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.full
}

func (f *remoteFullscreen) RequestFullscreen() error {
	return f.out.send(protocol.NewFullscreenMessage(true))
}

func (f *remoteFullscreen) ExitFullscreen() error {
	return f.out.send(protocol.NewFullscreenMessage(false))
}
