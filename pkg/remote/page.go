package remote

import (
	"sync"

	"github.com/teslashibe/go-panorama/pkg/protocol"
)

// Page simulates the browser side of a player: a video element that obeys
// media commands and reports the events a real element would fire, plus
// the latest rotation and UI state the session sent.
type Page struct {
	client *Client

	// Duration is reported in loadedmetadata after every load.
	Duration float64

	mu         sync.RWMutex
	media      protocol.MediaSnapshot
	fullscreen bool
	rotation   protocol.RotationData
	ui         protocol.UIData
	sessionID  string
	commands   []protocol.MediaCommand
}

// NewPage attaches a simulated page to client. Call client.Run to start
// processing commands.
func NewPage(client *Client, duration float64) *Page {
	p := &Page{
		client:   client,
		Duration: duration,
		media:    protocol.MediaSnapshot{Paused: true},
	}
	client.OnMessage(p.handle)
	return p
}

// Client returns the underlying connection
func (p *Page) Client() *Client {
	return p.client
}

func (p *Page) handle(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeWelcome:
		if w, err := msg.GetWelcomeData(); err == nil {
			p.mu.Lock()
			p.sessionID = w.SessionID
			p.mu.Unlock()
		}

	case protocol.TypeRotation:
		if r, err := msg.GetRotationData(); err == nil {
			p.mu.Lock()
			p.rotation = *r
			p.mu.Unlock()
		}

	case protocol.TypeUI:
		if ui, err := msg.GetUIData(); err == nil {
			p.mu.Lock()
			p.ui = *ui
			p.mu.Unlock()
		}

	case protocol.TypeMediaCmd:
		if cmd, err := msg.GetMediaCommand(); err == nil {
			p.applyMedia(*cmd)
		}

	case protocol.TypeFullscreen:
		if cmd, err := msg.GetFullscreenCommand(); err == nil {
			p.applyFullscreen(cmd.Enter)
		}
	}
}

// applyMedia updates the element and fires the events the browser would.
func (p *Page) applyMedia(cmd protocol.MediaCommand) {
	p.mu.Lock()
	p.commands = append(p.commands, cmd)
	var fired []string
	switch cmd.Op {
	case protocol.MediaLoad:
		p.media = protocol.MediaSnapshot{Src: cmd.Src, Paused: true}
		if p.Duration > 0 {
			p.media.Duration = protocol.Float(p.Duration)
			fired = []string{"loadedmetadata", "canplay"}
		}
	case protocol.MediaPlay:
		p.media.Paused = false
		p.media.Ended = false
		fired = []string{"play", "playing"}
	case protocol.MediaPause:
		p.media.Paused = true
		fired = []string{"pause"}
	case protocol.MediaSeek:
		p.media.CurrentTime = cmd.Time
		fired = []string{"timeupdate"}
	}
	snap := p.media
	p.mu.Unlock()

	for _, name := range fired {
		if err := p.client.SendMedia(name, snap); err != nil {
			p.client.logger.Warn("report media event", "event", name, "error", err)
			return
		}
	}
}

func (p *Page) applyFullscreen(enter bool) {
	p.mu.Lock()
	p.fullscreen = enter
	p.mu.Unlock()

	msg, err := protocol.NewMessage(protocol.TypeInput, protocol.InputEvent{
		Kind:       "fullscreenchange",
		Fullscreen: &enter,
	})
	if err == nil {
		err = p.client.Send(msg)
	}
	if err != nil {
		p.client.logger.Warn("report fullscreen change", "error", err)
	}
}

// Advance plays the element forward by seconds and reports timeupdate, or
// ended when the end is reached.
func (p *Page) Advance(seconds float64) error {
	p.mu.Lock()
	if p.media.Paused || p.media.Duration == nil {
		p.mu.Unlock()
		return nil
	}
	p.media.CurrentTime += seconds
	name := "timeupdate"
	if d := *p.media.Duration; p.media.CurrentTime >= d {
		p.media.CurrentTime = d
		p.media.Ended = true
		p.media.Paused = true
		name = "ended"
	}
	snap := p.media
	p.mu.Unlock()

	return p.client.SendMedia(name, snap)
}

// Ready announces the page, as the DOMContentLoaded handler does
func (p *Page) Ready() error {
	p.mu.RLock()
	full := p.fullscreen
	p.mu.RUnlock()

	msg, err := protocol.NewMessage(protocol.TypeInput, protocol.InputEvent{
		Kind:       "ready",
		Fullscreen: &full,
	})
	if err != nil {
		return err
	}
	return p.client.Send(msg)
}

// Media returns the simulated element state
func (p *Page) Media() protocol.MediaSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.media
}

// Rotation returns the last camera rotation received
func (p *Page) Rotation() protocol.RotationData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rotation
}

// UI returns the last UI state received
func (p *Page) UI() protocol.UIData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ui
}

// Fullscreen reports whether the page is fullscreen
func (p *Page) Fullscreen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fullscreen
}

// SessionID returns the ID from the welcome message
func (p *Page) SessionID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessionID
}

// Commands returns every media command received, in order
func (p *Page) Commands() []protocol.MediaCommand {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]protocol.MediaCommand(nil), p.commands...)
}
