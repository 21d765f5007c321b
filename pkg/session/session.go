// Package session runs one player page: it turns the browser's forwarded
// events into loop events, drives the gesture controller and the playback
// synchronizer on a single goroutine, and sends the resulting commands and
// UI state back.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/teslashibe/go-panorama/pkg/events"
	"github.com/teslashibe/go-panorama/pkg/gesture"
	"github.com/teslashibe/go-panorama/pkg/player"
	"github.com/teslashibe/go-panorama/pkg/protocol"
)

// Loop-internal events used to refresh the remote mirrors before the
// components see the public event.
const (
	typeSnapshot events.Type = "session.snapshot"
	typeTrack    events.Type = "session.track"
)

// Session owns the components for one connected player page.
type Session struct {
	ID      string
	Created time.Time

	bus     *events.Bus
	loop    *events.Loop
	gesture *gesture.Controller
	player  *player.Synchronizer

	media  *remoteMedia
	camera *remoteCamera
	screen *remoteFullscreen
	out    *outbox

	clock   clockwork.Clock
	logger  *slog.Logger
	onState func(string, player.UIState)

	mu sync.RWMutex
	ui player.UIState

	received   atomic.Uint64
	dropped    atomic.Uint64
	suppressed atomic.Uint64
}

// New creates a session that talks to the browser through sender.
func New(sender Sender, opts ...Option) *Session {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	out := &outbox{sender: sender, logger: logger}
	bus := events.NewBus()
	loop := events.NewLoop(bus, cfg.QueueSize)

	s := &Session{
		ID:      id,
		Created: cfg.Clock.Now(),
		bus:     bus,
		loop:    loop,
		media:   newRemoteMedia(out),
		camera:  &remoteCamera{out: out},
		screen:  &remoteFullscreen{out: out},
		out:     out,
		clock:   cfg.Clock,
		logger:  logger,
		onState: cfg.OnState,
	}

	// Mirrors first: bus handlers run in subscription order.
	s.subscribeMirrors()

	playerOpts := append([]player.Option{
		player.WithClock(cfg.Clock),
		player.WithLogger(logger),
	}, cfg.PlayerOptions...)
	s.player = player.NewSynchronizer(s.media, s.screen, loop, playerOpts...)

	gestureOpts := append([]gesture.Option{gesture.WithLogger(logger)}, cfg.GestureOptions...)
	s.gesture = gesture.NewController(s.camera, s.player, gestureOpts...)

	s.ui = s.player.State()
	s.player.OnChange(s.publishState)
	s.player.Attach(bus)
	s.gesture.OnResult(func(_ events.Type, res gesture.Result) {
		if res.PreventDefault {
			s.suppressed.Add(1)
		}
	})
	s.gesture.Attach(bus)
	return s
}

func (s *Session) subscribeMirrors() {
	applySnapshot := func(ev events.Event) {
		if snap, ok := ev.Data.(protocol.MediaSnapshot); ok {
			s.media.apply(snap)
		}
	}
	for _, t := range []events.Type{
		typeSnapshot,
		events.MetadataLoaded, events.TimeUpdate, events.Play, events.Pause, events.Ended,
		events.CanPlay, events.CanPlayThrough, events.Waiting, events.Playing, events.Error,
	} {
		s.bus.Subscribe(t, applySnapshot)
	}

	applyFullscreen := func(ev events.Event) {
		if full, ok := ev.Data.(bool); ok {
			s.screen.set(full)
		}
	}
	s.bus.Subscribe(events.FullscreenChange, applyFullscreen)
	s.bus.Subscribe(events.Ready, applyFullscreen)

	s.bus.Subscribe(typeTrack, func(ev events.Event) {
		if b, ok := ev.Data.(player.TrackBounds); ok {
			s.player.SetTrack(b)
		}
	})
}

func (s *Session) publishState(ui player.UIState) {
	s.mu.Lock()
	s.ui = ui
	s.mu.Unlock()

	s.out.send(protocol.NewUIMessage(ToUIData(ui)))
	if s.onState != nil {
		s.onState(s.ID, ui)
	}
}

// Run sends the welcome message and processes events until ctx is done or
// the session is closed.
func (s *Session) Run(ctx context.Context) error {
	s.out.send(protocol.NewWelcomeMessage(s.ID))
	s.out.send(protocol.NewUIMessage(ToUIData(s.State())))
	s.logger.Info("session started")
	defer s.logger.Info("session stopped")
	defer s.player.Close()

	err := s.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops accepting events. Run returns once the queue drains and then
// cancels the auto-hide timer.
func (s *Session) Close() {
	s.loop.Close()
}

// Post enqueues ev on the session loop.
func (s *Session) Post(ev events.Event) error {
	if err := s.loop.Post(ev); err != nil {
		s.dropped.Add(1)
		return err
	}
	return nil
}

// Deliver translates a browser message into a loop event.
func (s *Session) Deliver(msg *protocol.Message) error {
	s.received.Add(1)

	ts := msg.Time()
	if ts.IsZero() {
		ts = s.clock.Now()
	}

	switch msg.Type {
	case protocol.TypeInput:
		in, err := msg.GetInputEvent()
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		t := events.Type(in.Kind)
		if !t.IsInput() {
			return fmt.Errorf("%w: %q", ErrUnknownEvent, in.Kind)
		}
		ev := events.Event{
			Type:   t,
			Point:  events.Point{X: in.X, Y: in.Y},
			Target: events.Target{ID: in.Target.ID, Classes: in.Target.Classes},
			Time:   ts,
		}
		if in.Fullscreen != nil {
			ev.Data = *in.Fullscreen
		}
		return s.Post(ev)

	case protocol.TypeMedia:
		me, err := msg.GetMediaEvent()
		if err != nil {
			return fmt.Errorf("media: %w", err)
		}
		t := events.Type(me.Name)
		if !t.IsMedia() {
			// Events the synchronizer does not track still refresh the mirror.
			t = typeSnapshot
		}
		return s.Post(events.Event{Type: t, Time: ts, Message: me.Message, Data: me.Snapshot})

	case protocol.TypeControl:
		ctl, err := msg.GetControlData()
		if err != nil {
			return fmt.Errorf("control: %w", err)
		}
		return s.Post(events.Event{
			Type:    events.Control,
			Time:    ts,
			Action:  ctl.Action,
			Value:   ctl.Value,
			Message: ctl.Error,
		})

	case protocol.TypeTrack:
		td, err := msg.GetTrackData()
		if err != nil {
			return fmt.Errorf("track: %w", err)
		}
		return s.Post(events.Event{Type: typeTrack, Data: player.TrackBounds{Left: td.Left, Width: td.Width}})

	case protocol.TypePing:
		ping, _ := msg.GetPingData()
		id := ""
		if ping != nil {
			id = ping.ID
		}
		return s.out.send(protocol.NewPongMessage(id, msg.Timestamp, s.clock.Now().UnixMilli()))
	}

	return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
}

// State returns the most recent UI state. Safe from any goroutine.
func (s *Session) State() player.UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ui
}

// Orientation returns the camera orientation last sent to the browser.
func (s *Session) Orientation() gesture.Orientation {
	return s.camera.Orientation()
}

// Media returns the mirrored media element state.
func (s *Session) Media() protocol.MediaSnapshot {
	return s.media.snapshot()
}

// Stats contains session counters
type Stats struct {
	Received uint64 `json:"received"`
	Dropped  uint64 `json:"dropped"`
	Queued   int    `json:"queued"`

	// Suppressed counts touch events whose default handling the page
	// was expected to prevent.
	Suppressed uint64 `json:"suppressed"`
}

// Stats returns message counters.
func (s *Session) Stats() Stats {
	return Stats{
		Received: s.received.Load(),
		Dropped:  s.dropped.Load(),
		Queued:   s.loop.Len(),

		Suppressed: s.suppressed.Load(),
	}
}

// ToUIData converts the synchronizer state to its wire form.
func ToUIData(ui player.UIState) protocol.UIData {
	return protocol.UIData{
		Visible:         ui.Visible,
		ProgressPercent: ui.ProgressPercent,
		Elapsed:         ui.Elapsed,
		Duration:        ui.DurationLabel,
		PlayPause:       string(ui.PlayPause),
		Fullscreen:      string(ui.FullscreenGlyph),
		Buffering:       ui.Buffering,
		ErrorVisible:    ui.ErrorVisible,
		ErrorMessage:    ui.ErrorMessage,
		Seeking:         ui.Seeking,
		URL:             ui.URL,
	}
}
