package gesture

import (
	"log/slog"
	"time"

	"github.com/teslashibe/go-panorama/pkg/events"
)

// State is the gesture bookkeeping. LastStart records when the previous
// gesture began; double-tap detection measures start-to-start.
type State struct {
	Active    bool
	StartX    float64
	StartY    float64
	LastStart time.Time
}

// Result tells the caller whether the host's default handling (scroll,
// pinch-zoom, double-tap zoom) must be suppressed for the event.
type Result struct {
	PreventDefault bool
}

// Controller maps touch drags to camera orientation.
// Not safe for concurrent use; drive it from a single event loop.
type Controller struct {
	sink    OrientationSink
	skipper Skipper
	cfg     *Config
	logger  *slog.Logger

	state State
	taps  uint64

	onResult func(events.Type, Result)
}

// NewController creates a controller steering sink. skipper may be nil, in
// which case double-taps are detected but have no effect.
func NewController(sink OrientationSink, skipper Skipper, opts ...Option) *Controller {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		sink:    sink,
		skipper: skipper,
		cfg:     cfg,
		logger:  logger.With("component", "gesture"),
	}
}

// Start begins a gesture at p on target.
func (c *Controller) Start(p events.Point, target events.Target, ts time.Time) Result {
	if target.HasClass(c.cfg.ExcludedClass) {
		c.state.Active = false
		return Result{}
	}

	c.state.Active = true
	c.state.StartX = p.X
	c.state.StartY = p.Y

	var res Result
	if !c.state.LastStart.IsZero() && ts.Sub(c.state.LastStart) <= c.cfg.DoubleTapWindow {
		c.taps++
		c.logger.Debug("double tap", "gap", ts.Sub(c.state.LastStart))
		if c.skipper != nil {
			c.skipper.SkipForward()
		}
		res.PreventDefault = true
	}
	c.state.LastStart = ts
	return res
}

// Move applies the drag from the last reference point to p.
func (c *Controller) Move(p events.Point) Result {
	if !c.state.Active {
		return Result{}
	}

	dx := p.X - c.state.StartX
	dy := p.Y - c.state.StartY

	delta := Orientation{Yaw: dx * c.cfg.Sensitivity, Pitch: dy * c.cfg.Sensitivity}
	next := c.sink.Orientation().Add(delta).Clamp(c.cfg.Limit)
	c.sink.SetOrientation(next)

	c.state.StartX = p.X
	c.state.StartY = p.Y
	return Result{PreventDefault: true}
}

// End finishes the current gesture.
func (c *Controller) End() Result {
	if !c.state.Active {
		return Result{}
	}
	c.state.Active = false
	return Result{PreventDefault: true}
}

// State returns a snapshot of the gesture bookkeeping.
func (c *Controller) State() State {
	return c.state
}

// DoubleTaps returns how many double-taps have been recognized.
func (c *Controller) DoubleTaps() uint64 {
	return c.taps
}

// OnResult registers fn to receive the Result of every event handled
// through Attach.
func (c *Controller) OnResult(fn func(t events.Type, res Result)) {
	c.onResult = fn
}

func (c *Controller) report(t events.Type, res Result) {
	if c.onResult != nil {
		c.onResult(t, res)
	}
}

// Attach subscribes the controller to touch events on bus and returns a
// function that detaches it.
func (c *Controller) Attach(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(events.TouchStart, func(ev events.Event) {
			c.report(ev.Type, c.Start(ev.Point, ev.Target, ev.Time))
		}),
		bus.Subscribe(events.TouchMove, func(ev events.Event) {
			c.report(ev.Type, c.Move(ev.Point))
		}),
		bus.Subscribe(events.TouchEnd, func(ev events.Event) {
			c.report(ev.Type, c.End())
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
