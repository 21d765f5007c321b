package session

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/teslashibe/go-panorama/pkg/gesture"
	"github.com/teslashibe/go-panorama/pkg/player"
)

// Config holds session settings.
type Config struct {
	// ID overrides the generated session ID.
	ID string

	// QueueSize is the event loop capacity.
	QueueSize int

	GestureOptions []gesture.Option
	PlayerOptions  []player.Option

	// OnState is called from the loop goroutine after every UI change.
	OnState func(id string, ui player.UIState)

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// Option is a functional option for configuring a session.
type Option func(*Config)

// WithID sets the session ID instead of generating one.
func WithID(id string) Option {
	return func(c *Config) {
		c.ID = id
	}
}

// WithQueueSize sets the event loop capacity.
func WithQueueSize(n int) Option {
	return func(c *Config) {
		c.QueueSize = n
	}
}

// WithGestureOptions passes options through to the gesture controller.
func WithGestureOptions(opts ...gesture.Option) Option {
	return func(c *Config) {
		c.GestureOptions = append(c.GestureOptions, opts...)
	}
}

// WithPlayerOptions passes options through to the synchronizer.
func WithPlayerOptions(opts ...player.Option) Option {
	return func(c *Config) {
		c.PlayerOptions = append(c.PlayerOptions, opts...)
	}
}

// WithStateObserver registers a UI state observer.
func WithStateObserver(fn func(id string, ui player.UIState)) Option {
	return func(c *Config) {
		c.OnState = fn
	}
}

// WithClock sets the clock used for event timestamps and the auto-hide timer.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Clock:  clockwork.NewRealClock(),
		Logger: slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
