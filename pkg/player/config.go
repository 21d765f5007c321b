package player

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Defaults matching the stock page layout.
const (
	DefaultAutoHideDelay = 2 * time.Second
	DefaultSkipSeconds   = 10.0
	DefaultTrackID       = "progress-container"
	DefaultVideoID       = "vr-video"
)

// Config holds synchronizer settings.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// AutoHideDelay is the quiescence period before controls hide.
	AutoHideDelay time.Duration

	// SkipSeconds is how far a double-tap jumps ahead.
	SkipSeconds float64

	// TrackID and VideoID identify the progress track and the video
	// element among event targets.
	TrackID string
	VideoID string

	// Track is the initial progress track geometry.
	Track TrackBounds

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// Option is a functional option for configuring the synchronizer.
type Option func(*Config)

// WithAutoHideDelay sets the controls auto-hide delay.
func WithAutoHideDelay(d time.Duration) Option {
	return func(c *Config) {
		c.AutoHideDelay = d
	}
}

// WithSkipSeconds sets the skip-forward distance.
func WithSkipSeconds(s float64) Option {
	return func(c *Config) {
		c.SkipSeconds = s
	}
}

// WithElementIDs overrides the progress track and video element IDs.
func WithElementIDs(trackID, videoID string) Option {
	return func(c *Config) {
		c.TrackID = trackID
		c.VideoID = videoID
	}
}

// WithTrack sets the initial progress track geometry.
func WithTrack(b TrackBounds) Option {
	return func(c *Config) {
		c.Track = b
	}
}

// WithClock sets the clock driving the auto-hide timer.
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
		AutoHideDelay: DefaultAutoHideDelay,
		SkipSeconds:   DefaultSkipSeconds,
		TrackID:       DefaultTrackID,
		VideoID:       DefaultVideoID,
		Clock:         clockwork.NewRealClock(),
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
