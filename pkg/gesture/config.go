package gesture

import (
	"log/slog"
	"time"
)

// Defaults for a touch-driven panorama.
const (
	DefaultSensitivity     = 0.2 // degrees per pixel
	DefaultDoubleTapWindow = 300 * time.Millisecond
	DefaultExcludedClass   = "ui-element"
)

// Config holds controller tuning.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Sensitivity converts pixel deltas into degrees.
	Sensitivity float64

	// Limit bounds yaw and pitch to [-Limit, Limit].
	Limit float64

	// DoubleTapWindow is the maximum gap between two gesture starts that
	// still counts as a double-tap (inclusive).
	DoubleTapWindow time.Duration

	// ExcludedClass marks transport controls; gestures starting on them are
	// left to the control.
	ExcludedClass string

	Logger *slog.Logger
}

// Option is a functional option for configuring the controller.
type Option func(*Config)

// WithSensitivity sets degrees per pixel of drag.
func WithSensitivity(s float64) Option {
	return func(c *Config) {
		c.Sensitivity = s
	}
}

// WithLimit sets the symmetric yaw/pitch bound.
func WithLimit(limit float64) Option {
	return func(c *Config) {
		c.Limit = limit
	}
}

// WithDoubleTapWindow sets the double-tap detection window.
func WithDoubleTapWindow(d time.Duration) Option {
	return func(c *Config) {
		c.DoubleTapWindow = d
	}
}

// WithExcludedClass sets the class name that marks UI controls.
func WithExcludedClass(name string) Option {
	return func(c *Config) {
		c.ExcludedClass = name
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns the stock touch-control tuning.
func DefaultConfig() *Config {
	return &Config{
		Sensitivity:     DefaultSensitivity,
		Limit:           DefaultLimit,
		DoubleTapWindow: DefaultDoubleTapWindow,
		ExcludedClass:   DefaultExcludedClass,
		Logger:          slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
