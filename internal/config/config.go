// Package config loads go-panorama settings from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-panorama/pkg/events"
	"github.com/teslashibe/go-panorama/pkg/gesture"
	"github.com/teslashibe/go-panorama/pkg/player"
	"github.com/teslashibe/go-panorama/pkg/session"
)

// Default server configuration. No static directory is served unless
// one is configured.
const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"
)

// Environment variables that override file settings.
const (
	EnvPort     = "VRPLAYER_PORT"
	EnvStatic   = "VRPLAYER_STATIC"
	EnvLogLevel = "LOG_LEVEL"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Player  PlayerConfig  `yaml:"player" json:"player"`
	Gesture GestureConfig `yaml:"gesture" json:"gesture"`
	Session SessionConfig `yaml:"session" json:"session"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Port is the TCP port to listen on.
	Port string `yaml:"port" json:"port"`

	// StaticDir holds the player page assets. Empty serves no page.
	StaticDir string `yaml:"static_dir" json:"static_dir"`
}

// PlayerConfig configures the playback synchronizer.
type PlayerConfig struct {
	AutoHideDelay time.Duration `yaml:"auto_hide_delay" json:"auto_hide_delay"`
	SkipSeconds   float64       `yaml:"skip_seconds" json:"skip_seconds"`
	TrackID       string        `yaml:"track_id" json:"track_id"`
	VideoID       string        `yaml:"video_id" json:"video_id"`
}

// GestureConfig configures the gesture controller.
type GestureConfig struct {
	// Sensitivity is degrees of rotation per pixel of drag.
	Sensitivity float64 `yaml:"sensitivity" json:"sensitivity"`

	// Limit bounds yaw and pitch, in degrees.
	Limit float64 `yaml:"limit" json:"limit"`

	DoubleTapWindow time.Duration `yaml:"double_tap_window" json:"double_tap_window"`
	ExcludedClass   string        `yaml:"excluded_class" json:"excluded_class"`
}

// SessionConfig configures per-connection sessions.
type SessionConfig struct {
	// QueueSize is the event loop capacity.
	QueueSize int `yaml:"queue_size" json:"queue_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: DefaultPort,
		},
		Player: PlayerConfig{
			AutoHideDelay: player.DefaultAutoHideDelay,
			SkipSeconds:   player.DefaultSkipSeconds,
			TrackID:       player.DefaultTrackID,
			VideoID:       player.DefaultVideoID,
		},
		Gesture: GestureConfig{
			Sensitivity:     gesture.DefaultSensitivity,
			Limit:           gesture.DefaultLimit,
			DoubleTapWindow: gesture.DefaultDoubleTapWindow,
			ExcludedClass:   gesture.DefaultExcludedClass,
		},
		Session: SessionConfig{
			QueueSize: events.DefaultQueueSize,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() {
	if port := os.Getenv(EnvPort); port != "" {
		c.Server.Port = port
	}
	if dir := os.Getenv(EnvStatic); dir != "" {
		c.Server.StaticDir = dir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server.port required", ErrInvalid)
	}
	if c.Player.AutoHideDelay <= 0 {
		return fmt.Errorf("%w: player.auto_hide_delay must be positive, got %v", ErrInvalid, c.Player.AutoHideDelay)
	}
	if c.Player.SkipSeconds <= 0 {
		return fmt.Errorf("%w: player.skip_seconds must be positive, got %v", ErrInvalid, c.Player.SkipSeconds)
	}
	if c.Gesture.Sensitivity <= 0 {
		return fmt.Errorf("%w: gesture.sensitivity must be positive, got %v", ErrInvalid, c.Gesture.Sensitivity)
	}
	if c.Gesture.Limit <= 0 {
		return fmt.Errorf("%w: gesture.limit must be positive, got %v", ErrInvalid, c.Gesture.Limit)
	}
	if c.Gesture.DoubleTapWindow < 0 {
		return fmt.Errorf("%w: gesture.double_tap_window must not be negative", ErrInvalid)
	}
	if c.Session.QueueSize < 0 {
		return fmt.Errorf("%w: session.queue_size must not be negative", ErrInvalid)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// GestureOptions converts the gesture settings to controller options.
func (c *Config) GestureOptions() []gesture.Option {
	return []gesture.Option{
		gesture.WithSensitivity(c.Gesture.Sensitivity),
		gesture.WithLimit(c.Gesture.Limit),
		gesture.WithDoubleTapWindow(c.Gesture.DoubleTapWindow),
		gesture.WithExcludedClass(c.Gesture.ExcludedClass),
	}
}

// PlayerOptions converts the player settings to synchronizer options.
func (c *Config) PlayerOptions() []player.Option {
	return []player.Option{
		player.WithAutoHideDelay(c.Player.AutoHideDelay),
		player.WithSkipSeconds(c.Player.SkipSeconds),
		player.WithElementIDs(c.Player.TrackID, c.Player.VideoID),
	}
}

// SessionOptions bundles everything a session needs.
func (c *Config) SessionOptions() []session.Option {
	return []session.Option{
		session.WithQueueSize(c.Session.QueueSize),
		session.WithGestureOptions(c.GestureOptions()...),
		session.WithPlayerOptions(c.PlayerOptions()...),
	}
}
