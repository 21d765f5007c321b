package player

import (
	"fmt"
	"math"
)

// Glyph names an icon shown by the transport controls.
type Glyph string

const (
	GlyphPlay     Glyph = "play"
	GlyphPause    Glyph = "pause"
	GlyphExpand   Glyph = "expand"
	GlyphCompress Glyph = "compress"
)

// UIState is everything the transport UI renders.
type UIState struct {
	Visible         bool    `json:"visible"`
	ProgressPercent float64 `json:"progress_percent"`
	Elapsed         string  `json:"elapsed"`
	DurationLabel   string  `json:"duration"`
	PlayPause       Glyph   `json:"play_pause"`
	FullscreenGlyph Glyph   `json:"fullscreen"`
	Buffering       bool    `json:"buffering"`
	ErrorVisible    bool    `json:"error_visible"`
	ErrorMessage    string  `json:"error_message,omitempty"`
	Seeking         bool    `json:"seeking"`
	URL             string  `json:"url"`
}

// PlayVisible reports whether the play button is shown.
func (s UIState) PlayVisible() bool { return s.PlayPause == GlyphPlay }

// PauseVisible reports whether the pause button is shown.
func (s UIState) PauseVisible() bool { return s.PlayPause == GlyphPause }

// NetworkState summarizes the media element's loading condition.
type NetworkState string

const (
	NetworkReady     NetworkState = "ready"
	NetworkBuffering NetworkState = "buffering"
	NetworkError     NetworkState = "error"
)

// Snapshot is the media state as last observed, recomputed on demand.
type Snapshot struct {
	CurrentTime float64      `json:"current_time"`
	Duration    float64      `json:"duration"`
	Paused      bool         `json:"paused"`
	Ended       bool         `json:"ended"`
	Network     NetworkState `json:"network"`
}

// FormatTime renders seconds as mm:ss. Minutes are not capped at 59.
// Negative, NaN and infinite inputs render as 00:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "00:00"
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// knownDuration reports whether d is a usable, finite media length.
func knownDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

// progressPercent is currentTime/duration as a percentage, 0 when the
// duration is unknown.
func progressPercent(current, duration float64) float64 {
	if !knownDuration(duration) {
		return 0
	}
	return current / duration * 100
}
