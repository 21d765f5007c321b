// Package player keeps the transport UI of the panorama player consistent
// with the media element: progress and time labels, play/pause and
// fullscreen glyphs, buffering and error banners, drag-seek, and the
// auto-hide timer for the controls.
//
// The Synchronizer never touches a DOM. It reads and commands the media
// element through Media, the document through Fullscreen, and exposes the
// derived UI as a UIState value that observers render.
package player

import "github.com/teslashibe/go-panorama/pkg/events"

// Media is the playback primitive. Duration returns NaN while unknown.
// Play may fail synchronously; asynchronous failures arrive later as
// events.Error.
type Media interface {
	CurrentTime() float64
	SetCurrentTime(t float64)
	Duration() float64
	Paused() bool
	Ended() bool
	Source() string
	SetSource(url string)
	Play() error
	Pause()
	Load()
}

// Fullscreen is the document fullscreen surface. Requests are fire and
// forget: the resulting state change arrives as events.FullscreenChange.
type Fullscreen interface {
	IsFullscreen() bool
	RequestFullscreen() error
	ExitFullscreen() error
}

// Poster re-enters the event loop. *events.Loop implements it.
type Poster interface {
	Post(ev events.Event) error
}

// TrackBounds is the horizontal extent of the progress track in the same
// coordinate space as pointer events.
type TrackBounds struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Fraction maps x to a position along the track, clamped to [0, 1].
// ok is false when the track has no usable width.
func (b TrackBounds) Fraction(x float64) (f float64, ok bool) {
	if b.Width <= 0 {
		return 0, false
	}
	f = (x - b.Left) / b.Width
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f, true
}
