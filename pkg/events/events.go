// Package events defines the typed event vocabulary shared by the gesture
// controller and the playback synchronizer, plus the bus and single-goroutine
// loop that deliver those events.
//
// Event names follow the DOM/media event names the browser client forwards,
// so a wire message maps onto an Event without translation tables.
package events

import "time"

// Type identifies an event.
type Type string

// Media element events.
const (
	MetadataLoaded Type = "loadedmetadata"
	TimeUpdate     Type = "timeupdate"
	Play           Type = "play"
	Pause          Type = "pause"
	Ended          Type = "ended"
	CanPlay        Type = "canplay"
	CanPlayThrough Type = "canplaythrough"
	Waiting        Type = "waiting"
	Playing        Type = "playing"
	Error          Type = "error"
)

// Document input events.
const (
	TouchStart       Type = "touchstart"
	TouchMove        Type = "touchmove"
	TouchEnd         Type = "touchend"
	MouseDown        Type = "mousedown"
	MouseMove        Type = "mousemove"
	MouseUp          Type = "mouseup"
	Click            Type = "click"
	FullscreenChange Type = "fullscreenchange"
	Ready            Type = "ready"
)

// Control is a transport-control action (button press, URL field edit).
// The action name is carried in Event.Action.
const Control Type = "control"

// HideTimeout is posted by the auto-hide timer when it fires.
// Event.Gen identifies which scheduling produced it.
const HideTimeout Type = "hide-timeout"

// Control actions.
const (
	ActionPlay       = "play"
	ActionPause      = "pause"
	ActionTogglePlay = "toggle-play"
	ActionFullscreen = "fullscreen"
	ActionLoad       = "load"
	ActionPaste      = "paste"
	ActionSetURL     = "set-url"
	ActionClearURL   = "clear-url"
	ActionSkip       = "skip"
)

// Point is a screen position in CSS pixels.
type Point struct {
	X, Y float64
}

// Target is the element an input event was dispatched to.
type Target struct {
	ID      string
	Classes []string
}

// HasClass reports whether the target carries the given class.
func (t Target) HasClass(name string) bool {
	for _, c := range t.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Event is a single item on the loop.
type Event struct {
	Type   Type
	Point  Point
	Target Target
	Time   time.Time

	// Message carries the human-readable media error for Error events and
	// the clipboard error text for failed paste controls.
	Message string

	// Action and Value describe Control events.
	Action string
	Value  string

	// Gen is the auto-hide generation for HideTimeout events.
	Gen uint64

	// Data carries transport-specific payload, such as the media state a
	// remote client observed when the event fired.
	Data any
}

// IsMedia reports whether t is a media element event.
func (t Type) IsMedia() bool {
	switch t {
	case MetadataLoaded, TimeUpdate, Play, Pause, Ended,
		CanPlay, CanPlayThrough, Waiting, Playing, Error:
		return true
	}
	return false
}

// IsInput reports whether t is a document input event.
func (t Type) IsInput() bool {
	switch t {
	case TouchStart, TouchMove, TouchEnd, MouseDown, MouseMove, MouseUp,
		Click, FullscreenChange, Ready:
		return true
	}
	return false
}
