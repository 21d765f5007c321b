// Package protocol defines the WebSocket message types exchanged between the
// browser player page and its session.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Browser → Session messages
	TypeInput   MessageType = "input"   // Pointer/touch/document event
	TypeMedia   MessageType = "media"   // Media element event with state snapshot
	TypeControl MessageType = "control" // Transport control action
	TypeTrack   MessageType = "track"   // Progress track geometry

	// Session → Browser messages
	TypeRotation   MessageType = "rotation"       // Camera rotation
	TypeMediaCmd   MessageType = "media_cmd"      // Media element command
	TypeFullscreen MessageType = "fullscreen_cmd" // Fullscreen request
	TypeUI         MessageType = "ui"             // Derived UI state
	TypeWelcome    MessageType = "welcome"        // Session assignment

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// Time returns the message timestamp, or the zero time when unset.
func (m *Message) Time() time.Time {
	if m.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.Timestamp)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Browser → Session Message Types
// =============================================================================

// TargetRef identifies the element an input event hit
type TargetRef struct {
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

// InputEvent is a document input event
type InputEvent struct {
	Kind   string    `json:"kind"` // touchstart, mousemove, click, fullscreenchange, ready, ...
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Target TargetRef `json:"target"`

	// Fullscreen carries document.fullscreenElement != null for
	// fullscreenchange and ready events.
	Fullscreen *bool `json:"fullscreen,omitempty"`
}

// MediaSnapshot is the video element state at the time of an event.
// Duration is nil while the element reports NaN.
type MediaSnapshot struct {
	CurrentTime float64  `json:"current_time"`
	Duration    *float64 `json:"duration"`
	Paused      bool     `json:"paused"`
	Ended       bool     `json:"ended"`
	Src         string   `json:"src,omitempty"`
}

// MediaEvent is a media element event
type MediaEvent struct {
	Name     string        `json:"name"` // loadedmetadata, timeupdate, play, ...
	Snapshot MediaSnapshot `json:"snapshot"`
	Message  string        `json:"message,omitempty"` // error events
	Code     int           `json:"code,omitempty"`
}

// ControlData is a transport control action
type ControlData struct {
	Action string `json:"action"` // play, pause, toggle-play, fullscreen, load, paste, set-url, clear-url, skip
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"` // clipboard read failure
}

// TrackData is the progress track bounding box
type TrackData struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// =============================================================================
// Session → Browser Message Types
// =============================================================================

// RotationData sets the camera rotation, in degrees
type RotationData struct {
	Yaw   float64 `json:"yaw"`   // rotation.y
	Pitch float64 `json:"pitch"` // rotation.x
}

// Media command operations
const (
	MediaPlay  = "play"
	MediaPause = "pause"
	MediaLoad  = "load"
	MediaSeek  = "seek"
)

// MediaCommand drives the video element
type MediaCommand struct {
	Op   string  `json:"op"`
	Time float64 `json:"time,omitempty"`
	Src  string  `json:"src,omitempty"`
}

// FullscreenCommand requests entering or leaving fullscreen
type FullscreenCommand struct {
	Enter bool `json:"enter"`
}

// UIData mirrors the synchronizer UI state
type UIData struct {
	Visible         bool    `json:"visible"`
	ProgressPercent float64 `json:"progress_percent"`
	Elapsed         string  `json:"elapsed"`
	Duration        string  `json:"duration"`
	PlayPause       string  `json:"play_pause"`
	Fullscreen      string  `json:"fullscreen"`
	Buffering       bool    `json:"buffering"`
	ErrorVisible    bool    `json:"error_visible"`
	ErrorMessage    string  `json:"error_message,omitempty"`
	Seeking         bool    `json:"seeking"`
	URL             string  `json:"url"`
}

// WelcomeData tells the browser which session it is attached to
type WelcomeData struct {
	SessionID string `json:"session_id"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
