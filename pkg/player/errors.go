package player

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoSource is returned when an operation needs a loaded source.
	ErrNoSource = errors.New("player: no source loaded")

	// ErrUnknownDuration is returned when the media length is not known yet.
	ErrUnknownDuration = errors.New("player: duration unknown")

	// ErrNoTrack is returned when the progress track has no width.
	ErrNoTrack = errors.New("player: progress track has no width")
)

// MediaError is a failure reported by the media element.
type MediaError struct {
	// Code is the MediaError code from the host (1 aborted, 2 network,
	// 3 decode, 4 source not supported), 0 when unknown.
	Code int

	// Message is the human-readable reason.
	Message string
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("media error %d: %s", e.Code, e.Message)
	}
	return "media error: " + e.Message
}

// bannerText is the message shown in the error banner for err.
func bannerText(err error) string {
	var me *MediaError
	if errors.As(err, &me) {
		return "Failed to load video: " + me.Message
	}
	return "Failed to load video: " + err.Error()
}
