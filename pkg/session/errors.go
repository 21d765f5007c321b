package session

import "errors"

// Sentinel errors returned by Deliver.
var (
	// ErrUnknownMessage is returned for message types a session does not accept.
	ErrUnknownMessage = errors.New("session: unknown message type")

	// ErrUnknownEvent is returned for input events with an unrecognized kind.
	ErrUnknownEvent = errors.New("session: unknown input event")
)
