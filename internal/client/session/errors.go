package session

import "errors"

// Session errors
var (
	// ErrNotConnected indicates that session has no ready connection
	ErrNotConnected = errors.New("session is not connected")

	// ErrClosed indicates that session was closed
	ErrClosed = errors.New("session is closed")
)
