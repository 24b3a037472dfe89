package api

import "errors"

// Client transport errors
var (
	// ErrSequencerUnavailable indicates that server could not be reached or
	// reported that the document sequencer is unavailable. It is distinct from
	// an operation rejection.
	ErrSequencerUnavailable = errors.New("sequencer unavailable")

	// ErrConnClosed indicates that websocket connection is closed
	ErrConnClosed = errors.New("connection closed")
)
