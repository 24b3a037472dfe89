package ot

import "errors"

// OT errors
var (
	// ErrInvalidPosition indicates that operation position is out of document bounds
	ErrInvalidPosition = errors.New("invalid position")

	// ErrFutureVersion indicates that client claims a version the sequencer has not reached
	ErrFutureVersion = errors.New("client version is ahead of sequencer")

	// ErrSequencerClosed indicates that sequencer no longer accepts operations
	ErrSequencerClosed = errors.New("sequencer is closed")

	// ErrClientConnected indicates that client id already has a live subscription
	ErrClientConnected = errors.New("client is already connected")

	// ErrVersionNotFound indicates that history has no entry with requested version
	ErrVersionNotFound = errors.New("version not found")

	// ErrNoPendingOperation indicates an ack without an operation in flight
	ErrNoPendingOperation = errors.New("no pending operation")

	// ErrVersionGap indicates that history entries are not contiguous
	ErrVersionGap = errors.New("history version gap")
)
