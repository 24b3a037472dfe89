package crdt

import "errors"

// CRDT errors
var (
	// ErrIndexOutOfRange indicates that visible index is outside of the document
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidBounds indicates that left key is not strictly less than right key
	ErrInvalidBounds = errors.New("left key must be less than right key")

	// ErrNoRoom indicates that no key exists strictly between the two keys
	ErrNoRoom = errors.New("no key between neighbours")

	// ErrKeyTooLong indicates that synthesized key exceeded maximum depth
	ErrKeyTooLong = errors.New("sort key depth exhausted")

	// ErrZeroCounter indicates that atom counter is zero
	ErrZeroCounter = errors.New("counter must be positive")
)
