package verify

import "errors"

// Verification errors
var (
	// ErrDiverged indicates that replicas hold different content
	ErrDiverged = errors.New("replicas diverged")

	// ErrNoReplicas indicates that nothing was given to compare
	ErrNoReplicas = errors.New("no replicas to compare")

	// ErrNotQuiescent indicates that a client still has operations in flight
	ErrNotQuiescent = errors.New("client is not quiescent")

	// ErrBrokenHistory indicates that history cannot be replayed
	ErrBrokenHistory = errors.New("history cannot be replayed")
)
