package storage

import "errors"

// Common client storage errors
var (
	// ErrReplicaNotFound indicates that no replica state is stored for the document
	ErrReplicaNotFound = errors.New("replica state not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
