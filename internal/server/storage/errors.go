package storage

import "errors"

// Common storage errors
var (
	// ErrVersionConflict indicates that history entry with this version already exists
	ErrVersionConflict = errors.New("version already stored")

	// ErrDocumentNotFound indicates that document has no stored state
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidAtom indicates that atom cannot be stored (empty key or zero counter)
	ErrInvalidAtom = errors.New("invalid atom")
)
