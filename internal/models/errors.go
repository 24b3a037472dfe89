package models

import "errors"

// Operation model errors
var (
	// ErrNegativePosition indicates that operation position is below zero
	ErrNegativePosition = errors.New("position must be non-negative")

	// ErrUnknownOpType indicates that operation type is neither insert nor delete
	ErrUnknownOpType = errors.New("unknown operation type")

	// ErrInvalidSortKey indicates that atom sort key does not end with its site and counter
	ErrInvalidSortKey = errors.New("invalid sort key")
)
