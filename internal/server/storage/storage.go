package storage

import (
	"context"

	"github.com/iudanet/gophtext/internal/models"
)

// HistoryStorage defines interface for OT history persistence.
// History is append-only: entries of one document are stored in version order.
type HistoryStorage interface {
	// AppendOperation stores accepted entry of the document
	// Returns ErrVersionConflict if entry with the same version already exists
	AppendOperation(ctx context.Context, docID string, entry models.VersionedOperation) error

	// LoadHistory retrieves full history of the document ordered by version
	// Returns empty slice if document has no history
	LoadHistory(ctx context.Context, docID string) ([]models.VersionedOperation, error)

	// GetOperationsSince retrieves entries with version greater than since
	GetOperationsSince(ctx context.Context, docID string, since uint64) ([]models.VersionedOperation, error)

	// ListDocuments returns ids of documents having stored history
	ListDocuments(ctx context.Context) ([]string, error)
}

// AtomStorage defines interface for CRDT atoms persistence
type AtomStorage interface {
	// SaveAtom stores atom using CRDT logic: unknown atom is inserted,
	// known atom can only turn into tombstone.
	// Returns true if stored state changed.
	SaveAtom(ctx context.Context, docID string, atom *models.CharAtom) (bool, error)

	// LoadAtoms retrieves all atoms of the document including tombstones
	// Returns empty slice if no atoms found
	LoadAtoms(ctx context.Context, docID string) ([]*models.CharAtom, error)
}
