package storage

import (
	"context"

	"github.com/iudanet/gophtext/internal/models"
)

//go:generate moq -out atomstorage_mock.go . AtomStorage

// AtomStorage хранит атомы локальной CRDT реплики по документам
type AtomStorage interface {
	// SaveAtoms сохраняет атомы. Надгробие не возвращается к живому атому.
	SaveAtoms(ctx context.Context, docID string, atoms []*models.CharAtom) error

	// LoadAtoms возвращает все атомы документа, включая надгробия,
	// в порядке документа
	LoadAtoms(ctx context.Context, docID string) ([]*models.CharAtom, error)

	// ListDocuments возвращает документы с сохраненными атомами
	ListDocuments(ctx context.Context) ([]string, error)

	// ClearDocument удаляет атомы и состояние реплики документа
	ClearDocument(ctx context.Context, docID string) error
}

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage хранит идентичность локальной реплики документа
type MetadataStorage interface {
	// SaveReplicaState сохраняет состояние реплики документа
	SaveReplicaState(ctx context.Context, docID string, state ReplicaState) error

	// GetReplicaState возвращает состояние реплики.
	// Returns ErrReplicaNotFound if the document was never opened.
	GetReplicaState(ctx context.Context, docID string) (ReplicaState, error)
}

// ReplicaState переживает перезапуск клиента: тот же ReplicaID и счетчик
// не ниже выданного гарантируют уникальность новых атомов
type ReplicaState struct {
	ReplicaID string `msgpack:"replica_id"`
	Counter   uint64 `msgpack:"counter"`
	LastSync  int64  `msgpack:"last_sync"` // unix time последнего обмена с сервером
}
