package boltdb

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/iudanet/gophtext/internal/client/storage"
)

// SaveReplicaState saves replica identity and clock of the document
func (s *Storage) SaveReplicaState(ctx context.Context, docID string, state storage.ReplicaState) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := msgpack.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal replica state: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketMetadata).Put([]byte(docID), data); err != nil {
			return fmt.Errorf("failed to save replica state: %w", err)
		}
		return nil
	})
}

// GetReplicaState retrieves replica state of the document
// Returns storage.ErrReplicaNotFound if the document was never opened
func (s *Storage) GetReplicaState(ctx context.Context, docID string) (storage.ReplicaState, error) {
	var state storage.ReplicaState
	if s.db == nil {
		return state, storage.ErrStorageClosed
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMetadata).Get([]byte(docID))
		if data == nil {
			return storage.ErrReplicaNotFound
		}
		if err := msgpack.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("failed to unmarshal replica state: %w", err)
		}
		return nil
	})
	if err != nil {
		return storage.ReplicaState{}, err
	}

	return state, nil
}
