package boltdb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/iudanet/gophtext/internal/client/storage"
	"github.com/iudanet/gophtext/internal/models"
)

// storedAtom формат атома в bucket документа
type storedAtom struct {
	ReplicaID string   `msgpack:"r"`
	SortKey   []uint64 `msgpack:"k"`
	Counter   uint64   `msgpack:"c"`
	Value     rune     `msgpack:"v"`
	Deleted   bool     `msgpack:"d"`
}

// atomKey ключ атома: replicaID, нулевой байт, счетчик big-endian
func atomKey(id models.AtomID) []byte {
	key := make([]byte, 0, len(id.ReplicaID)+9)
	key = append(key, id.ReplicaID...)
	key = append(key, 0)
	return binary.BigEndian.AppendUint64(key, id.Counter)
}

// SaveAtoms stores atoms of the document in one transaction
func (s *Storage) SaveAtoms(ctx context.Context, docID string, atoms []*models.CharAtom) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if len(atoms) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket(bucketAtoms).CreateBucketIfNotExists([]byte(docID))
		if err != nil {
			return fmt.Errorf("failed to create document bucket: %w", err)
		}

		for _, atom := range atoms {
			key := atomKey(atom.ID)

			// надгробие монотонно: живая копия не перезаписывает удаленный атом
			if existing := bucket.Get(key); existing != nil {
				var prev storedAtom
				if err := msgpack.Unmarshal(existing, &prev); err != nil {
					return fmt.Errorf("failed to unmarshal atom %s: %w", atom.ID, err)
				}
				if prev.Deleted || !atom.Deleted {
					continue
				}
			}

			data, err := msgpack.Marshal(storedAtom{
				ReplicaID: atom.ID.ReplicaID,
				Counter:   atom.ID.Counter,
				SortKey:   atom.SortKey,
				Value:     atom.Value,
				Deleted:   atom.Deleted,
			})
			if err != nil {
				return fmt.Errorf("failed to marshal atom %s: %w", atom.ID, err)
			}
			if err := bucket.Put(key, data); err != nil {
				return fmt.Errorf("failed to save atom %s: %w", atom.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// LoadAtoms returns all atoms of the document ordered by position
func (s *Storage) LoadAtoms(ctx context.Context, docID string) ([]*models.CharAtom, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var atoms []*models.CharAtom

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAtoms).Bucket([]byte(docID))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var stored storedAtom
			if err := msgpack.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("failed to unmarshal atom: %w", err)
			}
			atoms = append(atoms, &models.CharAtom{
				ID:      models.AtomID{ReplicaID: stored.ReplicaID, Counter: stored.Counter},
				SortKey: models.SortKey(stored.SortKey),
				Value:   stored.Value,
				Deleted: stored.Deleted,
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load atoms: %w", err)
	}

	// ключи bbolt упорядочены по идентичности, а не по позиции
	slices.SortFunc(atoms, func(a, b *models.CharAtom) int {
		return a.Compare(b)
	})

	return atoms, nil
}

// ListDocuments returns documents that have stored atoms
func (s *Storage) ListDocuments(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var docs []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAtoms).ForEachBucket(func(k []byte) error {
			docs = append(docs, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// ClearDocument removes atoms and replica state of the document
func (s *Storage) ClearDocument(ctx context.Context, docID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketAtoms).DeleteBucket([]byte(docID)); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return fmt.Errorf("failed to delete document bucket: %w", err)
		}
		if err := tx.Bucket(bucketMetadata).Delete([]byte(docID)); err != nil {
			return fmt.Errorf("failed to delete replica state: %w", err)
		}
		return nil
	})
}
