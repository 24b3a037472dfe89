package sqlite

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/server/storage"
)

// SaveAtom сохраняет атом по правилам слияния CRDT: неизвестный атом
// добавляется, известный может только стать надгробием.
// Возвращает true, если сохраненное состояние изменилось.
func (s *Storage) SaveAtom(ctx context.Context, docID string, atom *models.CharAtom) (bool, error) {
	if len(atom.SortKey) == 0 || atom.ID.Counter == 0 || atom.ID.Counter > math.MaxInt64 {
		return false, fmt.Errorf("%w: %s", storage.ErrInvalidAtom, atom.ID)
	}

	key, err := msgpack.Marshal([]uint64(atom.SortKey))
	if err != nil {
		return false, fmt.Errorf("failed to encode sort key: %w", err)
	}

	query := `
		INSERT INTO atoms (
			doc_id, replica_id, counter, sort_key, value, deleted, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id, replica_id, counter) DO UPDATE
		SET deleted = 1, updated_at = excluded.updated_at
		WHERE atoms.deleted = 0 AND excluded.deleted = 1
	`

	result, err := s.db.ExecContext(ctx, query,
		docID,
		atom.ID.ReplicaID,
		int64(atom.ID.Counter),
		key,
		int64(atom.Value),
		boolToInt(atom.Deleted),
		time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save atom: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// LoadAtoms возвращает все атомы документа, включая надгробия, в полном порядке
func (s *Storage) LoadAtoms(ctx context.Context, docID string) ([]*models.CharAtom, error) {
	query := `
		SELECT replica_id, counter, sort_key, value, deleted
		FROM atoms
		WHERE doc_id = ?
	`

	rows, err := s.db.QueryContext(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query atoms: %w", err)
	}
	defer rows.Close()

	atoms := make([]*models.CharAtom, 0)
	for rows.Next() {
		var (
			atom    models.CharAtom
			counter int64
			key     []byte
			value   int64
			deleted int
		)

		if err := rows.Scan(&atom.ID.ReplicaID, &counter, &key, &value, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan atom: %w", err)
		}

		var sortKey []uint64
		if err := msgpack.Unmarshal(key, &sortKey); err != nil {
			return nil, fmt.Errorf("failed to decode sort key of %s:%d: %w", atom.ID.ReplicaID, counter, err)
		}

		atom.ID.Counter = uint64(counter)
		atom.SortKey = sortKey
		atom.Value = rune(value)
		atom.Deleted = intToBool(deleted)
		atoms = append(atoms, &atom)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate atoms: %w", err)
	}

	slices.SortFunc(atoms, func(a, b *models.CharAtom) int {
		return a.Compare(b)
	})
	return atoms, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
