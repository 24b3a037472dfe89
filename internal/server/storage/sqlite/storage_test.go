package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func entry(version uint64, clientID string, op models.Operation) models.VersionedOperation {
	return models.VersionedOperation{ClientID: clientID, Op: op, Version: version}
}

func TestStorage_New(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.Ping(context.Background()))

	var count int
	err := s.DB().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('operations', 'atoms')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "Migrations must create both tables")
}

func TestHistoryStorage_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	history := []models.VersionedOperation{
		entry(1, "alice", models.Operation{Type: models.OpInsert, Position: 0, Value: 'C', Originator: "alice"}),
		entry(2, "alice", models.Operation{Type: models.OpInsert, Position: 1, Value: 'я', Originator: "alice"}),
		entry(3, "bob", models.Operation{Type: models.OpDelete, Position: 0, Originator: "bob"}),
		entry(4, "carol", models.Operation{Type: models.OpDelete, Position: models.NoopPosition, Originator: "carol"}),
	}
	for _, e := range history {
		require.NoError(t, s.AppendOperation(ctx, "doc", e))
	}
	require.NoError(t, s.AppendOperation(ctx, "other", history[0]))

	loaded, err := s.LoadHistory(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, history, loaded)
	assert.True(t, loaded[3].Op.IsNoop(), "No-op must survive storage")

	since, err := s.GetOperationsSince(ctx, "doc", 2)
	require.NoError(t, err)
	assert.Equal(t, history[2:], since)

	empty, err := s.LoadHistory(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc", "other"}, docs)
}

func TestHistoryStorage_VersionConflict(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first := entry(1, "alice", models.Operation{Type: models.OpInsert, Value: 'a', Originator: "alice"})
	second := entry(1, "bob", models.Operation{Type: models.OpInsert, Value: 'b', Originator: "bob"})

	require.NoError(t, s.AppendOperation(ctx, "doc", first))
	err := s.AppendOperation(ctx, "doc", second)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	loaded, err := s.LoadHistory(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "alice", loaded[0].ClientID, "First writer wins")
}

func TestAtomStorage_SaveAtom(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	atom := &models.CharAtom{
		ID:      models.AtomID{ReplicaID: "A", Counter: 1},
		SortKey: models.SortKey{1 << 20, 99, 1},
		Value:   'x',
	}
	tomb := atom.Clone()
	tomb.Deleted = true

	tests := []struct {
		atom        *models.CharAtom
		name        string
		wantChanged bool
	}{
		{name: "new atom", atom: atom, wantChanged: true},
		{name: "duplicate atom", atom: atom, wantChanged: false},
		{name: "tombstone", atom: tomb, wantChanged: true},
		{name: "duplicate tombstone", atom: tomb, wantChanged: false},
		{name: "late insert does not resurrect", atom: atom, wantChanged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := s.SaveAtom(ctx, "doc", tt.atom)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}

	loaded, err := s.LoadAtoms(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Deleted)
	assert.Equal(t, 'x', loaded[0].Value)
	assert.Equal(t, atom.SortKey, loaded[0].SortKey)
}

func TestAtomStorage_LoadAtomsOrdered(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	atoms := []*models.CharAtom{
		{ID: models.AtomID{ReplicaID: "B", Counter: 1}, SortKey: models.SortKey{9, 2, 1}, Value: 'c'},
		{ID: models.AtomID{ReplicaID: "A", Counter: 2}, SortKey: models.SortKey{5, 1, 2, 7}, Value: 'b'},
		{ID: models.AtomID{ReplicaID: "A", Counter: 1}, SortKey: models.SortKey{5, 1, 1}, Value: 'a'},
	}
	for _, atom := range atoms {
		changed, err := s.SaveAtom(ctx, "doc", atom)
		require.NoError(t, err)
		require.True(t, changed)
	}

	loaded, err := s.LoadAtoms(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, 'a', loaded[0].Value)
	assert.Equal(t, 'b', loaded[1].Value)
	assert.Equal(t, 'c', loaded[2].Value)

	other, err := s.LoadAtoms(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAtomStorage_InvalidAtom(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		atom *models.CharAtom
		name string
	}{
		{name: "empty sort key", atom: &models.CharAtom{ID: models.AtomID{ReplicaID: "A", Counter: 1}, Value: 'x'}},
		{name: "zero counter", atom: &models.CharAtom{ID: models.AtomID{ReplicaID: "A"}, SortKey: models.SortKey{1}, Value: 'x'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SaveAtom(ctx, "doc", tt.atom)
			assert.ErrorIs(t, err, storage.ErrInvalidAtom)
		})
	}
}
