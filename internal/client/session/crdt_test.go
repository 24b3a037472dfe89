package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/client/storage"
	"github.com/iudanet/gophtext/internal/client/storage/boltdb"
	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/verify"
)

func openStore(t *testing.T, name string) *boltdb.Storage {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), name+".db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openCRDT(t *testing.T, dialer Dialer, store *boltdb.Storage) *CRDTSession {
	t.Helper()

	s, err := OpenCRDT(context.Background(), dialer, store, store, "doc", setupTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCRDTSession_ConcurrentEditsConverge(t *testing.T) {
	ts := setupTestServer(t)
	dialer := NewDialer(ts.client)

	alice := openCRDT(t, dialer, openStore(t, "alice"))
	bob := openCRDT(t, dialer, openStore(t, "bob"))
	require.Eventually(t, func() bool { return alice.Connected() && bob.Connected() }, waitFor, 10*time.Millisecond)

	typeAtEnd(t, alice.Insert, alice.Text, "abc")
	typeAtEnd(t, bob.Insert, bob.Text, "xyz")

	converged := func() bool {
		report, err := verify.Replicas(alice.Replica(), bob.Replica())
		return err == nil && report.Converged && len([]rune(report.Text)) == 6
	}
	require.Eventually(t, converged, waitFor, 10*time.Millisecond)

	text := alice.Text()
	require.NoError(t, bob.Delete(0))
	require.Eventually(t, func() bool {
		report, err := verify.Replicas(alice.Replica(), bob.Replica())
		return err == nil && report.Converged && report.Text == string([]rune(text)[1:])
	}, waitFor, 10*time.Millisecond)

	state, err := ts.crdt.State(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, verify.Digest(alice.Text()), state.Digest)
}

func TestCRDTSession_OfflineEditsSyncOnReconnect(t *testing.T) {
	ts := setupTestServer(t)
	dialer := &trackingDialer{dialer: NewDialer(ts.client)}
	dialer.setOffline(true)

	alice := openCRDT(t, dialer, openStore(t, "alice"))
	assert.False(t, alice.Connected())

	typeAtEnd(t, alice.Insert, alice.Text, "abc")
	assert.Equal(t, "abc", alice.Text())

	dialer.setOffline(false)
	require.Eventually(t, func() bool {
		state, err := ts.crdt.State(context.Background(), "doc")
		return err == nil && state.Digest == verify.Digest("abc")
	}, waitFor, 10*time.Millisecond)

	bob := openCRDT(t, NewDialer(ts.client), openStore(t, "bob"))
	require.Eventually(t, func() bool { return bob.Text() == "abc" }, waitFor, 10*time.Millisecond)
}

func TestCRDTSession_RestoresFromStorage(t *testing.T) {
	ts := setupTestServer(t)
	dialer := NewDialer(ts.client)
	store := openStore(t, "alice")
	ctx := context.Background()

	first, err := OpenCRDT(ctx, dialer, store, store, "doc", setupTestLogger())
	require.NoError(t, err)
	typeAtEnd(t, first.Insert, first.Text, "hi")
	replicaID := first.Replica().ID()
	counter := first.Replica().Counter()
	require.NoError(t, first.Close())

	state, err := store.GetReplicaState(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, replicaID, state.ReplicaID)
	assert.Equal(t, counter, state.Counter)

	second := openCRDT(t, dialer, store)
	assert.Equal(t, replicaID, second.Replica().ID())
	assert.Equal(t, "hi", second.Text())

	require.NoError(t, second.Insert(2, '!'))
	atoms := second.Replica().Atoms()
	var last models.AtomID
	for _, atom := range atoms {
		if atom.Value == '!' {
			last = atom.ID
		}
	}
	assert.Greater(t, last.Counter, counter)
}

func TestCRDTSession_PersistenceFailureKeepsEdit(t *testing.T) {
	atoms := &storage.AtomStorageMock{
		LoadAtomsFunc: func(ctx context.Context, docID string) ([]*models.CharAtom, error) {
			return nil, nil
		},
		SaveAtomsFunc: func(ctx context.Context, docID string, atoms []*models.CharAtom) error {
			return errors.New("disk full")
		},
	}
	offline := DialFunc(func(ctx context.Context, mode, docID string) (Conn, error) {
		return nil, errors.New("offline")
	})

	s, err := OpenCRDT(context.Background(), offline, atoms, nil, "doc", setupTestLogger())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	err = s.Insert(0, 'a')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "a", s.Text())
	assert.Len(t, atoms.SaveAtomsCalls(), 1)
}

func TestOpenCRDT_StorageFailure(t *testing.T) {
	meta := &storage.MetadataStorageMock{
		GetReplicaStateFunc: func(ctx context.Context, docID string) (storage.ReplicaState, error) {
			return storage.ReplicaState{}, errors.New("corrupted")
		},
	}

	_, err := OpenCRDT(context.Background(), DialFunc(nil), nil, meta, "doc", setupTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load replica state")
}
