package ot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/models"
)

func TestRegistry_GetCreatesOncePerDocument(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, setupTestLogger())
	defer reg.Close()

	first, err := reg.Get(ctx, "notes")
	require.NoError(t, err)
	second, err := reg.Get(ctx, "notes")
	require.NoError(t, err)
	other, err := reg.Get(ctx, "draft")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, []string{"draft", "notes"}, reg.Documents())
}

func TestRegistry_RestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store := &HistoryStoreMock{
		LoadHistoryFunc: func(ctx context.Context, docID string) ([]models.VersionedOperation, error) {
			return []models.VersionedOperation{
				{ClientID: "alice", Version: 1, Op: ins(0, 'o', "alice")},
				{ClientID: "bob", Version: 2, Op: ins(1, 'k', "bob")},
			}, nil
		},
		AppendOperationFunc: func(ctx context.Context, docID string, entry models.VersionedOperation) error {
			return nil
		},
	}

	reg := NewRegistry(store, setupTestLogger())
	defer reg.Close()

	seq, err := reg.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "ok", seq.Text())
	assert.Equal(t, uint64(2), seq.Version())

	// Новые операции попадают в то же хранилище
	_, err = seq.Receive(ctx, "alice", 2, ins(2, '!', "alice"))
	require.NoError(t, err)
	require.Len(t, store.AppendOperationCalls(), 1)
	assert.Equal(t, uint64(3), store.AppendOperationCalls()[0].Entry.Version)
}

func TestRegistry_LoadFailure(t *testing.T) {
	store := &HistoryStoreMock{
		LoadHistoryFunc: func(ctx context.Context, docID string) ([]models.VersionedOperation, error) {
			return nil, errors.New("database is locked")
		},
	}

	reg := NewRegistry(store, setupTestLogger())
	_, err := reg.Get(context.Background(), "notes")
	assert.Error(t, err)
	assert.Empty(t, reg.Documents())
}

func TestRegistry_LoadingDoesNotBlockOtherDocuments(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	store := &HistoryStoreMock{
		LoadHistoryFunc: func(ctx context.Context, docID string) ([]models.VersionedOperation, error) {
			if docID == "slow" {
				once.Do(func() { close(started) })
				<-release
			}
			return nil, nil
		},
	}
	reg := NewRegistry(store, setupTestLogger())
	defer reg.Close()

	var wg sync.WaitGroup
	results := make([]*Sequencer, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seq, err := reg.Get(ctx, "slow")
			assert.NoError(t, err)
			results[i] = seq
		}(i)
	}
	<-started

	done := make(chan error, 1)
	go func() {
		_, err := reg.Get(ctx, "fast")
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Get of another document waited for a pending load")
	}
	assert.Equal(t, []string{"fast"}, reg.Documents())

	close(release)
	wg.Wait()

	require.NotNil(t, results[0])
	assert.Same(t, results[0], results[1])
	assert.Same(t, results[0], results[2])

	slowLoads := 0
	for _, call := range store.LoadHistoryCalls() {
		if call.DocID == "slow" {
			slowLoads++
		}
	}
	assert.Equal(t, 1, slowLoads)
}

func TestRegistry_GetAfterClose(t *testing.T) {
	reg := NewRegistry(nil, setupTestLogger())
	_, err := reg.Get(context.Background(), "notes")
	require.NoError(t, err)

	reg.Close()

	_, err = reg.Get(context.Background(), "notes")
	assert.ErrorIs(t, err, ErrSequencerClosed)
	assert.Empty(t, reg.Documents())
}
