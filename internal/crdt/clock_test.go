package crdt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClock(t *testing.T) {
	clock := NewClock()

	require.NotNil(t, clock)
	assert.Equal(t, uint64(0), clock.Counter(), "Initial counter should be 0")
	assert.NotEmpty(t, clock.ReplicaID(), "ReplicaID should not be empty")
	assert.NotEqual(t, clock.ReplicaID(), NewClock().ReplicaID(), "ReplicaIDs should be unique")
}

func TestNewClockWithReplicaID(t *testing.T) {
	clock := NewClockWithReplicaID("alice")

	assert.Equal(t, uint64(0), clock.Counter())
	assert.Equal(t, "alice", clock.ReplicaID())
}

func TestClock_Tick_StartsAtOne(t *testing.T) {
	clock := NewClockWithReplicaID("alice")

	var previous uint64
	for i := 1; i <= 100; i++ {
		current := clock.Tick()
		assert.Equal(t, uint64(i), current)
		assert.Greater(t, current, previous, "Tick should always increase")
		previous = current
	}
}

func TestClock_Observe(t *testing.T) {
	tests := []struct {
		name     string
		local    uint64
		remote   uint64
		nextTick uint64
	}{
		{name: "remote greater than local", local: 5, remote: 10, nextTick: 11},
		{name: "remote less than local", local: 15, remote: 10, nextTick: 16},
		{name: "remote equal to local", local: 10, remote: 10, nextTick: 11},
		{name: "both zero", local: 0, remote: 0, nextTick: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewClockWithReplicaID("alice")
			clock.Set(tt.local)

			clock.Observe(tt.remote)
			assert.Equal(t, tt.nextTick, clock.Tick())
		})
	}
}

func TestClock_ConcurrentTick(t *testing.T) {
	clock := NewClockWithReplicaID("alice")
	iterations := 1000
	goroutines := 10

	var wg sync.WaitGroup
	wg.Add(goroutines)

	var mu sync.Mutex
	seen := make(map[uint64]bool, iterations*goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				v := clock.Tick()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, uint64(goroutines*iterations), clock.Counter())
	assert.Len(t, seen, goroutines*iterations, "Tick must never hand out the same value twice")
}

func BenchmarkClock_Tick(b *testing.B) {
	clock := NewClock()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		clock.Tick()
	}
}
