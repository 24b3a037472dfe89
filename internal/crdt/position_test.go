package crdt

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/models"
)

func TestBetween(t *testing.T) {
	tests := []struct {
		name  string
		left  models.SortKey
		right models.SortKey
	}{
		{name: "empty document", left: nil, right: nil},
		{name: "before first", left: nil, right: models.SortKey{5, 1, 1}},
		{name: "after last", left: models.SortKey{5, 1, 1}, right: nil},
		{name: "adjacent digits", left: models.SortKey{5, 1, 1}, right: models.SortKey{6, 2, 1}},
		{name: "right extends left", left: models.SortKey{5}, right: models.SortKey{5, 0, 0, 7}},
		{name: "right starts with zero", left: nil, right: models.SortKey{0, 0, 3}},
		{name: "left at max digit", left: models.SortKey{math.MaxUint64, 1, 1}, right: nil},
		{name: "wide gap", left: models.SortKey{1}, right: models.SortKey{math.MaxUint64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Between(tt.left, tt.right, 42, 7)
			require.NoError(t, err)

			if tt.left != nil {
				assert.Equal(t, 1, key.Compare(tt.left), "key %v must be greater than %v", key, tt.left)
			}
			if tt.right != nil {
				assert.Equal(t, -1, key.Compare(tt.right), "key %v must be less than %v", key, tt.right)
			}
			assert.Equal(t, models.SortKey{42, 7}, key[len(key)-2:], "key must end with site and counter")
		})
	}
}

func TestBetween_StepIsBounded(t *testing.T) {
	key, err := Between(nil, nil, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Boundary, key[0])

	key, err = Between(models.SortKey{10}, models.SortKey{14}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), key[0])
}

func TestBetween_Errors(t *testing.T) {
	tests := []struct {
		name    string
		left    models.SortKey
		right   models.SortKey
		counter uint64
		wantErr error
	}{
		{name: "zero counter", counter: 0, wantErr: ErrZeroCounter},
		{name: "equal bounds", left: models.SortKey{3, 1}, right: models.SortKey{3, 1}, counter: 1, wantErr: ErrInvalidBounds},
		{name: "reversed bounds", left: models.SortKey{4}, right: models.SortKey{3}, counter: 1, wantErr: ErrInvalidBounds},
		{name: "right is left padded with zeros", left: models.SortKey{3}, right: models.SortKey{3, 0}, counter: 1, wantErr: ErrNoRoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Between(tt.left, tt.right, 1, tt.counter)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBetween_RandomNeighbours(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	keys := []models.SortKey{}
	counter := uint64(0)

	for i := 0; i < 2000; i++ {
		slot := rng.Intn(len(keys) + 1)
		var left, right models.SortKey
		if slot > 0 {
			left = keys[slot-1]
		}
		if slot < len(keys) {
			right = keys[slot]
		}

		counter++
		key, err := Between(left, right, uint64(rng.Intn(3)+1), counter)
		require.NoError(t, err)
		if left != nil {
			require.Equal(t, 1, key.Compare(left))
		}
		if right != nil {
			require.Equal(t, -1, key.Compare(right))
		}

		keys = append(keys[:slot], append([]models.SortKey{key}, keys[slot:]...)...)
	}
}

func TestBetween_DeepNesting(t *testing.T) {
	// Постоянная вставка перед одним и тем же правым соседом
	// заставляет ключи уходить глубже, но не ломает порядок.
	left := models.SortKey{1, 1, 1}
	right := models.SortKey{2, 1, 2}

	for i := uint64(1); i <= 200; i++ {
		key, err := Between(left, right, 1, i+2)
		require.NoError(t, err)
		require.Equal(t, 1, key.Compare(left))
		require.Equal(t, -1, key.Compare(right))
		right = key
	}
}

func TestSiteHash(t *testing.T) {
	assert.Equal(t, SiteHash("alice"), SiteHash("alice"))
	assert.NotEqual(t, SiteHash("alice"), SiteHash("bob"))
}
