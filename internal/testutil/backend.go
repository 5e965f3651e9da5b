package testutil

import (
	"context"
	"fmt"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sort"
	"strings"
	"sync"
	"testing"
)

type Prediction struct {
	Label  string    `json:"label"`
	Scores []float64 `json:"scores"`
}

// BackendContract checks the behavior every cache backend must share.
// newBackend is invoked for each subtest and must return an empty backend.
func BackendContract(t *testing.T, newBackend func(t *testing.T) cachepkg.Backend[Prediction]) {
	t.Helper()

	t.Run("Simple", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)
		key := uuid.NewString()

		// Retrieval and deletion of a non-existent key should fail
		_, err := backend.Get(ctx, key)
		require.ErrorIs(t, err, cachepkg.ErrKeyMiss)
		require.ErrorIs(t, backend.Delete(ctx, key), cachepkg.ErrKeyMiss)
		require.False(t, backend.Contains(ctx, key))

		// Insertion of a non-existent key should succeed
		first := Prediction{Label: "cat", Scores: []float64{0.9, 0.1}}
		require.NoError(t, backend.Set(ctx, key, first))
		require.True(t, backend.Contains(ctx, key))

		actual, err := backend.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, first, actual)

		// Re-insertion of an existent key should overwrite it
		second := Prediction{Label: "dog", Scores: []float64{0.2, 0.8}}
		require.NoError(t, backend.Set(ctx, key, second))

		actual, err = backend.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, second, actual)

		size, err := backend.Size(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, size)

		// Deletion of an existing key should succeed exactly once
		require.NoError(t, backend.Delete(ctx, key))
		require.False(t, backend.Contains(ctx, key))
		require.ErrorIs(t, backend.Delete(ctx, key), cachepkg.ErrKeyMiss)

		_, err = backend.Get(ctx, key)
		require.ErrorIs(t, err, cachepkg.ErrKeyMiss)
	})

	t.Run("KeysSizeClear", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		var expectedKeys []string

		for i := 0; i < 5; i++ {
			key := uuid.NewString()
			expectedKeys = append(expectedKeys, key)

			require.NoError(t, backend.Set(ctx, key, Prediction{Label: fmt.Sprintf("label-%d", i)}))
		}

		size, err := backend.Size(ctx)
		require.NoError(t, err)
		require.Equal(t, len(expectedKeys), size)

		// Iteration should be restartable
		for range 2 {
			require.ElementsMatch(t, expectedKeys, CollectKeys(t, backend))
		}

		// Stopping the iteration early should be possible
		var seen int
		for _, err := range backend.Keys(ctx) {
			require.NoError(t, err)

			seen++

			break
		}
		require.Equal(t, 1, seen)

		// Clearing should remove everything, yet keep the backend usable
		require.NoError(t, backend.Clear(ctx))

		size, err = backend.Size(ctx)
		require.NoError(t, err)
		require.Zero(t, size)
		require.Empty(t, CollectKeys(t, backend))

		for _, key := range expectedKeys {
			require.False(t, backend.Contains(ctx, key))
		}

		require.NoError(t, backend.Set(ctx, expectedKeys[0], Prediction{Label: "after-clear"}))
		require.True(t, backend.Contains(ctx, expectedKeys[0]))
	})

	t.Run("Concurrent", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		var wg sync.WaitGroup

		for i := 0; i < 16; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				key := fmt.Sprintf("key-%d", i%4)

				assert.NoError(t, backend.Set(ctx, key, Prediction{Label: key}))
			}()
		}

		wg.Wait()

		size, err := backend.Size(ctx)
		require.NoError(t, err)
		require.Equal(t, 4, size)

		for i := 0; i < 4; i++ {
			key := fmt.Sprintf("key-%d", i)

			actual, err := backend.Get(ctx, key)
			require.NoError(t, err)
			require.Equal(t, key, actual.Label)
		}
	})

	t.Run("LongKey", func(t *testing.T) {
		ctx := context.Background()
		backend := newBackend(t)

		// Keys are arbitrary strings, even ones much longer
		// than a file name or a path element may be
		key := "results/" + strings.Repeat("a/", 120)
		expected := Prediction{Label: "long"}

		require.NoError(t, backend.Set(ctx, key, expected))
		require.True(t, backend.Contains(ctx, key))

		actual, err := backend.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, expected, actual)
		require.Equal(t, []string{key}, CollectKeys(t, backend))

		require.NoError(t, backend.Delete(ctx, key))
		require.False(t, backend.Contains(ctx, key))
	})

	t.Run("Location", func(t *testing.T) {
		require.NotEmpty(t, newBackend(t).Location())
	})
}

func CollectKeys[V any](t *testing.T, backend cachepkg.Backend[V]) []string {
	t.Helper()

	var keys []string

	for key, err := range backend.Keys(context.Background()) {
		require.NoError(t, err)

		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
