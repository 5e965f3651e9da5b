package memory_test

import (
	"context"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/cirruslabs/imagecache/internal/cache/memory"
	"github.com/cirruslabs/imagecache/internal/testutil"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestContract(t *testing.T) {
	testutil.BackendContract(t, func(_ *testing.T) cachepkg.Backend[testutil.Prediction] {
		return memory.New[testutil.Prediction]()
	})
}

func TestLocation(t *testing.T) {
	first := memory.New[int]()
	second := memory.New[int]()

	// Each in-memory backend should have a distinct identity
	require.True(t, strings.HasPrefix(first.Location(), "memory://"))
	require.NotEqual(t, first.Location(), second.Location())
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	factory := memory.Factory[int]()

	first, err := factory(ctx)
	require.NoError(t, err)

	second, err := factory(ctx)
	require.NoError(t, err)

	// Backends produced by the same factory should not share entries
	require.NoError(t, first.Set(ctx, "key", 42))
	require.False(t, second.Contains(ctx, "key"))
}
