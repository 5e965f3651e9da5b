package disk

import (
	"errors"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"strings"
	"testing"
	"testing/quick"
)

func TestEntryNameQuickCheck(t *testing.T) {
	f := func(key string) bool {
		if key == "" {
			return true
		}

		name := entryName(key)

		// Every key should map to a single path element
		if filepath.Base(name) != name {
			return false
		}

		// Every name should fit into the file name length limit
		if len(name) > maxEntryName {
			return false
		}

		decoded, err := keyFromEntryName(name)
		if errors.Is(err, errHashedEntryName) {
			return name == entryName(key)
		}
		if err != nil {
			panic(err)
		}

		return key == decoded
	}

	require.NoError(t, quick.Check(f, &quick.Config{
		MaxCount: 100_000,
	}))
}

func TestKeyFromEntryNameInvalid(t *testing.T) {
	for _, name := range []string{"README", ".entry", "%2.entry", "%zz.entry", ".put-123"} {
		_, err := keyFromEntryName(name)
		require.Error(t, err, name)
	}
}

func TestEntryNameLongKey(t *testing.T) {
	// Short keys are percent-encoded...
	require.Equal(t, "results%2fa.entry", entryName("results/a"))

	// ...while keys that would exceed the limit are hashed
	key := "results/" + strings.Repeat("a/", 80)
	name := entryName(key)
	require.True(t, isHashedEntryName(name))
	require.LessOrEqual(t, len(name), maxEntryName)

	_, err := keyFromEntryName(name)
	require.ErrorIs(t, err, errHashedEntryName)

	// A short key that looks like a hashed name is still percent-encoded
	lookalike := strings.TrimSuffix(name, entrySuffix)
	require.False(t, isHashedEntryName(entryName(lookalike)))

	decoded, err := keyFromEntryName(entryName(lookalike))
	require.NoError(t, err)
	require.Equal(t, lookalike, decoded)
}
