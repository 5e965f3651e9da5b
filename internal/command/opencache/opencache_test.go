package opencache

import (
	"context"
	configpkg "github.com/cirruslabs/imagecache/internal/config"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestS3DefaultChain(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	config, err := configpkg.Parse(strings.NewReader("backend: s3\n" +
		"s3:\n  region: us-east-1\n  bucket: imagecache\n  prefix: results/\n"))
	require.NoError(t, err)

	factory, err := newFactory(config)
	require.NoError(t, err)

	// Without an endpoint and static credentials the backend should
	// use the default chain and not attempt to create the bucket
	backend, err := factory(context.Background())
	require.NoError(t, err)
	require.Equal(t, "s3://imagecache/results/", backend.Location())
}

func TestDiskCodec(t *testing.T) {
	config := &configpkg.Config{
		Backend: configpkg.BackendDisk,
		Disk: configpkg.Disk{
			Dir:   t.TempDir(),
			Codec: "zstd+go-json",
		},
	}

	factory, err := newFactory(config)
	require.NoError(t, err)

	backend, err := factory(context.Background())
	require.NoError(t, err)
	require.Equal(t, config.Disk.Dir, backend.Location())

	// Unknown codecs should be rejected upfront
	config.Disk.Codec = "pickle"

	_, err = newFactory(config)
	require.Error(t, err)
}
