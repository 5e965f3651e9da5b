package s3_test

import (
	"context"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/cirruslabs/imagecache/internal/cache/s3"
	"github.com/cirruslabs/imagecache/internal/codec"
	"github.com/cirruslabs/imagecache/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestContract(t *testing.T) {
	config := testutil.S3(t)

	testutil.BackendContract(t, func(t *testing.T) cachepkg.Backend[testutil.Prediction] {
		// Every subtest gets its own prefix in the shared bucket
		backend, err := s3.NewFromConfig[testutil.Prediction](context.Background(), config,
			s3.WithPrefix(uuid.NewString()+"/"))
		require.NoError(t, err)

		return backend
	})
}

func TestPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	config := testutil.S3(t)

	first, err := s3.NewFromConfig[int](ctx, config, s3.WithPrefix("first/"))
	require.NoError(t, err)

	second, err := s3.NewFromConfig[int](ctx, config, s3.WithPrefix("second/"))
	require.NoError(t, err)

	require.NoError(t, first.Set(ctx, "key", 1))
	require.NoError(t, second.Set(ctx, "key", 2))

	// Keys should be reported without the prefix
	require.Equal(t, []string{"key"}, testutil.CollectKeys(t, first))

	// Clearing one prefix should leave the other intact
	require.NoError(t, first.Clear(ctx))
	require.False(t, first.Contains(ctx, "key"))

	actual, err := second.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, 2, actual)

	require.True(t, strings.HasPrefix(second.Location(), "s3://"+config.Bucket+"/second/"))
}

func TestCodecSelfDescribing(t *testing.T) {
	ctx := context.Background()
	config := testutil.S3(t)

	plain, err := s3.NewFromConfig[[]int](ctx, config, s3.WithCodec(codec.GoJSON{}))
	require.NoError(t, err)
	require.NoError(t, plain.Set(ctx, "vector", []int{1, 2, 3}))

	// Re-opening the bucket should be possible, and entries
	// should be decoded with the codec they were written with
	compressed, err := s3.NewFromConfig[[]int](ctx, config)
	require.NoError(t, err)

	actual, err := compressed.Get(ctx, "vector")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, actual)
}

func TestDefaultChain(t *testing.T) {
	// Keep the SDK from probing the instance metadata service
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	// Only explicit endpoints and static credentials opt out of the default chain
	require.True(t, s3.UsesDefaultChain(&s3.Config{Bucket: "imagecache"}))
	require.False(t, s3.UsesDefaultChain(&s3.Config{Bucket: "imagecache", Endpoint: "http://localhost:4566"}))
	require.False(t, s3.UsesDefaultChain(&s3.Config{Bucket: "imagecache", AccessKeyID: "key-id"}))

	// The default chain path expects the bucket to exist,
	// so constructing the backend makes no requests
	backend, err := s3.Factory[int](&s3.Config{
		Bucket: "imagecache",
		Region: "us-east-1",
	}, s3.WithPrefix("results/"))(context.Background())
	require.NoError(t, err)
	require.Equal(t, "s3://imagecache/results/", backend.Location())

	plain, err := s3.New[int](context.Background(), "imagecache")
	require.NoError(t, err)
	require.Equal(t, "s3://imagecache/", plain.Location())
}
