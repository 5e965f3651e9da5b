package testutil

import (
	"context"
	"fmt"
	"github.com/cirruslabs/imagecache/internal/cache/s3"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"testing"
)

// S3 starts a LocalStack container and returns a configuration pointing
// to a fresh bucket in it. The test is skipped when no container runtime
// is available.
func S3(t *testing.T) *s3.Config {
	t.Helper()

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	localstackContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "localstack/localstack",
			WaitingFor:   wait.ForHTTP("/_localstack/health").WithPort("4566/tcp"),
			ExposedPorts: []string{"4566/tcp"},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = localstackContainer.Terminate(context.Background())
	})

	exposedPort, err := nat.NewPort("tcp", "4566")
	require.NoError(t, err)

	mappedPort, err := localstackContainer.MappedPort(ctx, exposedPort)
	require.NoError(t, err)

	host, err := localstackContainer.Host(ctx)
	require.NoError(t, err)

	return &s3.Config{
		Endpoint:        fmt.Sprintf("http://%s:%d/", host, mappedPort.Int()),
		Region:          "us-east-1",
		Bucket:          "test-" + uuid.NewString(),
		AccessKeyID:     "key-id",
		AccessKeySecret: "key-secret",
	}
}
