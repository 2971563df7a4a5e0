package testutil

import (
	"context"
	"testing"

	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

// MinioServer describes a running MinIO test container.
type MinioServer struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

// SetupMinioTest starts a MinIO container for the duration of the test.
func SetupMinioTest(t *testing.T) *MinioServer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	if err != nil {
		t.Fatalf("Failed to start MinIO container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MinIO container: %v", err)
		}
	})

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get MinIO endpoint: %v", err)
	}

	return &MinioServer{
		Endpoint:  endpoint,
		AccessKey: container.Username,
		SecretKey: container.Password,
	}
}
