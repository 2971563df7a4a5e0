package objectlock

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/TallDave67/aws-object-lock/errors"
	"github.com/TallDave67/aws-object-lock/internal/testutil"
	"github.com/TallDave67/aws-object-lock/locktypes"
)

// TestClient_New tests the New() constructor with static credentials.
func TestClient_New(t *testing.T) {
	tests := []struct {
		name       string
		opts       []locktypes.Option
		wantRegion string
		wantErr    error
	}{
		{
			name:       "long-lived keys",
			opts:       []locktypes.Option{WithRegion("eu-central-1"), WithCredentials("AKIDEXAMPLE", "secret", "")},
			wantRegion: "eu-central-1",
		},
		{
			name:       "session credentials",
			opts:       []locktypes.Option{WithRegion("us-east-1"), WithCredentials("ASIAEXAMPLE", "secret", "token")},
			wantRegion: "us-east-1",
		},
		{
			name: "custom endpoint",
			opts: []locktypes.Option{
				WithRegion("us-east-1"),
				WithCredentials("test", "test", ""),
				WithEndpoint("http://localhost:4566"),
				WithForcePathStyle(true),
			},
			wantRegion: "us-east-1",
		},
		{
			name:    "missing secret",
			opts:    []locktypes.Option{WithRegion("us-east-1"), WithCredentials("AKIDEXAMPLE", "", "")},
			wantErr: s3errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]locktypes.Option{WithLogger(testutil.DiscardLogger())}, tt.opts...)
			client, err := New(context.Background(), opts...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.s3Client)
			assert.Equal(t, tt.wantRegion, client.Region())
			assert.Equal(t, 1, client.config.RetryMaxAttempts)
			assert.NotNil(t, client.Filesystem())
		})
	}
}

func TestClient_New_WithAWSConfig(t *testing.T) {
	custom := aws.Config{Region: "ap-southeast-2"}

	client, err := New(context.Background(), WithAWSConfig(&custom), WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", client.Region())

	// The caller's config is copied, not modified.
	assert.Equal(t, 0, custom.RetryMaxAttempts)
}

func TestNewWithClient(t *testing.T) {
	fsys := memfs.New()
	client := NewWithClient(testutil.NewMockS3Client(), WithFilesystem(fsys))

	assert.Equal(t, DefaultRegion, client.Region())
	assert.Same(t, fsys, client.Filesystem())
	assert.NotNil(t, client.logger)
}

func TestOptions(t *testing.T) {
	cfg := &locktypes.ClientConfig{}
	for _, opt := range []locktypes.Option{
		WithRegion("eu-west-1"),
		WithEndpoint("http://localhost:9000"),
		WithForcePathStyle(true),
		WithDisableSSL(true),
		WithCredentials("id", "secret", "token"),
		WithLogger(nil),
	} {
		opt(cfg)
	}

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "http://localhost:9000", cfg.Endpoint)
	assert.True(t, cfg.ForcePathStyle)
	assert.True(t, cfg.DisableSSL)
	require.NotNil(t, cfg.Credentials)
	assert.True(t, cfg.Credentials.HasSessionToken())
	assert.Nil(t, cfg.Logger, "nil logger must not override the default")
}

func TestClient_New_CustomHTTPClient(t *testing.T) {
	server := testutil.NewOKServer(t)
	transport := &testutil.CountingTransport{}

	client, err := New(context.Background(),
		WithRegion("us-east-1"),
		WithCredentials("id", "secret", ""),
		WithEndpoint(server.URL),
		WithForcePathStyle(true),
		WithCustomHTTPClient(&http.Client{Transport: transport}),
		WithLogger(testutil.DiscardLogger()),
	)
	require.NoError(t, err)

	require.NoError(t, client.CreateBucket(context.Background(), "archive-governance-1"))
	require.Len(t, transport.Requests, 1)
	assert.Contains(t, transport.Requests[0], "PUT /archive-governance-1")
}
