package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	objectlock "github.com/TallDave67/aws-object-lock"
	"github.com/TallDave67/aws-object-lock/config"
	"github.com/TallDave67/aws-object-lock/internal/testutil"
	"github.com/TallDave67/aws-object-lock/locktypes"
	"github.com/TallDave67/aws-object-lock/provision"
)

// mockFactory returns a gateway over mock and records what it was given.
type mockFactory struct {
	mock  *testutil.MockS3Client
	cfg   *config.Config
	creds locktypes.Credentials
	calls int
}

func (f *mockFactory) open(_ context.Context, cfg *config.Config, creds locktypes.Credentials, logger *slog.Logger) (provision.Gateway, error) {
	f.calls++
	f.cfg, f.creds = cfg, creds
	return objectlock.NewWithClient(f.mock,
		objectlock.WithRegion(cfg.Region),
		objectlock.WithFilesystem(osfs.New("/")),
		objectlock.WithLogger(logger),
	), nil
}

func writeConfig(t *testing.T, uploadDir string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"Region": "us-east-1", "BucketBaseName": "archive", "ObjectUploadDirectory": "` + filepath.ToSlash(uploadDir) + `"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o444))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	factory := &mockFactory{mock: testutil.NewMockS3Client()}
	var out bytes.Buffer

	code := run(context.Background(),
		[]string{"objectlock", "--config", writeConfig(t, dir), "AKIDEXAMPLE", "secret", "None"},
		&out, factory.open)

	assert.Equal(t, 0, code, out.String())
	assert.Equal(t, "SUCCESS", lastLine(out.String()))
	assert.Len(t, factory.mock.CallsWithPrefix("CreateBucket"), 2)
	assert.Len(t, factory.mock.CallsWithPrefix("PutObject"), 2)
	assert.Empty(t, factory.creds.SessionToken)
	assert.False(t, factory.cfg.ObjectLock.Enabled)
	assert.Contains(t, out.String(), "state=uploads-complete")
}

func TestRun_Flags(t *testing.T) {
	dir := t.TempDir()
	factory := &mockFactory{mock: testutil.NewMockS3Client()}
	var out bytes.Buffer

	code := run(context.Background(),
		[]string{
			"objectlock",
			"--config", writeConfig(t, dir),
			"--lock",
			"--endpoint", "http://localhost:4566",
			"--log-level", "debug",
			"ASIAEXAMPLE", "secret", "session-token",
		},
		&out, factory.open)

	require.Equal(t, 0, code, out.String())
	assert.True(t, factory.cfg.ObjectLock.Enabled)
	assert.Equal(t, "http://localhost:4566", factory.cfg.Endpoint)
	assert.Equal(t, "session-token", factory.creds.SessionToken)
	assert.Len(t, factory.mock.CallsWithPrefix("PutObjectLockConfiguration"), 2)
}

func TestRun_BareEndpoint(t *testing.T) {
	factory := &mockFactory{mock: testutil.NewMockS3Client()}
	var out bytes.Buffer

	code := run(context.Background(),
		[]string{"objectlock", "--config", writeConfig(t, t.TempDir()), "--endpoint", "minio.internal:9000", "id", "secret", "None"},
		&out, factory.open)

	require.Equal(t, 0, code, out.String())
	assert.Equal(t, "https://minio.internal:9000", factory.cfg.Endpoint)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: []string{"objectlock"}},
		{name: "two arguments", args: []string{"objectlock", "id", "secret"}},
		{name: "four arguments", args: []string{"objectlock", "id", "secret", "None", "extra"}},
		{name: "bad log level", args: []string{"objectlock", "--log-level", "loud", "id", "secret", "None"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &mockFactory{mock: testutil.NewMockS3Client()}
			var out bytes.Buffer

			code := run(context.Background(), tt.args, &out, factory.open)

			assert.Equal(t, 1, code)
			assert.Contains(t, out.String(), "USAGE")
			assert.NotContains(t, out.String(), "SUCCESS")
			assert.Zero(t, factory.calls)
		})
	}
}

func TestRun_UploadDirMissing(t *testing.T) {
	factory := &mockFactory{mock: testutil.NewMockS3Client()}
	var out bytes.Buffer

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	code := run(context.Background(),
		[]string{"objectlock", "--config", writeConfig(t, missing), "id", "secret", "None"},
		&out, factory.open)

	assert.Equal(t, 1, code)
	assert.Equal(t, "FAILURE", lastLine(out.String()))
	assert.Empty(t, factory.mock.Calls, "no bucket may be created")
}

func TestRun_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	incomplete := filepath.Join(dir, "incomplete.json")
	require.NoError(t, os.WriteFile(incomplete, []byte(`{"Region": "us-east-1"}`), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "absent.json")},
		{name: "missing keys", path: incomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &mockFactory{mock: testutil.NewMockS3Client()}
			var out bytes.Buffer

			code := run(context.Background(), []string{"objectlock", "--config", tt.path, "id", "secret", "None"}, &out, factory.open)

			assert.Equal(t, 1, code)
			assert.Equal(t, "FAILURE", lastLine(out.String()))
			assert.Zero(t, factory.calls)
		})
	}
}

func TestRun_GatewayError(t *testing.T) {
	var out bytes.Buffer
	failing := func(context.Context, *config.Config, locktypes.Credentials, *slog.Logger) (provision.Gateway, error) {
		return nil, errors.New("no route to host")
	}

	code := run(context.Background(), []string{"objectlock", "--config", writeConfig(t, t.TempDir()), "id", "secret", "None"}, &out, failing)

	assert.Equal(t, 1, code)
	assert.Equal(t, "FAILURE", lastLine(out.String()))
	assert.Contains(t, out.String(), "no route to host")
}

func TestCredentialsFromArgs(t *testing.T) {
	tests := []struct {
		token     string
		wantToken string
	}{
		{token: "None", wantToken: ""},
		{token: "", wantToken: ""},
		{token: "FwoGZXIvYXdzEJr", wantToken: "FwoGZXIvYXdzEJr"},
		{token: "none", wantToken: "none"},
	}

	for _, tt := range tests {
		creds := credentialsFromArgs([]string{"id", "secret", tt.token})
		assert.Equal(t, "id", creds.AccessKeyID)
		assert.Equal(t, "secret", creds.SecretAccessKey)
		assert.Equal(t, tt.wantToken, creds.SessionToken, tt.token)
	}
}

func TestNewGateway(t *testing.T) {
	creds := locktypes.Credentials{AccessKeyID: "id", SecretAccessKey: "secret"}

	gw, err := newGateway(context.Background(), &config.Config{Region: "eu-west-1", Backend: config.BackendAWS}, creds, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.IsType(t, &objectlock.Client{}, gw)

	gw, err = newGateway(context.Background(), &config.Config{
		Region:   "us-east-1",
		Backend:  config.BackendMinIO,
		Endpoint: "http://localhost:9000",
	}, creds, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.NotNil(t, gw)
}
