package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/TallDave67/aws-object-lock/errors"
	"github.com/TallDave67/aws-object-lock/internal/testutil"
	"github.com/TallDave67/aws-object-lock/locktypes"
)

func loadFrom(t *testing.T, name, content string) (*Config, error) {
	t.Helper()

	fsys := memfs.New()
	testutil.WriteTestFile(t, fsys, name, []byte(content), 0o644)
	return LoadWithOptions(name, LoadOptions{Filesystem: fsys, EnvFiles: []string{}})
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "required keys only",
			file:    "config.json",
			content: `{"Region": "us-east-1", "BucketBaseName": "archive", "ObjectUploadDirectory": "/data/out"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "us-east-1", cfg.Region)
				assert.Equal(t, "archive", cfg.BucketBaseName)
				assert.Equal(t, "/data/out", cfg.ObjectUploadDirectory)
				assert.Equal(t, BackendAWS, cfg.Backend)
				assert.Empty(t, cfg.Endpoint)
				assert.Equal(t, locktypes.DefaultLockSettings(), cfg.ObjectLock)
			},
		},
		{
			name: "lock settings",
			file: "config.json",
			content: `{
				"Region": "eu-west-1",
				"BucketBaseName": "archive",
				"ObjectUploadDirectory": "/data/out",
				"ObjectLock": {
					"Enabled": true,
					"Governance": {"Mode": "governance", "Unit": "days", "Length": 7}
				}
			}`,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.ObjectLock.Enabled)
				assert.Equal(t, locktypes.RetentionPolicy{
					Mode:   locktypes.LockModeGovernance,
					Unit:   locktypes.RetentionDays,
					Length: 7,
				}, cfg.ObjectLock.Governance)
				assert.Equal(t, locktypes.DefaultCompliancePolicy(), cfg.ObjectLock.Compliance)
			},
		},
		{
			name: "yaml with minio backend",
			file: "config.yaml",
			content: `
Region: us-east-1
BucketBaseName: archive
ObjectUploadDirectory: /data/out
Backend: MinIO
Endpoint: localhost:9000
ForcePathStyle: true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendMinIO, cfg.Backend)
				assert.Equal(t, "https://localhost:9000", cfg.Endpoint)
				assert.True(t, cfg.ForcePathStyle)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadFrom(t, tt.file, tt.content)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing upload directory",
			content: `{"Region": "us-east-1", "BucketBaseName": "archive"}`,
			wantErr: ErrMissingKey,
			wantMsg: "ObjectUploadDirectory",
		},
		{
			name:    "all keys missing",
			content: `{}`,
			wantErr: ErrMissingKey,
			wantMsg: "Region, BucketBaseName, ObjectUploadDirectory",
		},
		{
			name:    "unknown backend",
			content: `{"Region": "r", "BucketBaseName": "b", "ObjectUploadDirectory": "/d", "Backend": "gcs"}`,
			wantErr: ErrInvalidValue,
		},
		{
			name:    "minio without endpoint",
			content: `{"Region": "r", "BucketBaseName": "b", "ObjectUploadDirectory": "/d", "Backend": "minio"}`,
			wantErr: ErrMissingKey,
			wantMsg: "Endpoint",
		},
		{
			name: "bad retention",
			content: `{"Region": "r", "BucketBaseName": "b", "ObjectUploadDirectory": "/d",
				"ObjectLock": {"Enabled": true, "Compliance": {"Length": 0}}}`,
			wantErr: s3errors.ErrInvalidRetention,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFrom(t, "config.json", tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad_RetentionIgnoredWhenDisabled(t *testing.T) {
	cfg, err := loadFrom(t, "config.json", `{"Region": "r", "BucketBaseName": "b", "ObjectUploadDirectory": "/d",
		"ObjectLock": {"Compliance": {"Length": 0}}}`)
	require.NoError(t, err)
	assert.False(t, cfg.ObjectLock.Enabled)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := LoadWithOptions("config.json", LoadOptions{Filesystem: memfs.New(), EnvFiles: []string{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := loadFrom(t, "config.json", `{"Region": `)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_SkipValidation(t *testing.T) {
	fsys := memfs.New()
	testutil.WriteTestFile(t, fsys, "config.json", []byte(`{"Region": "us-east-1"}`), 0o644)

	cfg, err := LoadWithOptions("config.json", LoadOptions{Filesystem: fsys, EnvFiles: []string{}, SkipValidation: true})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OBJECTLOCK_REGION", "ap-south-1")
	t.Setenv("OBJECTLOCK_OBJECTUPLOADDIRECTORY", "/srv/upload")
	t.Setenv("OBJECTLOCK_OBJECTLOCK_ENABLED", "true")
	t.Setenv("OBJECTLOCK_OBJECTLOCK_COMPLIANCE_LENGTH", "3")

	cfg, err := loadFrom(t, "config.json", `{"Region": "us-east-1", "BucketBaseName": "archive"}`)
	require.NoError(t, err)

	assert.Equal(t, "ap-south-1", cfg.Region)
	assert.Equal(t, "/srv/upload", cfg.ObjectUploadDirectory)
	assert.True(t, cfg.ObjectLock.Enabled)
	assert.Equal(t, int32(3), cfg.ObjectLock.Compliance.Length)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("OBJECTLOCK_BUCKETBASENAME=from-dotenv\n"), 0o600))
	t.Setenv("OBJECTLOCK_BUCKETBASENAME", "")
	os.Unsetenv("OBJECTLOCK_BUCKETBASENAME")

	fsys := memfs.New()
	testutil.WriteTestFile(t, fsys, "config.json", []byte(`{"Region": "us-east-1", "ObjectUploadDirectory": "/d"}`), 0o644)

	cfg, err := LoadWithOptions("config.json", LoadOptions{Filesystem: fsys, EnvFiles: []string{envFile, filepath.Join(dir, "absent.env")}})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.BucketBaseName)
}

func TestLoad_OSFilesystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Region": "us-east-1", "BucketBaseName": "archive", "ObjectUploadDirectory": "/d"}`), 0o600))

	cfg, err := LoadWithOptions(path, LoadOptions{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "archive", cfg.BucketBaseName)
}

func TestConfigType(t *testing.T) {
	tests := map[string]string{
		"config.json": "json",
		"config.YAML": "yaml",
		"config.yml":  "yml",
		"config.toml": "toml",
		"config":      "json",
		"config.conf": "json",
	}
	for path, want := range tests {
		assert.Equal(t, want, configType(path), path)
	}
}

func TestLocate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	existing := filepath.Join(t.TempDir(), "local.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o600))
	assert.Equal(t, existing, Locate(existing))

	missing := filepath.Join(t.TempDir(), "config.json")
	assert.Equal(t, missing, Locate(missing), "nothing to fall back to")

	require.NoError(t, os.MkdirAll(filepath.Join(home, AppName), 0o755))
	userConfig := filepath.Join(home, AppName, "config.json")
	require.NoError(t, os.WriteFile(userConfig, []byte("{}"), 0o600))
	assert.Equal(t, userConfig, Locate(missing))
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"":                       "",
		"localhost:9000":         "https://localhost:9000",
		" s3.example.com ":       "https://s3.example.com",
		"http://localhost:4566":  "http://localhost:4566",
		"https://localhost:9000": "https://localhost:9000",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeEndpoint(in), in)
	}
}
