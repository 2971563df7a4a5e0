// Package config loads the run configuration: region, bucket base name and
// upload directory, plus the optional object lock, endpoint and backend
// settings.
//
// # Basic Usage
//
//	cfg, err := config.Load("config.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Region, cfg.BucketBaseName, cfg.ObjectUploadDirectory)
//
// The file is JSON by default; YAML and TOML are read when the file has the
// matching extension. Every key can be overridden from the environment with
// the OBJECTLOCK_ prefix, dots replaced by underscores:
//
//	OBJECTLOCK_REGION=eu-west-1
//	OBJECTLOCK_OBJECTLOCK_ENABLED=true
//
// A .env file in the working directory is loaded first when present. When the
// configuration file is not in the working directory, Locate falls back to
// $XDG_CONFIG_HOME/objectlock and the other XDG config directories.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5"

	"github.com/TallDave67/aws-object-lock/locktypes"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.json"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "OBJECTLOCK"

// Backend selects the storage gateway implementation.
type Backend string

const (
	BackendAWS   Backend = "aws"
	BackendMinIO Backend = "minio"
)

// Config is the validated run configuration.
type Config struct {
	// Region is the storage region buckets are created in
	Region string `mapstructure:"Region"`

	// BucketBaseName prefixes every generated bucket name
	BucketBaseName string `mapstructure:"BucketBaseName"`

	// ObjectUploadDirectory is the local directory whose files are uploaded
	ObjectUploadDirectory string `mapstructure:"ObjectUploadDirectory"`

	// Endpoint overrides the service endpoint (LocalStack, MinIO). A bare
	// host:port is read as https://host:port; give an http:// URL for
	// plain HTTP.
	Endpoint string `mapstructure:"Endpoint"`

	// ForcePathStyle addresses buckets by path instead of virtual host
	ForcePathStyle bool `mapstructure:"ForcePathStyle"`

	// Backend is the gateway implementation, aws or minio
	Backend Backend `mapstructure:"Backend"`

	// ObjectLock controls the optional retention step
	ObjectLock locktypes.LockSettings `mapstructure:"ObjectLock"`
}

// LoadOptions configures the behavior of configuration loading.
type LoadOptions struct {
	// Filesystem the configuration file is read from. Defaults to the OS
	// filesystem relative to the working directory.
	Filesystem billy.Filesystem

	// EnvFiles are dotenv files loaded before the environment is consulted.
	// Missing files are ignored. Defaults to ".env".
	EnvFiles []string

	// SkipValidation returns the configuration without validating it.
	SkipValidation bool
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	return LoadWithOptions(path, LoadOptions{})
}

// LoadWithOptions reads the configuration at path with custom options.
func LoadWithOptions(path string, opts LoadOptions) (*Config, error) {
	return load(path, opts)
}

// AppName names the per-user configuration directory searched by Locate.
const AppName = "objectlock"

// Locate returns path when it exists. Otherwise it searches the XDG config
// directories for AppName/<base name of path> and returns the first match.
// When nothing is found path is returned unchanged so the caller reports it.
func Locate(path string) string {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if found, err := xdg.SearchConfigFile(filepath.Join(AppName, filepath.Base(path))); err == nil {
		return found
	}
	return path
}

// NormalizeEndpoint returns endpoint as a URL both backends read the same
// way. An endpoint without a scheme gets https://.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}
