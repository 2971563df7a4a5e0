package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/TallDave67/aws-object-lock/locktypes"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// keys lists every recognized key so environment overrides reach Unmarshal
// even when the file leaves a key out.
var keys = []string{
	"Region",
	"BucketBaseName",
	"ObjectUploadDirectory",
	"Endpoint",
	"ForcePathStyle",
	"Backend",
	"ObjectLock.Enabled",
	"ObjectLock.Governance.Mode",
	"ObjectLock.Governance.Unit",
	"ObjectLock.Governance.Length",
	"ObjectLock.Compliance.Mode",
	"ObjectLock.Compliance.Unit",
	"ObjectLock.Compliance.Length",
}

// load reads path through opts.Filesystem, layers environment overrides on
// top, decodes the result and validates it unless SkipValidation is set.
func load(path string, opts LoadOptions) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	filesystem := opts.Filesystem
	if filesystem == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path %s: %w", path, err)
		}
		filesystem = osfs.New(filepath.Dir(abs))
		path = filepath.Base(abs)
	}

	data, err := util.ReadFile(filesystem, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	v := newViper()
	v.SetConfigType(configType(path))
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	normalize(&cfg)

	if opts.SkipValidation {
		return &cfg, nil
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	lock := locktypes.DefaultLockSettings()
	v.SetDefault("Backend", string(BackendAWS))
	v.SetDefault("ForcePathStyle", false)
	v.SetDefault("ObjectLock.Enabled", lock.Enabled)
	v.SetDefault("ObjectLock.Governance.Mode", string(lock.Governance.Mode))
	v.SetDefault("ObjectLock.Governance.Unit", string(lock.Governance.Unit))
	v.SetDefault("ObjectLock.Governance.Length", lock.Governance.Length)
	v.SetDefault("ObjectLock.Compliance.Mode", string(lock.Compliance.Mode))
	v.SetDefault("ObjectLock.Compliance.Unit", string(lock.Compliance.Unit))
	v.SetDefault("ObjectLock.Compliance.Length", lock.Compliance.Length)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	return v
}

// configType maps the file extension to a viper config type, JSON by default.
func configType(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "yaml", "yml", "toml", "json":
		return ext
	default:
		return "json"
	}
}

// normalize accepts lock modes and units in any case and gives the endpoint
// a scheme.
func normalize(cfg *Config) {
	cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend))))
	cfg.Endpoint = NormalizeEndpoint(cfg.Endpoint)
	for _, p := range []*locktypes.RetentionPolicy{&cfg.ObjectLock.Governance, &cfg.ObjectLock.Compliance} {
		p.Mode = locktypes.LockMode(strings.ToUpper(strings.TrimSpace(string(p.Mode))))
		switch {
		case strings.EqualFold(string(p.Unit), string(locktypes.RetentionDays)):
			p.Unit = locktypes.RetentionDays
		case strings.EqualFold(string(p.Unit), string(locktypes.RetentionYears)):
			p.Unit = locktypes.RetentionYears
		}
	}
}
