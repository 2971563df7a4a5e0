package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey is returned when a required key is absent or empty.
	ErrMissingKey = errors.New("missing required key")

	// ErrInvalidValue is returned when a key holds a value outside its domain.
	ErrInvalidValue = errors.New("invalid value")
)

// validate checks required keys first and reports every missing one at once.
// Value checks only run once all required keys are present.
func validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration is nil", ErrInvalidValue)
	}

	var missing []string
	if strings.TrimSpace(cfg.Region) == "" {
		missing = append(missing, "Region")
	}
	if strings.TrimSpace(cfg.BucketBaseName) == "" {
		missing = append(missing, "BucketBaseName")
	}
	if strings.TrimSpace(cfg.ObjectUploadDirectory) == "" {
		missing = append(missing, "ObjectUploadDirectory")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}

	switch cfg.Backend {
	case BackendAWS, BackendMinIO:
	default:
		return fmt.Errorf("%w: Backend %q (want %s or %s)", ErrInvalidValue, cfg.Backend, BackendAWS, BackendMinIO)
	}

	if cfg.Backend == BackendMinIO && cfg.Endpoint == "" {
		return fmt.Errorf("%w: Endpoint is required for the %s backend", ErrMissingKey, BackendMinIO)
	}

	if err := cfg.ObjectLock.Validate(); err != nil {
		return fmt.Errorf("%w: ObjectLock: %w", ErrInvalidValue, err)
	}

	return nil
}

// Validate checks a configuration built without Load.
func (c *Config) Validate() error {
	return validate(c)
}
