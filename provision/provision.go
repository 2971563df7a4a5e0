// Package provision runs the per-bucket setup sequence: generate a name,
// create the bucket, enable versioning and, when configured, apply an object
// lock retention rule.
//
// Each step gates the next. The first failure stops provisioning and is
// returned; nothing already created is rolled back.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TallDave67/aws-object-lock/locktypes"
	"github.com/TallDave67/aws-object-lock/naming"
)

// Gateway is the storage service as seen by provisioning and upload.
// objectlock.Client and minio.Gateway both satisfy it.
type Gateway interface {
	CreateBucket(ctx context.Context, bucket string, opts ...locktypes.BucketOption) error
	EnableVersioning(ctx context.Context, bucket string) error
	ApplyLockConfiguration(ctx context.Context, bucket string, policy locktypes.RetentionPolicy) error
	UploadFile(ctx context.Context, bucket, key, path string) (*locktypes.UploadResult, error)
}

// Provisioner creates one bucket per call to Provision.
type Provisioner struct {
	gateway  Gateway
	baseName string
	names    *naming.Generator
	lock     locktypes.LockSettings
	logger   *slog.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLockSettings enables or disables the object lock step and sets the
// per-role retention policies. Locking is off by default.
func WithLockSettings(settings locktypes.LockSettings) Option {
	return func(p *Provisioner) {
		p.lock = settings
	}
}

// WithNameGenerator replaces the default name generator.
func WithNameGenerator(g *naming.Generator) Option {
	return func(p *Provisioner) {
		if g != nil {
			p.names = g
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Provisioner that names buckets after baseName.
func New(gateway Gateway, baseName string, opts ...Option) *Provisioner {
	p := &Provisioner{
		gateway:  gateway,
		baseName: baseName,
		names:    naming.New(),
		lock:     locktypes.DefaultLockSettings(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LockSettings returns the lock settings in effect.
func (p *Provisioner) LockSettings() locktypes.LockSettings {
	return p.lock
}

// Provision creates and configures the bucket for role and returns its name.
//
// When an error is returned after the bucket was created, the name is
// returned too so the caller can report the bucket left behind.
func (p *Provisioner) Provision(ctx context.Context, role locktypes.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("provision: unknown role %q", role)
	}

	var policy locktypes.RetentionPolicy
	if p.lock.Enabled {
		policy = p.lock.PolicyFor(role)
		// Reject a bad policy before anything is created.
		if err := policy.Validate(); err != nil {
			return "", fmt.Errorf("provision %s bucket: %w", role, err)
		}
	}

	name := p.names.Generate(p.baseName, role.String())
	logger := p.logger.With("role", role.String(), "bucket", name)
	logger.Info("provisioning bucket")

	if err := p.gateway.CreateBucket(ctx, name, locktypes.WithObjectLockEnabled(p.lock.Enabled)); err != nil {
		return "", fmt.Errorf("provision %s bucket: %w", role, err)
	}

	if err := p.gateway.EnableVersioning(ctx, name); err != nil {
		logger.Warn("bucket left without versioning")
		return name, fmt.Errorf("provision %s bucket: %w", role, err)
	}

	if p.lock.Enabled {
		if err := p.gateway.ApplyLockConfiguration(ctx, name, policy); err != nil {
			logger.Warn("bucket left without lock configuration")
			return name, fmt.Errorf("provision %s bucket: %w", role, err)
		}
	} else {
		logger.Debug("object lock disabled, skipping lock configuration")
	}

	logger.Info("bucket provisioned", "object_lock", p.lock.Enabled)
	return name, nil
}
