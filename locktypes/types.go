// Package locktypes provides shared type definitions for bucket provisioning
// and file distribution.
package locktypes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/TallDave67/aws-object-lock/errors"
)

// Role identifies which of the two buckets a file belongs to.
// A file's role is fixed once it has been classified.
type Role string

const (
	// RoleGovernance holds files the running principal can still write.
	// Privileged users may shorten or lift retention on these objects.
	RoleGovernance Role = "governance"

	// RoleCompliance holds everything else. Retention cannot be overridden.
	RoleCompliance Role = "compliance"
)

// Roles returns both roles in provisioning order.
func Roles() []Role {
	return []Role{RoleGovernance, RoleCompliance}
}

// String returns the role tag used in bucket names.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleGovernance || r == RoleCompliance
}

// LockMode is the object lock retention mode.
type LockMode string

// Object lock retention modes, spelled as the S3 API expects them.
const (
	LockModeGovernance LockMode = "GOVERNANCE"
	LockModeCompliance LockMode = "COMPLIANCE"
)

// RetentionUnit is the unit a default retention period is expressed in.
type RetentionUnit string

// Retention units, spelled as the keys of the S3 DefaultRetention rule.
const (
	RetentionDays  RetentionUnit = "Days"
	RetentionYears RetentionUnit = "Years"
)

// Upper bounds accepted by S3 for a default retention period.
const (
	MaxRetentionDays  = 36500
	MaxRetentionYears = 100
)

// RetentionPolicy is the default retention rule applied to a locked bucket.
type RetentionPolicy struct {
	// Mode is the lock mode (GOVERNANCE or COMPLIANCE)
	Mode LockMode `mapstructure:"mode"`

	// Unit is the retention unit (Days or Years)
	Unit RetentionUnit `mapstructure:"unit"`

	// Length is the retention period measured in Unit
	Length int32 `mapstructure:"length"`
}

// Validate checks the policy against the values S3 accepts.
func (p RetentionPolicy) Validate() error {
	switch p.Mode {
	case LockModeGovernance, LockModeCompliance:
	default:
		return errors.NewError("validateRetention", errors.ErrInvalidRetention).
			WithMessage(fmt.Sprintf("unknown lock mode %q", p.Mode))
	}

	var maxLength int32
	switch p.Unit {
	case RetentionDays:
		maxLength = MaxRetentionDays
	case RetentionYears:
		maxLength = MaxRetentionYears
	default:
		return errors.NewError("validateRetention", errors.ErrInvalidRetention).
			WithMessage(fmt.Sprintf("unknown retention unit %q", p.Unit))
	}

	if p.Length <= 0 || p.Length > maxLength {
		return errors.NewError("validateRetention", errors.ErrInvalidRetention).
			WithMessage(fmt.Sprintf("retention length must be between 1 and %d %s", maxLength, p.Unit))
	}

	return nil
}

// String renders the policy as "MODE/Length Unit".
func (p RetentionPolicy) String() string {
	return fmt.Sprintf("%s/%d %s", p.Mode, p.Length, p.Unit)
}

// DefaultGovernancePolicy is the retention applied to the governance bucket: 30 days, overridable.
func DefaultGovernancePolicy() RetentionPolicy {
	return RetentionPolicy{Mode: LockModeGovernance, Unit: RetentionDays, Length: 30}
}

// DefaultCompliancePolicy is the retention applied to the compliance bucket: 10 years, immutable.
func DefaultCompliancePolicy() RetentionPolicy {
	return RetentionPolicy{Mode: LockModeCompliance, Unit: RetentionYears, Length: 10}
}

// LockSettings controls the optional object lock step of provisioning.
type LockSettings struct {
	// Enabled turns on object lock at bucket creation and applies the per-role policy.
	Enabled bool `mapstructure:"enabled"`

	// Governance is the policy for the governance bucket
	Governance RetentionPolicy `mapstructure:"governance"`

	// Compliance is the policy for the compliance bucket
	Compliance RetentionPolicy `mapstructure:"compliance"`
}

// DefaultLockSettings returns disabled lock settings carrying the default policies.
func DefaultLockSettings() LockSettings {
	return LockSettings{
		Enabled:    false,
		Governance: DefaultGovernancePolicy(),
		Compliance: DefaultCompliancePolicy(),
	}
}

// PolicyFor returns the retention policy configured for role.
func (s LockSettings) PolicyFor(role Role) RetentionPolicy {
	if role == RoleCompliance {
		return s.Compliance
	}
	return s.Governance
}

// Validate checks both policies when locking is enabled.
func (s LockSettings) Validate() error {
	if !s.Enabled {
		return nil
	}
	if err := s.Governance.Validate(); err != nil {
		return fmt.Errorf("governance policy: %w", err)
	}
	if err := s.Compliance.Validate(); err != nil {
		return fmt.Errorf("compliance policy: %w", err)
	}
	return nil
}

// Credentials are static access keys supplied on the command line.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string

	// SessionToken is empty for long-lived keys.
	SessionToken string
}

// HasSessionToken reports whether the credentials are temporary session credentials.
func (c Credentials) HasSessionToken() bool {
	return c.SessionToken != ""
}

// LogValue keeps the secret parts of the credentials out of log output.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_key_id", c.AccessKeyID),
		slog.String("secret_access_key", redacted),
		slog.Bool("session", c.HasSessionToken()),
	)
}

// String implements fmt.Stringer with the secret parts redacted.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKeyID: %s, SecretAccessKey: %s, session: %t}", c.AccessKeyID, redacted, c.HasSessionToken())
}

const redacted = "[REDACTED]"

// UploadResult contains information about a completed upload.
type UploadResult struct {
	// Bucket is the bucket the object was written to
	Bucket string

	// Key is the object key
	Key string

	// Size is the number of bytes uploaded
	Size int64

	// ContentType is the MIME type sent with the object
	ContentType string

	// ETag is the entity tag returned by the service
	ETag string

	// VersionID is the object version, set when the bucket is versioned
	VersionID string

	// Duration is how long the upload took
	Duration time.Duration
}

// Configuration types for functional options

// ClientConfig holds configuration for a storage gateway.
type ClientConfig struct {
	Region           string
	Endpoint         string
	ForcePathStyle   bool
	DisableSSL       bool
	Credentials      *Credentials
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Logger           *slog.Logger
	Filesystem       billy.Filesystem // Filesystem used to open files for upload
}

// BucketOptionConfig holds configuration for bucket creation via functional options.
type BucketOptionConfig struct {
	Region            string
	ObjectLockEnabled bool
}

type (
	// Option is a functional option for configuring a storage gateway.
	Option func(*ClientConfig)
	// BucketOption is a functional option for configuring bucket creation.
	BucketOption func(*BucketOptionConfig)
)

// WithBucketRegion overrides the region a bucket is created in.
func WithBucketRegion(region string) BucketOption {
	return func(c *BucketOptionConfig) {
		c.Region = region
	}
}

// WithObjectLockEnabled requests object lock support at creation time.
// S3 only lets a default retention rule be applied to buckets created this way.
func WithObjectLockEnabled(enabled bool) BucketOption {
	return func(c *BucketOptionConfig) {
		c.ObjectLockEnabled = enabled
	}
}
