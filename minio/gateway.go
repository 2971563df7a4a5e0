// Package minio implements the storage gateway on top of minio-go, for MinIO
// and other S3-compatible services that are not reached through the AWS SDK.
//
// Gateway offers the same four operations as objectlock.Client and reports
// failures with the same *errors.Error values, so the provisioner and the
// workflow run unchanged against either backend.
package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	s3errors "github.com/TallDave67/aws-object-lock/errors"
	"github.com/TallDave67/aws-object-lock/internal/contenttype"
	"github.com/TallDave67/aws-object-lock/internal/validation"
	"github.com/TallDave67/aws-object-lock/locktypes"
)

// API is the subset of *minio.Client used by Gateway.
type API interface {
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	EnableVersioning(ctx context.Context, bucketName string) error
	SetObjectLockConfig(ctx context.Context, bucketName string, mode *minio.RetentionMode, validity *uint, unit *minio.ValidityUnit) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var _ API = (*minio.Client)(nil)

// Gateway is a storage gateway backed by minio-go.
type Gateway struct {
	client API
	region string
	logger *slog.Logger
	fs     billy.Filesystem
}

// New connects to the endpoint named by WithEndpoint using the static
// credentials from WithCredentials. The endpoint may be a bare host:port or a
// URL; an http:// URL or WithDisableSSL selects plain HTTP.
func New(opts ...locktypes.Option) (*Gateway, error) {
	cfg := applyOptions(opts)

	if cfg.Endpoint == "" {
		return nil, s3errors.NewError("connect", s3errors.ErrInvalidInput).
			WithMessage("endpoint is required")
	}
	if cfg.Credentials == nil || cfg.Credentials.AccessKeyID == "" || cfg.Credentials.SecretAccessKey == "" {
		return nil, s3errors.NewError("connect", s3errors.ErrInvalidCredentials).
			WithMessage("access key id and secret access key are required")
	}

	host, secure, err := parseEndpoint(cfg.Endpoint, !cfg.DisableSSL)
	if err != nil {
		return nil, s3errors.NewError("connect", fmt.Errorf("%w: %w", s3errors.ErrInvalidInput, err))
	}

	lookup := minio.BucketLookupAuto
	if cfg.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}

	minioOpts := &minio.Options{
		Creds: credentials.NewStaticV4(
			cfg.Credentials.AccessKeyID,
			cfg.Credentials.SecretAccessKey,
			cfg.Credentials.SessionToken,
		),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
		MaxRetries:   1,
	}
	if cfg.CustomHTTPClient != nil && cfg.CustomHTTPClient.Transport != nil {
		minioOpts.Transport = cfg.CustomHTTPClient.Transport
	}

	client, err := minio.New(host, minioOpts)
	if err != nil {
		return nil, s3errors.NewError("connect", err)
	}

	g := newGateway(client, cfg)
	g.logger.Debug("minio session ready", "endpoint", host, "secure", secure, "region", cfg.Region)
	return g, nil
}

// NewWithClient wraps an existing client. Intended for tests.
func NewWithClient(client API, opts ...locktypes.Option) *Gateway {
	return newGateway(client, applyOptions(opts))
}

func newGateway(client API, cfg *locktypes.ClientConfig) *Gateway {
	return &Gateway{
		client: client,
		region: cfg.Region,
		logger: cfg.Logger,
		fs:     cfg.Filesystem,
	}
}

func applyOptions(opts []locktypes.Option) *locktypes.ClientConfig {
	cfg := &locktypes.ClientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Filesystem == nil {
		cfg.Filesystem = osfs.New("/")
	}
	return cfg
}

// parseEndpoint accepts "host:port" or a URL and returns the host and
// whether TLS should be used.
func parseEndpoint(endpoint string, secure bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, secure, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", endpoint)
	}

	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, secure, nil
	default:
		return "", false, fmt.Errorf("endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
}

// Region returns the region buckets are created in.
func (g *Gateway) Region() string {
	return g.region
}

// CreateBucket creates bucket, with object locking when requested.
func (g *Gateway) CreateBucket(ctx context.Context, bucket string, opts ...locktypes.BucketOption) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return s3errors.NewError("createBucket", err).WithBucket(bucket)
	}

	config := &locktypes.BucketOptionConfig{Region: g.region}
	for _, opt := range opts {
		opt(config)
	}

	err := g.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{
		Region:        config.Region,
		ObjectLocking: config.ObjectLockEnabled,
	})
	if err != nil {
		g.logger.Error("failed to create bucket", "bucket", bucket, "error", err)
		return s3errors.NewError("createBucket", translateError(err)).WithBucket(bucket)
	}

	g.logger.Info("bucket created", "bucket", bucket, "region", config.Region, "object_lock", config.ObjectLockEnabled)
	return nil
}

// EnableVersioning turns on versioning for bucket.
func (g *Gateway) EnableVersioning(ctx context.Context, bucket string) error {
	if bucket == "" {
		return s3errors.NewError("enableVersioning", s3errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}

	if err := g.client.EnableVersioning(ctx, bucket); err != nil {
		g.logger.Error("failed to enable versioning", "bucket", bucket, "error", err)
		return s3errors.NewError("enableVersioning", translateError(err)).WithBucket(bucket)
	}

	g.logger.Info("versioning enabled", "bucket", bucket)
	return nil
}

// ApplyLockConfiguration sets the default retention rule of bucket.
func (g *Gateway) ApplyLockConfiguration(ctx context.Context, bucket string, policy locktypes.RetentionPolicy) error {
	if bucket == "" {
		return s3errors.NewError("applyLockConfiguration", s3errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if err := policy.Validate(); err != nil {
		return s3errors.NewError("applyLockConfiguration", err).WithBucket(bucket)
	}

	mode, validity, unit := lockParameters(policy)
	if err := g.client.SetObjectLockConfig(ctx, bucket, &mode, &validity, &unit); err != nil {
		g.logger.Error("failed to apply lock configuration", "bucket", bucket, "error", err)
		return s3errors.NewError("applyLockConfiguration", translateError(err)).WithBucket(bucket)
	}

	g.logger.Info("lock configuration applied", "bucket", bucket, "policy", policy.String())
	return nil
}

// lockParameters converts policy into minio-go's lock arguments.
func lockParameters(policy locktypes.RetentionPolicy) (minio.RetentionMode, uint, minio.ValidityUnit) {
	mode := minio.Governance
	if policy.Mode == locktypes.LockModeCompliance {
		mode = minio.Compliance
	}

	unit := minio.Days
	if policy.Unit == locktypes.RetentionYears {
		unit = minio.Years
	}

	return mode, uint(policy.Length), unit
}

// UploadFile streams the file at path into bucket under key.
func (g *Gateway) UploadFile(ctx context.Context, bucket, key, path string) (*locktypes.UploadResult, error) {
	if bucket == "" {
		return nil, s3errors.NewError("uploadFile", s3errors.ErrInvalidInput).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	if path == "" {
		return nil, s3errors.NewError("uploadFile", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("filepath cannot be empty")
	}

	info, err := g.fs.Stat(path)
	if err != nil {
		return nil, s3errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	if info.IsDir() {
		return nil, s3errors.NewError("uploadFile", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("filepath points to a directory, not a file")
	}

	contentType := contenttype.Detect(g.fs, path)

	file, err := g.fs.Open(path)
	if err != nil {
		return nil, s3errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	start := time.Now()
	out, err := g.client.PutObject(ctx, bucket, key, file, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		g.logger.Error("failed to upload object", "bucket", bucket, "key", key, "path", path, "error", err)
		return nil, s3errors.NewError("uploadFile", translateError(err)).WithBucket(bucket).WithKey(key)
	}

	result := &locktypes.UploadResult{
		Bucket:      bucket,
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		ETag:        strings.Trim(out.ETag, `"`),
		VersionID:   out.VersionID,
		Duration:    time.Since(start),
	}

	g.logger.Info("object uploaded", "path", path, "bucket", bucket, "key", key, "size", result.Size)
	return result, nil
}

// translateError maps minio-go error responses onto the sentinel errors while
// keeping the original error in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "" && resp.StatusCode == 0 {
		return err
	}

	if sentinel := s3errors.ForServiceCode(resp.Code); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", s3errors.ErrBucketNotFound, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", s3errors.ErrAccessDenied, err)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %w", s3errors.ErrTooManyRequests, err)
	}

	return err
}
