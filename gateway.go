package objectlock

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	s3errors "github.com/TallDave67/aws-object-lock/errors"
	"github.com/TallDave67/aws-object-lock/internal/contenttype"
	"github.com/TallDave67/aws-object-lock/internal/validation"
	"github.com/TallDave67/aws-object-lock/locktypes"
)

// DefaultContentType is the content type sent when detection fails.
const DefaultContentType = contenttype.Default

// CreateBucket creates a new, empty bucket in the client's region.
//
// Outside us-east-1 the region is sent as the location constraint. Passing
// locktypes.WithObjectLockEnabled(true) creates the bucket with object lock
// support, which S3 requires before ApplyLockConfiguration can succeed.
//
// Errors:
//   - ErrInvalidBucketName: If the bucket name doesn't comply with naming rules
//   - ErrBucketAlreadyExists: If another account owns a bucket with this name
//   - ErrBucketAlreadyOwned: If the caller already owns a bucket with this name
//   - ErrAccessDenied / ErrInvalidCredentials: If the credentials are rejected
func (c *Client) CreateBucket(ctx context.Context, bucket string, opts ...locktypes.BucketOption) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return s3errors.NewError("createBucket", err).WithBucket(bucket)
	}

	config := &locktypes.BucketOptionConfig{Region: c.config.Region}
	for _, opt := range opts {
		opt(config)
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}

	// us-east-1 rejects an explicit location constraint
	if config.Region != "" && config.Region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(config.Region),
		}
	}

	if config.ObjectLockEnabled {
		input.ObjectLockEnabledForBucket = aws.Bool(true)
	}

	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		c.logger.Error("failed to create bucket", "bucket", bucket, "error", err)
		return s3errors.NewError("createBucket", convertAWSError(err)).WithBucket(bucket)
	}

	c.logger.Info("bucket created",
		"bucket", bucket,
		"region", config.Region,
		"object_lock", config.ObjectLockEnabled,
	)
	return nil
}

// EnableVersioning turns on versioning for bucket with MFA delete disabled.
func (c *Client) EnableVersioning(ctx context.Context, bucket string) error {
	if bucket == "" {
		return s3errors.NewError("enableVersioning", s3errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}

	input := &s3.PutBucketVersioningInput{
		Bucket:                  aws.String(bucket),
		VersioningConfiguration: versioningConfiguration(),
	}

	if _, err := c.s3Client.PutBucketVersioning(ctx, input); err != nil {
		c.logger.Error("failed to enable versioning", "bucket", bucket, "error", err)
		return s3errors.NewError("enableVersioning", convertAWSError(err)).WithBucket(bucket)
	}

	c.logger.Info("versioning enabled", "bucket", bucket)
	return nil
}

// ApplyLockConfiguration enables object lock on bucket with a default
// retention rule built from policy.
//
// The bucket must have been created with object lock enabled; otherwise S3
// answers InvalidBucketState, reported as ErrObjectLockUnavailable.
func (c *Client) ApplyLockConfiguration(ctx context.Context, bucket string, policy locktypes.RetentionPolicy) error {
	if bucket == "" {
		return s3errors.NewError("applyLockConfiguration", s3errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if err := policy.Validate(); err != nil {
		return s3errors.NewError("applyLockConfiguration", err).WithBucket(bucket)
	}

	input := &s3.PutObjectLockConfigurationInput{
		Bucket:                  aws.String(bucket),
		ObjectLockConfiguration: lockConfiguration(policy),
	}

	c.logger.Debug("object lock configuration",
		"bucket", bucket,
		"mode", policy.Mode,
		"unit", policy.Unit,
		"length", policy.Length,
	)

	if _, err := c.s3Client.PutObjectLockConfiguration(ctx, input); err != nil {
		c.logger.Error("failed to apply lock configuration", "bucket", bucket, "error", err)
		return s3errors.NewError("applyLockConfiguration", convertAWSError(err)).WithBucket(bucket)
	}

	c.logger.Info("lock configuration applied", "bucket", bucket, "policy", policy.String())
	return nil
}

// UploadFile streams the file at path into bucket under key.
// The file is opened, sent in a single PutObject request and closed before returning.
//
// Errors:
//   - ErrInvalidInput: If bucket or path is empty, or path is a directory
//   - ErrInvalidObjectKey: If key is not a valid object key
//   - ErrBucketNotFound: If the bucket doesn't exist
//   - Filesystem errors opening or reading the file
func (c *Client) UploadFile(ctx context.Context, bucket, key, path string) (*locktypes.UploadResult, error) {
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

	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, s3errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	if info.IsDir() {
		return nil, s3errors.NewError("uploadFile", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("filepath points to a directory, not a file")
	}

	contentType := contenttype.Detect(c.fs, path)

	file, err := c.fs.Open(path)
	if err != nil {
		return nil, s3errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	startTime := time.Now()
	out, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		c.logger.Error("failed to upload object", "bucket", bucket, "key", key, "path", path, "error", err)
		return nil, s3errors.NewError("uploadFile", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}

	result := &locktypes.UploadResult{
		Bucket:      bucket,
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		VersionID:   aws.ToString(out.VersionId),
		Duration:    time.Since(startTime),
	}

	c.logger.Info("object uploaded", "path", path, "bucket", bucket, "key", key, "size", result.Size)
	return result, nil
}

// versioningConfiguration is the exact versioning payload sent to S3.
func versioningConfiguration() *types.VersioningConfiguration {
	return &types.VersioningConfiguration{
		MFADelete: types.MFADeleteDisabled,
		Status:    types.BucketVersioningStatusEnabled,
	}
}

// lockConfiguration builds the object lock payload for policy. The retention
// length is placed under Days or Years according to policy.Unit.
func lockConfiguration(policy locktypes.RetentionPolicy) *types.ObjectLockConfiguration {
	retention := &types.DefaultRetention{
		Mode: types.ObjectLockRetentionMode(policy.Mode),
	}

	switch policy.Unit {
	case locktypes.RetentionYears:
		retention.Years = aws.Int32(policy.Length)
	default:
		retention.Days = aws.Int32(policy.Length)
	}

	return &types.ObjectLockConfiguration{
		ObjectLockEnabled: types.ObjectLockEnabledEnabled,
		Rule: &types.ObjectLockRule{
			DefaultRetention: retention,
		},
	}
}

// convertAWSError maps AWS SDK errors onto the sentinel errors while keeping
// the original error in the chain.
func convertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var bucketAlreadyExists *types.BucketAlreadyExists
	if stderrors.As(err, &bucketAlreadyExists) {
		return fmt.Errorf("%w: %w", s3errors.ErrBucketAlreadyExists, err)
	}

	var bucketAlreadyOwned *types.BucketAlreadyOwnedByYou
	if stderrors.As(err, &bucketAlreadyOwned) {
		return fmt.Errorf("%w: %w", s3errors.ErrBucketAlreadyOwned, err)
	}

	var noSuchBucket *types.NoSuchBucket
	if stderrors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %w", s3errors.ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		if sentinel := s3errors.ForServiceCode(apiErr.ErrorCode()); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}

	return err
}
