// Package s3api defines interfaces for S3 operations to enable testing and mocking.
package s3api

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API defines the interface for S3 operations used by this module.
// Only the administrative calls needed to provision a bucket and upload into it are listed.
type S3API interface {
	// CreateBucket creates a new S3 bucket
	CreateBucket(
		ctx context.Context,
		params *s3.CreateBucketInput,
		optFns ...func(*s3.Options),
	) (*s3.CreateBucketOutput, error)

	// PutBucketVersioning sets the versioning state of a bucket
	PutBucketVersioning(
		ctx context.Context,
		params *s3.PutBucketVersioningInput,
		optFns ...func(*s3.Options),
	) (*s3.PutBucketVersioningOutput, error)

	// PutObjectLockConfiguration places an object lock configuration on a bucket
	PutObjectLockConfiguration(
		ctx context.Context,
		params *s3.PutObjectLockConfigurationInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectLockConfigurationOutput, error)

	// PutObject uploads an object to S3
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Verify that the AWS S3 client implements our interface
var _ S3API = (*s3.Client)(nil)
