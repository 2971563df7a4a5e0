// Package testutil provides test utilities and mocks for S3 operations.
// This package is internal and should only be used for testing within this module.
package testutil

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/TallDave67/aws-object-lock/internal/s3api"
)

// MockS3Client is a mock implementation of the S3API interface for testing.
// It allows customization of each S3 operation through function fields and
// records every call in Calls as "Operation bucket[/key]".
type MockS3Client struct {
	CreateBucketFunc               func(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketVersioningFunc        func(context.Context, *s3.PutBucketVersioningInput, ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error)
	PutObjectLockConfigurationFunc func(context.Context, *s3.PutObjectLockConfigurationInput, ...func(*s3.Options)) (*s3.PutObjectLockConfigurationOutput, error)
	PutObjectFunc                  func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)

	// Calls lists the operations invoked, in order.
	Calls []string

	// Objects holds the bodies of successful default PutObject calls keyed by "bucket/key".
	Objects map[string][]byte
}

// NewMockS3Client creates a mock whose operations all succeed.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{Objects: make(map[string][]byte)}
}

// CreateBucket mocks the S3 CreateBucket operation.
func (m *MockS3Client) CreateBucket(
	ctx context.Context,
	params *s3.CreateBucketInput,
	optFns ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	m.Calls = append(m.Calls, "CreateBucket "+aws.ToString(params.Bucket))
	if m.CreateBucketFunc != nil {
		return m.CreateBucketFunc(ctx, params, optFns...)
	}
	return &s3.CreateBucketOutput{Location: aws.String("/" + aws.ToString(params.Bucket))}, nil
}

// PutBucketVersioning mocks the S3 PutBucketVersioning operation.
func (m *MockS3Client) PutBucketVersioning(
	ctx context.Context,
	params *s3.PutBucketVersioningInput,
	optFns ...func(*s3.Options),
) (*s3.PutBucketVersioningOutput, error) {
	m.Calls = append(m.Calls, "PutBucketVersioning "+aws.ToString(params.Bucket))
	if m.PutBucketVersioningFunc != nil {
		return m.PutBucketVersioningFunc(ctx, params, optFns...)
	}
	return &s3.PutBucketVersioningOutput{}, nil
}

// PutObjectLockConfiguration mocks the S3 PutObjectLockConfiguration operation.
func (m *MockS3Client) PutObjectLockConfiguration(
	ctx context.Context,
	params *s3.PutObjectLockConfigurationInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectLockConfigurationOutput, error) {
	m.Calls = append(m.Calls, "PutObjectLockConfiguration "+aws.ToString(params.Bucket))
	if m.PutObjectLockConfigurationFunc != nil {
		return m.PutObjectLockConfigurationFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectLockConfigurationOutput{}, nil
}

// PutObject mocks the S3 PutObject operation. Without a PutObjectFunc the body
// is read fully and stored in Objects.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	m.Calls = append(m.Calls, "PutObject "+aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key))
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if m.Objects == nil {
		m.Objects = make(map[string][]byte)
	}
	m.Objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = body

	return &s3.PutObjectOutput{
		ETag:      aws.String(`"mock-etag"`),
		VersionId: aws.String("mock-version"),
	}, nil
}

// CallsWithPrefix returns the recorded calls for one operation name.
func (m *MockS3Client) CallsWithPrefix(op string) []string {
	var out []string
	for _, c := range m.Calls {
		if len(c) > len(op) && c[:len(op)+1] == op+" " {
			out = append(out, c)
		}
	}
	return out
}

// Ensure MockS3Client implements s3api.S3API interface
var _ s3api.S3API = (*MockS3Client)(nil)
