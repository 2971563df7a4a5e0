// Package errors provides error types and handling for bucket provisioning
// and object upload operations.
//
// Every remote operation, whichever backend performs it, reports failure as an
// *Error wrapping one of the sentinel errors below, so callers can handle
// bucket creation, versioning, lock configuration and upload failures the
// same way.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a storage operation error with context about the operation that failed.
// It wraps the underlying SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "createBucket", "enableVersioning", "uploadFile")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("storage.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("storage.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("storage.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common storage operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("storage: bucket not found")

	// ErrBucketAlreadyExists indicates that the bucket name is taken by another account
	ErrBucketAlreadyExists = errors.New("storage: bucket already exists")

	// ErrBucketAlreadyOwned indicates that the caller already owns a bucket with this name
	ErrBucketAlreadyOwned = errors.New("storage: bucket already owned by you")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("storage: access denied")

	// ErrInvalidCredentials indicates that the credentials are invalid or expired
	ErrInvalidCredentials = errors.New("storage: invalid credentials")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("storage: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("storage: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("storage: invalid object key")

	// ErrInvalidRetention indicates that a retention policy is malformed
	ErrInvalidRetention = errors.New("storage: invalid retention policy")

	// ErrObjectLockUnavailable indicates the bucket cannot accept an object lock configuration,
	// usually because it was created without object lock enabled
	ErrObjectLockUnavailable = errors.New("storage: object lock not available for bucket")

	// ErrRegionMismatch indicates that the request region does not match the bucket or endpoint
	ErrRegionMismatch = errors.New("storage: region mismatch")

	// ErrTooManyRequests indicates that the request rate is too high
	ErrTooManyRequests = errors.New("storage: too many requests")
)

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsBucketAlreadyExists checks if an error indicates a bucket name collision,
// whether the existing bucket belongs to the caller or to someone else.
func IsBucketAlreadyExists(err error) bool {
	return errors.Is(err, ErrBucketAlreadyExists) || errors.Is(err, ErrBucketAlreadyOwned)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrInvalidCredentials)
}

// IsInvalidInput checks if an error indicates invalid input.
// Invalid bucket names, object keys and retention policies count as invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey) ||
		errors.Is(err, ErrInvalidRetention)
}

// OpOf returns the failing operation recorded in err, or "" when err carries no *Error.
func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
