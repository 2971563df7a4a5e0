package errors

import "errors"

// ErrorCode represents a specific error condition reported by a storage operation.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeConflict indicates a resource state conflict that prevents the operation.
	CodeConflict ErrorCode = "CONFLICT"

	// Permission errors.

	// CodeUnauthorized indicates the request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the authenticated principal lacks permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeRateLimit indicates the rate limit has been exceeded.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Code classifies err into an ErrorCode. A nil error has no code.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case IsBucketAlreadyExists(err):
		return CodeAlreadyExists
	case errors.Is(err, ErrObjectLockUnavailable):
		return CodeConflict
	case errors.Is(err, ErrInvalidCredentials):
		return CodeUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrRegionMismatch):
		return CodeInvalidConfig
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrTooManyRequests):
		return CodeRateLimit
	default:
		return CodeUnknown
	}
}

// ForServiceCode maps an S3 error code, as returned by AWS or any
// S3-compatible service, to the matching sentinel. Unknown codes yield nil.
func ForServiceCode(code string) error {
	switch code {
	case "BucketAlreadyExists":
		return ErrBucketAlreadyExists
	case "BucketAlreadyOwnedByYou":
		return ErrBucketAlreadyOwned
	case "NoSuchBucket":
		return ErrBucketNotFound
	case "AccessDenied", "AllAccessDisabled":
		return ErrAccessDenied
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken", "TokenRefreshRequired":
		return ErrInvalidCredentials
	case "InvalidBucketName":
		return ErrInvalidBucketName
	case "IllegalLocationConstraintException", "AuthorizationHeaderMalformed", "PermanentRedirect":
		return ErrRegionMismatch
	case "InvalidBucketState", "ObjectLockConfigurationNotFoundError":
		return ErrObjectLockUnavailable
	case "SlowDown", "TooManyRequests":
		return ErrTooManyRequests
	}
	return nil
}
