// Package validation provides centralized input validation logic.
// This includes bucket name validation and object key validation.
//
// All user inputs are validated before being sent to the storage service so
// that malformed requests fail locally with a descriptive error.
package validation

import (
	"net"
	"strings"
	"unicode/utf8"

	"github.com/TallDave67/aws-object-lock/errors"
)

// Bucket name length limits for general purpose buckets.
const (
	MinBucketNameLength = 3
	MaxBucketNameLength = 63
)

// MaxObjectKeyLength is the maximum object key length in bytes.
const MaxObjectKeyLength = 1024

var (
	reservedPrefixes = []string{"xn--", "sthree-", "amzn-s3-demo-"}
	reservedSuffixes = []string{"-s3alias", "--ol-s3", ".mrap", "--x-s3"}
)

// ValidateBucketName validates that a bucket name is DNS-compliant according to S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if err := validateBucketNameBasics(bucket); err != nil {
		return err
	}

	if err := validateBucketNameCharacters(bucket); err != nil {
		return err
	}

	if err := validateBucketNameStructure(bucket); err != nil {
		return err
	}

	return nil
}

// ValidateObjectKey validates that an object key is valid according to S3 rules.
// This includes preventing path traversal and ensuring valid characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return invalidKey(key, "object key cannot be empty")
	}

	if len(key) > MaxObjectKeyLength {
		return invalidKey(key, "object key cannot exceed 1024 bytes")
	}

	if hasPathTraversal(key) {
		return invalidKey(key, "object key cannot contain path traversal sequences")
	}

	// S3 keys can contain any UTF-8 character, control characters included
	if !utf8.ValidString(key) {
		return invalidKey(key, "object key must be valid UTF-8")
	}

	return nil
}

func invalidKey(key, message string) error {
	return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
		WithKey(key).
		WithMessage(message)
}

func invalidBucket(bucket, message string) error {
	return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
		WithBucket(bucket).
		WithMessage(message)
}

// validateBucketNameBasics validates basic bucket name requirements
func validateBucketNameBasics(bucket string) error {
	if bucket == "" {
		return invalidBucket(bucket, "bucket name cannot be empty")
	}

	if len(bucket) < MinBucketNameLength || len(bucket) > MaxBucketNameLength {
		return invalidBucket(bucket, "bucket name must be between 3 and 63 characters long")
	}

	return nil
}

// validateBucketNameCharacters validates allowed characters in bucket names
func validateBucketNameCharacters(bucket string) error {
	for _, char := range bucket {
		if !IsValidBucketChar(char) {
			return invalidBucket(bucket, "bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	return nil
}

// validateBucketNameStructure validates bucket name structural requirements
func validateBucketNameStructure(bucket string) error {
	if !isAlphanumeric(bucket[0]) || !isAlphanumeric(bucket[len(bucket)-1]) {
		return invalidBucket(bucket, "bucket name must begin and end with a letter or number")
	}

	if strings.Contains(bucket, "..") {
		return invalidBucket(bucket, "bucket name cannot contain two adjacent periods")
	}

	if net.ParseIP(bucket) != nil {
		return invalidBucket(bucket, "bucket name cannot be formatted as an IP address")
	}

	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(bucket, prefix) {
			return invalidBucket(bucket, "bucket name cannot start with reserved prefix "+prefix)
		}
	}

	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(bucket, suffix) {
			return invalidBucket(bucket, "bucket name cannot end with reserved suffix "+suffix)
		}
	}

	return nil
}

// IsValidBucketChar reports whether char may appear in a bucket name.
func IsValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

func isAlphanumeric(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z')
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.HasPrefix(key, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(key) >= 3 && key[1] == ':' && (key[2] == '\\' || key[2] == '/') {
		return true
	}

	for _, segment := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return true
		}
	}

	return false
}
