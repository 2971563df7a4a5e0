package objectlock

import (
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/TallDave67/aws-object-lock/locktypes"
)

// These options configure both the S3 Client and the MinIO gateway.

// WithRegion sets the region buckets are created in.
// If not specified, uses the region from the credential chain, then us-east-1.
func WithRegion(region string) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.Region = region
	}
}

// WithCredentials sets static access keys. An empty sessionToken selects
// long-lived key authentication; a non-empty one selects session credentials.
func WithCredentials(accessKeyID, secretAccessKey, sessionToken string) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.Credentials = &locktypes.Credentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			SessionToken:    sessionToken,
		}
	}
}

// WithEndpoint sets a custom endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithDisableSSL disables TLS for endpoints given without a scheme.
// Only use this for local testing.
func WithDisableSSL(disableSSL bool) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.DisableSSL = disableSSL
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior, including WithCredentials.
func WithAWSConfig(config *aws.Config) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
func WithCustomHTTPClient(client *http.Client) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithLogger sets the logger for per-call diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithFilesystem sets the filesystem files are uploaded from.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem billy.Filesystem) locktypes.Option {
	return func(c *locktypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}
