// Package objectlock provides client initialization and configuration.
//
// The Client is the storage gateway for Amazon S3: it creates buckets,
// enables versioning, applies object lock retention rules and uploads files.
// Each call is a single request; the SDK retry loop is disabled so a failed
// call surfaces immediately.
package objectlock

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/TallDave67/aws-object-lock/errors"
	"github.com/TallDave67/aws-object-lock/internal/s3api"
	"github.com/TallDave67/aws-object-lock/locktypes"
)

// DefaultRegion is used when neither the options nor the environment name a region.
const DefaultRegion = "us-east-1"

// Client represents an S3 storage gateway.
// One Client is one authenticated session; it is shared by every step of a run.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// logger receives one line per remote call
	logger *slog.Logger

	// fs is the filesystem files are uploaded from
	fs billy.Filesystem
}

// New creates a new S3 client with the provided options.
// Static credentials given through WithCredentials take precedence over the
// default credential chain.
//
// Example:
//
//	client, err := objectlock.New(ctx,
//	    objectlock.WithRegion("eu-west-1"),
//	    objectlock.WithCredentials(accessKeyID, secretAccessKey, ""),
//	)
func New(ctx context.Context, opts ...locktypes.Option) (*Client, error) {
	clientCfg := applyOptions(opts)

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(clientCfg.Region))
		}
		if creds := clientCfg.Credentials; creds != nil {
			if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
				return nil, errors.NewError("client initialization", errors.ErrInvalidCredentials).
					WithMessage("access key id and secret access key are required")
			}
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
			))
		}
		if clientCfg.CustomHTTPClient != nil {
			loadOpts = append(loadOpts, config.WithHTTPClient(clientCfg.CustomHTTPClient))
		}

		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	// Failed calls are not retried.
	cfg.RetryMaxAttempts = 1

	var s3Opts []func(*s3.Options)
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	client := &Client{
		s3Client: s3.NewFromConfig(cfg, s3Opts...),
		config:   cfg,
		logger:   clientCfg.Logger,
		fs:       clientCfg.Filesystem,
	}

	client.logger.Debug("s3 session ready",
		"region", cfg.Region,
		"endpoint", clientCfg.Endpoint,
		"session_token", clientCfg.Credentials != nil && clientCfg.Credentials.HasSessionToken(),
	)

	return client, nil
}

// NewWithClient creates a new client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...locktypes.Option) *Client {
	clientCfg := applyOptions(opts)

	region := clientCfg.Region
	if region == "" {
		region = DefaultRegion
	}

	return &Client{
		s3Client: s3Client,
		config:   aws.Config{Region: region},
		logger:   clientCfg.Logger,
		fs:       clientCfg.Filesystem,
	}
}

// Region returns the region buckets are created in.
func (c *Client) Region() string {
	return c.config.Region
}

// Filesystem returns the filesystem files are uploaded from.
func (c *Client) Filesystem() billy.Filesystem {
	return c.fs
}

func applyOptions(opts []locktypes.Option) *locktypes.ClientConfig {
	clientCfg := &locktypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	if clientCfg.Logger == nil {
		clientCfg.Logger = slog.Default()
	}
	if clientCfg.Filesystem == nil {
		// Default to OS filesystem rooted at /
		clientCfg.Filesystem = osfs.New("/")
	}

	return clientCfg
}
