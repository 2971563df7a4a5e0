package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	objectlock "github.com/TallDave67/aws-object-lock"
	"github.com/TallDave67/aws-object-lock/classify"
	"github.com/TallDave67/aws-object-lock/config"
	"github.com/TallDave67/aws-object-lock/locktypes"
	"github.com/TallDave67/aws-object-lock/minio"
	"github.com/TallDave67/aws-object-lock/provision"
	"github.com/TallDave67/aws-object-lock/workflow"
)

// noSessionToken is the session token argument meaning "long-lived keys".
const noSessionToken = "None"

var errUsage = errors.New("usage error")

// gatewayFactory opens the storage session for a run.
type gatewayFactory func(ctx context.Context, cfg *config.Config, creds locktypes.Credentials, logger *slog.Logger) (provision.Gateway, error)

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout io.Writer, factory gatewayFactory) int {
	app := newApp(stdout, factory)
	if err := app.RunContext(ctx, args); err != nil {
		return 1
	}
	return 0
}

func newApp(stdout io.Writer, factory gatewayFactory) *cli.App {
	return &cli.App{
		Name:      "objectlock",
		Usage:     "Provision governance and compliance buckets and distribute files between them",
		ArgsUsage: "<access_key_id> <secret_access_key> <session_token|None>",
		Writer:    stdout,
		ErrWriter: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (JSON, YAML or TOML)",
				Value:   config.DefaultPath,
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				Value:   "info",
				EnvVars: []string{config.EnvPrefix + "_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "lock",
				Usage: "Create buckets with object lock and apply the retention policies",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Storage endpoint URL (LocalStack, MinIO); a bare host:port means https",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: aws or minio",
			},
		},
		HideHelpCommand: true,
		// Exit codes are decided by run; never let the library call os.Exit.
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				_ = cli.ShowAppHelp(c)
				return fmt.Errorf("%w: expected 3 arguments, got %d", errUsage, c.NArg())
			}

			logger, err := newLogger(stdout, c.String("log-level"))
			if err != nil {
				_ = cli.ShowAppHelp(c)
				return fmt.Errorf("%w: %w", errUsage, err)
			}

			err = distribute(c, factory, logger)
			if err != nil {
				logger.Error("run failed", "error", err)
				fmt.Fprintln(stdout, "FAILURE")
				return err
			}

			fmt.Fprintln(stdout, "SUCCESS")
			return nil
		},
	}
}

// distribute loads the configuration, opens the session and runs the workflow.
func distribute(c *cli.Context, factory gatewayFactory, logger *slog.Logger) error {
	path := c.String("config")
	if !c.IsSet("config") {
		path = config.Locate(path)
	}

	cfg, err := config.LoadWithOptions(path, config.LoadOptions{SkipValidation: true})
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	uploadDir, err := filepath.Abs(cfg.ObjectUploadDirectory)
	if err != nil {
		return fmt.Errorf("resolve upload directory: %w", err)
	}

	creds := credentialsFromArgs(c.Args().Slice())

	logger.Info("starting run",
		"region", cfg.Region,
		"base_name", cfg.BucketBaseName,
		"upload_dir", uploadDir,
		"backend", string(cfg.Backend),
		"object_lock", cfg.ObjectLock.Enabled,
		"credentials", creds,
	)

	gateway, err := factory(c.Context, cfg, creds, logger)
	if err != nil {
		return err
	}

	p := provision.New(gateway, cfg.BucketBaseName,
		provision.WithLockSettings(cfg.ObjectLock),
		provision.WithLogger(logger),
	)

	w := workflow.New(gateway, cfg.BucketBaseName, uploadDir,
		workflow.WithProvisioner(p),
		workflow.WithClassifier(classify.NewAccessClassifier()),
		workflow.WithLogger(logger),
	)

	report, err := w.Run(c.Context)
	if err != nil {
		return err
	}

	for _, u := range report.Uploads {
		logger.Info("distributed", "file", u.File, "bucket", u.Bucket, "role", u.Role.String())
	}
	return nil
}

// applyFlags lets command line flags override the file and environment.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("lock") {
		cfg.ObjectLock.Enabled = c.Bool("lock")
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = config.NormalizeEndpoint(c.String("endpoint"))
	}
	if c.IsSet("backend") {
		cfg.Backend = config.Backend(strings.ToLower(c.String("backend")))
	}
}

// credentialsFromArgs builds credentials from the three positional arguments.
func credentialsFromArgs(args []string) locktypes.Credentials {
	creds := locktypes.Credentials{
		AccessKeyID:     args[0],
		SecretAccessKey: args[1],
	}
	if token := args[2]; token != noSessionToken && token != "" {
		creds.SessionToken = token
	}
	return creds
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// newGateway opens the storage session selected by cfg.Backend.
func newGateway(ctx context.Context, cfg *config.Config, creds locktypes.Credentials, logger *slog.Logger) (provision.Gateway, error) {
	opts := []locktypes.Option{
		objectlock.WithRegion(cfg.Region),
		objectlock.WithCredentials(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		objectlock.WithLogger(logger),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, objectlock.WithEndpoint(cfg.Endpoint))
	}
	if cfg.ForcePathStyle {
		opts = append(opts, objectlock.WithForcePathStyle(true))
	}

	if cfg.Backend == config.BackendMinIO {
		gw, err := minio.New(opts...)
		if err != nil {
			return nil, err
		}
		return gw, nil
	}

	client, err := objectlock.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}
