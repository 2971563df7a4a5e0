// Package workflow drives a complete distribution run: check the upload
// directory, provision the governance and compliance buckets, then classify
// and upload every regular file in the directory.
//
// The run is a linear pipeline. Each state is reached only after the previous
// one succeeded and the first error ends the run. Buckets created before a
// failure are left in place.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/TallDave67/aws-object-lock/classify"
	"github.com/TallDave67/aws-object-lock/locktypes"
	"github.com/TallDave67/aws-object-lock/provision"
)

// ErrUploadDirMissing is returned when the upload directory does not exist
// or is not a directory. No remote call is made in that case.
var ErrUploadDirMissing = errors.New("upload directory missing")

// State is a step of the run.
type State string

const (
	StateInit                  State = "init"
	StateDirectoryCheck        State = "directory-check"
	StateSessionReady          State = "session-ready"
	StateGovernanceProvisioned State = "governance-provisioned"
	StateComplianceProvisioned State = "compliance-provisioned"
	StateUploadsComplete       State = "uploads-complete"
)

// Classifier decides which bucket a file belongs to.
type Classifier interface {
	Classify(path string) (locktypes.Role, error)
}

// Upload records one uploaded file.
type Upload struct {
	File   string
	Key    string
	Bucket string
	Role   locktypes.Role
	Size   int64
}

// Report describes what a run did. A partial report accompanies any error.
// A bucket created before its provisioning failed is still recorded, since
// it is left in place.
type Report struct {
	// State is the last state reached.
	State            State
	GovernanceBucket string
	ComplianceBucket string
	Uploads          []Upload
}

// BucketFor returns the bucket name provisioned for role.
func (r *Report) BucketFor(role locktypes.Role) string {
	if role == locktypes.RoleCompliance {
		return r.ComplianceBucket
	}
	return r.GovernanceBucket
}

// Workflow runs one distribution pass over an upload directory.
type Workflow struct {
	gateway     provision.Gateway
	provisioner *provision.Provisioner
	classifier  Classifier
	fs          billy.Filesystem
	uploadDir   string
	logger      *slog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithProvisioner sets the bucket provisioner. Without it, New builds one
// from the gateway and base name with locking disabled.
func WithProvisioner(p *provision.Provisioner) Option {
	return func(w *Workflow) {
		w.provisioner = p
	}
}

// WithClassifier sets the file classifier. Defaults to the access(2) probe.
func WithClassifier(c Classifier) Option {
	return func(w *Workflow) {
		w.classifier = c
	}
}

// WithFilesystem sets the filesystem the upload directory is read from.
// Defaults to the OS filesystem rooted at "/".
func WithFilesystem(fs billy.Filesystem) Option {
	return func(w *Workflow) {
		w.fs = fs
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Workflow uploading uploadDir through gateway. The gateway is
// the single storage session used for the whole run.
func New(gateway provision.Gateway, baseName, uploadDir string, opts ...Option) *Workflow {
	w := &Workflow{
		gateway:   gateway,
		uploadDir: uploadDir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.fs == nil {
		w.fs = osfs.New("/")
	}
	if w.classifier == nil {
		w.classifier = classify.NewAccessClassifier()
	}
	if w.provisioner == nil {
		w.provisioner = provision.New(gateway, baseName, provision.WithLogger(w.logger))
	}

	return w
}

// Run executes the pipeline. The returned report is never nil.
func (w *Workflow) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	w.reach(report, StateInit)

	info, err := w.fs.Stat(w.uploadDir)
	if err != nil {
		return w.fail(report, fmt.Errorf("%w: %s: %w", ErrUploadDirMissing, w.uploadDir, err))
	}
	if !info.IsDir() {
		return w.fail(report, fmt.Errorf("%w: %s is not a directory", ErrUploadDirMissing, w.uploadDir))
	}
	w.reach(report, StateDirectoryCheck)

	if w.gateway == nil {
		return w.fail(report, errors.New("no storage session"))
	}
	w.reach(report, StateSessionReady)

	report.GovernanceBucket, err = w.provisioner.Provision(ctx, locktypes.RoleGovernance)
	if err != nil {
		return w.fail(report, err)
	}
	w.reach(report, StateGovernanceProvisioned)

	report.ComplianceBucket, err = w.provisioner.Provision(ctx, locktypes.RoleCompliance)
	if err != nil {
		return w.fail(report, err)
	}
	w.reach(report, StateComplianceProvisioned)

	if err := w.uploadAll(ctx, report); err != nil {
		return w.fail(report, err)
	}
	w.reach(report, StateUploadsComplete)

	return report, nil
}

// uploadAll uploads each regular file directly inside the upload directory,
// in name order. Links to regular files count as regular files.
// Subdirectories and special files are skipped unclassified.
func (w *Workflow) uploadAll(ctx context.Context, report *Report) error {
	entries, err := w.fs.ReadDir(w.uploadDir)
	if err != nil {
		return fmt.Errorf("read upload directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		path := w.fs.Join(w.uploadDir, entry.Name())
		if !w.isRegularFile(entry, path) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		role, err := w.classifier.Classify(path)
		if err != nil {
			return fmt.Errorf("classify %s: %w", path, err)
		}

		bucket := report.BucketFor(role)
		w.logger.Info("uploading file", "file", path, "role", role.String(), "bucket", bucket)

		result, err := w.gateway.UploadFile(ctx, bucket, entry.Name(), path)
		if err != nil {
			return err
		}

		report.Uploads = append(report.Uploads, Upload{
			File:   path,
			Key:    entry.Name(),
			Bucket: bucket,
			Role:   role,
			Size:   result.Size,
		})
	}

	return nil
}

// isRegularFile reports whether entry is a regular file, following a
// symbolic link to its target. Dangling links are skipped.
func (w *Workflow) isRegularFile(entry os.FileInfo, path string) bool {
	mode := entry.Mode()
	if mode&os.ModeSymlink != 0 {
		target, err := w.fs.Stat(path)
		if err != nil {
			w.logger.Warn("skipping unreadable link", "name", entry.Name(), "error", err)
			return false
		}
		mode = target.Mode()
	}
	if !mode.IsRegular() {
		w.logger.Debug("skipping entry", "name", entry.Name(), "mode", mode.String())
		return false
	}
	return true
}

func (w *Workflow) reach(report *Report, state State) {
	report.State = state
	w.logger.Info("workflow state", "state", string(state))
}

func (w *Workflow) fail(report *Report, err error) (*Report, error) {
	w.logger.Error("workflow failed", "state", string(report.State), "error", err)
	return report, err
}
