// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload sends local text files to a remote repository, creating
// each file or updating it in place when it already exists.
package upload

import (
	"context"
	"io"
	"os"
	"path"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/docship/internal/logging"
	"github.com/pdiddy/docship/internal/pipeline"
	"github.com/pdiddy/docship/pkg/types"
)

// DefaultExtension selects files to upload.
const DefaultExtension = ".txt"

// ErrNotText is returned for files that are not valid UTF-8.
var ErrNotText = errors.New("not valid UTF-8 text")

// LookupState is the result of checking whether a remote file exists.
type LookupState int

const (
	NotFound LookupState = iota
	Found
	LookupFailed
)

func (s LookupState) String() string {
	switch s {
	case Found:
		return "found"
	case LookupFailed:
		return "lookup failed"
	default:
		return "not found"
	}
}

// Handle identifies an existing remote file and its current version.
// The uploader passes SHA back unchanged when updating.
type Handle struct {
	Path string
	SHA  string
}

// Lookup is the tri-state outcome of Repository.GetFile. Handle is set only
// when State is Found; Err only when State is LookupFailed.
type Lookup struct {
	State  LookupState
	Handle Handle
	Err    error
}

// Repository is the remote side of an upload.
type Repository interface {
	// FullName returns the repository's "owner/name".
	FullName() string
	// GetFile checks for an existing file at path.
	GetFile(ctx context.Context, path string) Lookup
	// CreateFile adds a new file.
	CreateFile(ctx context.Context, path, message string, content []byte) error
	// UpdateFile replaces an existing file whose current version is sha.
	UpdateFile(ctx context.Context, path, message string, content []byte, sha string) error
}

// Uploader is the per-item transform for uploads.
type Uploader struct {
	repo    Repository
	strict  bool
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithStrictLookup makes a failed existence check fail the item. By default
// a failed check is treated as "not found" and the file is created, which
// can surface as a conflict from the remote when the file does exist.
func WithStrictLookup(strict bool) Option {
	return func(u *Uploader) { u.strict = strict }
}

// WithRateLimit paces remote calls to rps requests per second. Zero or
// negative disables pacing.
func WithRateLimit(rps float64) Option {
	return func(u *Uploader) {
		if rps > 0 {
			u.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) { u.log = logging.OrNop(l) }
}

// New creates an Uploader targeting repo.
func New(repo Repository, opts ...Option) *Uploader {
	u := &Uploader{repo: repo, log: zap.NewNop()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CommitMessage returns the commit message for verb ("Add" or "Update")
// applied to the remote file at remotePath.
func CommitMessage(verb, remotePath string) string {
	return verb + " " + path.Base(remotePath)
}

// Transform implements pipeline.Transformer: it reads the item as text and
// creates or updates dest in the repository.
func (u *Uploader) Transform(ctx context.Context, item pipeline.Item, dest string) (pipeline.Action, error) {
	content, err := os.ReadFile(item.Path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", item.Path)
	}
	if !utf8.Valid(content) {
		return "", errors.Wrapf(ErrNotText, "%s", item.Path)
	}

	if err := u.wait(ctx); err != nil {
		return "", err
	}
	lookup := u.repo.GetFile(ctx, dest)

	switch lookup.State {
	case Found:
		if err := u.wait(ctx); err != nil {
			return "", err
		}
		if err := u.repo.UpdateFile(ctx, dest, CommitMessage("Update", dest), content, lookup.Handle.SHA); err != nil {
			return "", errors.Wrapf(err, "updating %s", dest)
		}
		return pipeline.ActionUpdated, nil
	case LookupFailed:
		if lookup.Err == nil {
			lookup.Err = errors.New("existence check failed")
		}
		if u.strict {
			return "", errors.Wrapf(lookup.Err, "checking %s", dest)
		}
		u.log.Warn("existence check failed, creating instead",
			zap.String(logging.FieldDestination, dest),
			zap.Error(lookup.Err))
	}

	if err := u.wait(ctx); err != nil {
		return "", err
	}
	if err := u.repo.CreateFile(ctx, dest, CommitMessage("Add", dest), content); err != nil {
		return "", errors.Wrapf(err, "creating %s", dest)
	}
	return pipeline.ActionCreated, nil
}

func (u *Uploader) wait(ctx context.Context) error {
	if u.limiter == nil {
		return nil
	}
	if err := u.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "waiting for rate limiter")
	}
	return nil
}

// UploadDir runs the upload pipeline over cfg.LocalDir. Every matching file
// at any depth is uploaded to cfg.RemoteDir joined with its relative path.
// Status lines are written to w.
func UploadDir(ctx context.Context, u *Uploader, cfg types.UploadConfig, w io.Writer, log *zap.Logger) (pipeline.Report, error) {
	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	return pipeline.Run(ctx, pipeline.Config{
		Root:        cfg.LocalDir,
		Recursive:   true,
		Select:      pipeline.ExtensionSelector(ext),
		Namer:       pipeline.RemoteNamer{Prefix: cfg.RemoteDir},
		Transformer: u,
		Out:         w,
		Log:         log,
	})
}
