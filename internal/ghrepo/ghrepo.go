// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ghrepo adapts the GitHub contents API to upload.Repository.
package ghrepo

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/pdiddy/docship/internal/httputil"
	"github.com/pdiddy/docship/internal/upload"
)

// ErrInvalidRepoName is returned for repository names not of the form
// "owner/name".
var ErrInvalidRepoName = errors.New("repository name must be owner/name")

// Options configures Connect.
type Options struct {
	// Token is the bearer token sent with every request.
	Token string
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
	// UserAgent replaces the client's default User-Agent when set.
	UserAgent string
	// Branch targets a non-default branch for lookups and commits.
	Branch string
	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration
	// MaxRetries bounds retries on 429 and gateway errors.
	MaxRetries int
}

// Client is an authenticated GitHub API client.
type Client struct {
	gh     *github.Client
	branch string
}

// Connect builds an authenticated client. It does not contact the API.
func Connect(opts Options) (*Client, error) {
	hc := &http.Client{
		Timeout: opts.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			Base:   &httputil.RetryTransport{MaxRetries: opts.MaxRetries},
		},
	}

	gh := github.NewClient(hc)
	if opts.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, errors.Wrapf(err, "parsing API URL %s", opts.BaseURL)
		}
		gh.BaseURL = u
		gh.UploadURL = u
	}
	if opts.UserAgent != "" {
		gh.UserAgent = opts.UserAgent
	}

	return &Client{gh: gh, branch: opts.Branch}, nil
}

// ParseRepoName splits "owner/name".
func ParseRepoName(fullName string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", errors.WithHint(
			errors.Wrapf(ErrInvalidRepoName, "%q", fullName),
			"use the form username/repository",
		)
	}
	return owner, name, nil
}

// Repository fetches the repository named "owner/name".
func (c *Client) Repository(ctx context.Context, fullName string) (*Repository, error) {
	owner, name, err := ParseRepoName(fullName)
	if err != nil {
		return nil, err
	}

	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		err = errors.Wrapf(err, "getting repository %s", fullName)
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				err = errors.WithHint(err, "the token was rejected; check that it is valid and not expired")
			case http.StatusNotFound:
				err = errors.WithHint(err, "check the repository name and that the token can access it")
			}
		}
		return nil, err
	}

	return &Repository{
		gh:       c.gh,
		owner:    owner,
		name:     name,
		fullName: repo.GetFullName(),
		branch:   c.branch,
	}, nil
}

// Repository implements upload.Repository on the GitHub contents API.
type Repository struct {
	gh       *github.Client
	owner    string
	name     string
	fullName string
	branch   string
}

var _ upload.Repository = (*Repository)(nil)

// FullName implements upload.Repository.
func (r *Repository) FullName() string {
	if r.fullName != "" {
		return r.fullName
	}
	return r.owner + "/" + r.name
}

// GetFile implements upload.Repository. A 404 is NotFound; any other error,
// or a directory at path, is LookupFailed.
func (r *Repository) GetFile(ctx context.Context, path string) upload.Lookup {
	opts := &github.RepositoryContentGetOptions{Ref: r.branch}
	file, dir, resp, err := r.gh.Repositories.GetContents(ctx, r.owner, r.name, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return upload.Lookup{State: upload.NotFound}
		}
		return upload.Lookup{State: upload.LookupFailed, Err: errors.Wrapf(err, "getting contents of %s", path)}
	}
	if file == nil {
		return upload.Lookup{
			State: upload.LookupFailed,
			Err:   errors.Newf("%s is a directory with %d entries", path, len(dir)),
		}
	}
	return upload.Lookup{
		State:  upload.Found,
		Handle: upload.Handle{Path: file.GetPath(), SHA: file.GetSHA()},
	}
}

// CreateFile implements upload.Repository.
func (r *Repository) CreateFile(ctx context.Context, path, message string, content []byte) error {
	_, _, err := r.gh.Repositories.CreateFile(ctx, r.owner, r.name, path, r.fileOptions(message, content, ""))
	return err
}

// UpdateFile implements upload.Repository.
func (r *Repository) UpdateFile(ctx context.Context, path, message string, content []byte, sha string) error {
	_, _, err := r.gh.Repositories.UpdateFile(ctx, r.owner, r.name, path, r.fileOptions(message, content, sha))
	return err
}

func (r *Repository) fileOptions(message string, content []byte, sha string) *github.RepositoryContentFileOptions {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}
	if sha != "" {
		opts.SHA = github.String(sha)
	}
	if r.branch != "" {
		opts.Branch = github.String(r.branch)
	}
	return opts
}
