// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunOptions holds settings shared by both tools that sit outside the
// per-item transform: where to write the batch report and run history.
type RunOptions struct {
	// ReportPath is an optional YAML file receiving the batch report.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`

	// HistoryDB is an optional SQLite database that accumulates run history.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`

	// Verbose enables debug-level diagnostics.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// ExtractConfig holds settings for the PDF text extractor.
type ExtractConfig struct {
	RunOptions `yaml:",inline"`

	// InputDir is the directory scanned for PDF files.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir is the root for text output. Empty means InputDir.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Recursive descends into subdirectories and mirrors their layout
	// under OutputDir.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Extension selects input files (default ".pdf").
	Extension string `json:"extension" yaml:"extension"`

	// OutputExtension replaces the input extension on output files
	// (default ".txt").
	OutputExtension string `json:"output_extension" yaml:"output_extension"`
}

// HTTPConfig holds shared HTTP settings used when talking to the remote host.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on 429 and 5xx responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// UploadConfig holds settings for the GitHub uploader.
type UploadConfig struct {
	RunOptions `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// LocalDir is the directory scanned (recursively) for files to upload.
	LocalDir string `json:"local_dir" yaml:"local_dir"`

	// Repository is the target repository as "owner/name".
	Repository string `json:"repository" yaml:"repository"`

	// RemoteDir is an optional directory inside the repository that
	// prefixes every remote path.
	RemoteDir string `json:"remote_dir,omitempty" yaml:"remote_dir,omitempty"`

	// Extension selects files to upload (default ".txt").
	Extension string `json:"extension" yaml:"extension"`

	// Branch targets a branch other than the repository default.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`

	// APIURL overrides the GitHub REST endpoint (GitHub Enterprise, tests).
	APIURL string `json:"api_url,omitempty" yaml:"api_url,omitempty"`

	// RequestsPerSecond paces remote calls. Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// StrictLookup fails an item when the existence check errors instead
	// of falling through to create.
	StrictLookup bool `json:"strict_lookup" yaml:"strict_lookup"`
}
