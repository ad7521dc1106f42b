// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gh-upload CLI, which pushes the
// text files under a local directory into a GitHub repository.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/docship/internal/cliutil"
	"github.com/pdiddy/docship/internal/credential"
	"github.com/pdiddy/docship/internal/ghrepo"
	"github.com/pdiddy/docship/internal/logging"
	"github.com/pdiddy/docship/internal/pipeline"
	"github.com/pdiddy/docship/internal/secrets"
	"github.com/pdiddy/docship/internal/upload"
	"github.com/pdiddy/docship/pkg/types"
)

const tool = "gh-upload"

// version is set at build time via ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gh-upload local_dir repo_name",
		Short: "Upload text files to a GitHub repository",
		Long: `gh-upload walks local_dir (including subdirectories) for files with the
chosen extension and commits each one to repo_name ("owner/name") through
the GitHub contents API. Files already present are updated, others are
created, one commit per file.

The token is taken from --token, then $GITHUB_TOKEN, then GITHUB_TOKEN in
./.env, then .secrets/github-token, and finally an interactive prompt.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runUpload,
	}

	cmd.Flags().StringP("token", "t", "", "GitHub personal access token")
	cmd.Flags().StringP("github-dir", "g", "", "directory in the repository to upload into")
	cmd.Flags().StringP("extension", "e", upload.DefaultExtension, "extension of files to upload")
	cmd.Flags().String("branch", "", "target branch (default: the repository default branch)")
	cmd.Flags().String("api-url", "", "GitHub API base URL (for GitHub Enterprise)")
	cmd.Flags().Bool("strict-lookup", false, "fail a file when its existence check errors instead of creating it")
	cmd.Flags().Float64("rate", 0, "maximum API requests per second (0 = unlimited)")
	cmd.Flags().Int("max-retries", 3, "retries on rate limiting and gateway errors")
	cmd.Flags().Duration("timeout", 30*time.Second, "timeout for each HTTP request")
	cliutil.AddCommonFlags(cmd)

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	v, err := cliutil.LoadConfig(cmd, tool)
	if err != nil {
		return err
	}

	cfg := types.UploadConfig{
		RunOptions: cliutil.RunOptions(v),
		HTTPConfig: types.HTTPConfig{
			Timeout:    v.GetDuration("timeout"),
			UserAgent:  tool + "/" + version,
			MaxRetries: v.GetInt("max-retries"),
		},
		LocalDir:          args[0],
		Repository:        args[1],
		RemoteDir:         v.GetString("github-dir"),
		Extension:         v.GetString("extension"),
		Branch:            v.GetString("branch"),
		APIURL:            v.GetString("api-url"),
		RequestsPerSecond: v.GetFloat64("rate"),
		StrictLookup:      v.GetBool("strict-lookup"),
	}
	log := cliutil.Logger(cmd, cfg.RunOptions)
	defer log.Sync()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := pipeline.CheckRoot(cfg.LocalDir); err != nil {
		return err
	}
	if _, _, err := ghrepo.ParseRepoName(cfg.Repository); err != nil {
		return err
	}

	// The token comes from the credential chain, never from config files.
	flagToken, _ := cmd.Flags().GetString("token")
	token, source, err := credential.DefaultChain(flagToken, secrets.DefaultDir, log).Resolve()
	if err != nil {
		return err
	}
	log.Debug("resolved token", zap.String(logging.FieldSource, source))

	client, err := ghrepo.Connect(ghrepo.Options{
		Token:      token,
		BaseURL:    cfg.APIURL,
		UserAgent:  cfg.UserAgent,
		Branch:     cfg.Branch,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return err
	}
	repo, err := client.Repository(ctx, cfg.Repository)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to repository: %s\n", repo.FullName())
	log.Debug("connected", zap.String(logging.FieldRepository, repo.FullName()))

	u := upload.New(repo,
		upload.WithStrictLookup(cfg.StrictLookup),
		upload.WithRateLimit(cfg.RequestsPerSecond),
		upload.WithLogger(log),
	)

	started := time.Now()
	report, err := upload.UploadDir(ctx, u, cfg, out, log)
	if err != nil {
		return err
	}
	if err := cliutil.Finish(ctx, out, tool, cfg.RunOptions, report, started, log); err != nil {
		return err
	}

	switch {
	case report.State() == pipeline.StateNoItems:
		return errors.Newf("no %s files to upload", cfg.Extension)
	case report.AllFailed():
		return errors.Newf("all %d uploads failed", report.Total())
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		cliutil.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
