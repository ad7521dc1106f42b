// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cliutil holds the command bootstrapping shared by pdf-extract and
// gh-upload: config loading, logger setup, error printing, and the
// post-run report and history steps.
package cliutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/docship/internal/history"
	"github.com/pdiddy/docship/internal/logging"
	"github.com/pdiddy/docship/internal/pipeline"
	"github.com/pdiddy/docship/pkg/types"
)

const (
	// ConfigName is the config file base name searched in . and
	// ~/.config/docship.
	ConfigName = "docship"
	// EnvPrefix prefixes environment overrides, e.g. DOCSHIP_OUTPUT_DIR.
	EnvPrefix = "DOCSHIP"
)

// Flag names shared by both commands.
const (
	FlagConfig    = "config"
	FlagReport    = "report"
	FlagHistoryDB = "history-db"
	FlagVerbose   = "verbose"
)

func isCommonFlag(name string) bool {
	switch name {
	case FlagConfig, FlagReport, FlagHistoryDB, FlagVerbose:
		return true
	}
	return false
}

// AddCommonFlags registers the flags every command carries.
func AddCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagConfig, "", "config file (default: ./docship.yaml or ~/.config/docship/docship.yaml)")
	cmd.Flags().String(FlagReport, "", "write a YAML batch report to this file")
	cmd.Flags().String(FlagHistoryDB, "", "append the run to this SQLite history database")
	cmd.Flags().BoolP(FlagVerbose, "v", false, "enable debug diagnostics on stderr")
}

// LoadConfig resolves cmd's flags against the environment and the config
// file and returns the values keyed by flag name. Precedence is flag, env,
// file, default. Common flags are top-level keys; every other flag lives
// under a section named after tool, so "gh-upload.extension" in the file
// and DOCSHIP_GH_UPLOAD_EXTENSION in the environment only reach gh-upload.
// A missing config file is not an error unless --config names it.
func LoadConfig(cmd *cobra.Command, tool string) (*viper.Viper, error) {
	v := viper.New()

	cfgFile, _ := cmd.Flags().GetString(FlagConfig)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	keys := map[string]string{}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if !isCommonFlag(key) {
			key = tool + "." + key
		}
		keys[f.Name] = key
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = errors.Wrapf(err, "binding flag %s", f.Name)
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", v.ConfigFileUsed())
	}

	resolved := viper.New()
	for name, key := range keys {
		resolved.Set(name, v.Get(key))
	}
	return resolved, nil
}

// RunOptions reads the common flags from v.
func RunOptions(v *viper.Viper) types.RunOptions {
	return types.RunOptions{
		ReportPath: v.GetString(FlagReport),
		HistoryDB:  v.GetString(FlagHistoryDB),
		Verbose:    v.GetBool(FlagVerbose),
	}
}

// Logger returns the diagnostics logger for cmd, writing to its stderr.
func Logger(cmd *cobra.Command, opts types.RunOptions) *zap.Logger {
	return logging.New(cmd.ErrOrStderr(), opts.Verbose)
}

// Finish writes the optional report and history entry for a completed run.
func Finish(ctx context.Context, w io.Writer, tool string, opts types.RunOptions, r pipeline.Report, started time.Time, log *zap.Logger) error {
	log = logging.OrNop(log)

	if opts.ReportPath != "" {
		if err := pipeline.WriteReport(opts.ReportPath, tool, r); err != nil {
			return err
		}
		fmt.Fprintf(w, "Report written to %s\n", opts.ReportPath)
	}

	if opts.HistoryDB != "" {
		store, err := history.Open(opts.HistoryDB)
		if err != nil {
			return errors.Wrapf(err, "opening history %s", opts.HistoryDB)
		}
		defer store.Close()

		id, err := store.Record(ctx, tool, r, started)
		if err != nil {
			return errors.Wrap(err, "recording run")
		}
		log.Debug("recorded run",
			zap.String(logging.FieldRunID, id),
			zap.String(logging.FieldState, string(r.State())))
		fmt.Fprintf(w, "Recorded run %s\n", id)
	}
	return nil
}

// PrintError writes err and any attached hints to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	for _, h := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "hint: %s\n", h)
	}
}
