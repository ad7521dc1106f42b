// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf-extract CLI, which writes the
// text of every PDF in a directory to a matching .txt file.
package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docship/internal/cliutil"
	"github.com/pdiddy/docship/internal/extract"
	"github.com/pdiddy/docship/pkg/types"
)

const tool = "pdf-extract"

// version is set at build time via ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf-extract input_dir",
		Short: "Extract text from PDF files",
		Long: `pdf-extract walks input_dir for PDF files and writes the text of each one
to a .txt file of the same name. Pages are joined by a blank line and pages
without text are skipped.

Output goes next to the input unless --output-dir is given. With --recursive
subdirectories are scanned too and their layout is mirrored in the output.
A file that cannot be read is reported and the batch continues.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExtract,
	}

	cmd.Flags().StringP("output-dir", "o", "", "directory for text output (default: input_dir)")
	cmd.Flags().BoolP("recursive", "r", false, "process subdirectories")
	cmd.Flags().String("extension", extract.DefaultExtension, "extension of input files")
	cmd.Flags().String("output-ext", extract.DefaultOutputExtension, "extension of output files")
	cliutil.AddCommonFlags(cmd)

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	v, err := cliutil.LoadConfig(cmd, tool)
	if err != nil {
		return err
	}

	cfg := types.ExtractConfig{
		RunOptions:      cliutil.RunOptions(v),
		InputDir:        args[0],
		OutputDir:       v.GetString("output-dir"),
		Recursive:       v.GetBool("recursive"),
		Extension:       v.GetString("extension"),
		OutputExtension: v.GetString("output-ext"),
	}
	log := cliutil.Logger(cmd, cfg.RunOptions)
	defer log.Sync()

	started := time.Now()
	report, err := extract.ExtractDir(cmd.Context(), extract.New(nil), cfg, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	return cliutil.Finish(cmd.Context(), cmd.OutOrStdout(), tool, cfg.RunOptions, report, started, log)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		cliutil.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
