// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zap logger shared by both CLIs and defines the
// field names used in structured diagnostics.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names. Use these instead of raw strings so diagnostics
// from the pipeline, uploader, and history store line up.
const (
	FieldFile        = "file"
	FieldDestination = "destination"
	FieldAction      = "action"
	FieldCount       = "count"
	FieldRepository  = "repository"
	FieldSource      = "source"
	FieldRunID       = "run_id"
	FieldState       = "state"
)

// New returns a console logger writing to w. Verbose lowers the level from
// warn to debug.
func New(w io.Writer, verbose bool) *zap.Logger {
	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
