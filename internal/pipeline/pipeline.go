// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline implements the directory-to-destination batch transform
// shared by the extractor and the uploader: discover matching files under a
// root, derive a destination for each, apply a per-item transform, and
// record one outcome per item without letting a failure stop the batch.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/pdiddy/docship/internal/logging"
)

// Action names what a successful transform did to its destination.
type Action string

const (
	ActionExtracted Action = "extracted"
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
)

// Transformer consumes one item and writes or sends it to dest.
type Transformer interface {
	Transform(ctx context.Context, item Item, dest string) (Action, error)
}

// TransformFunc adapts a function to Transformer.
type TransformFunc func(ctx context.Context, item Item, dest string) (Action, error)

// Transform implements Transformer.
func (f TransformFunc) Transform(ctx context.Context, item Item, dest string) (Action, error) {
	return f(ctx, item, dest)
}

// Outcome is the result of transforming one item. Err is nil on success.
type Outcome struct {
	Item        Item
	Destination string
	Action      Action
	Err         error
}

// Succeeded reports whether the transform completed.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Config wires a batch run.
type Config struct {
	// Root is the directory scanned for items.
	Root string
	// Recursive descends into subdirectories.
	Recursive bool
	// Select filters file names; nil accepts every file.
	Select Selector
	// Namer derives each item's destination.
	Namer Namer
	// Transformer is applied to each item in discovery order.
	Transformer Transformer
	// Out receives the human-readable status lines. Nil discards them.
	Out io.Writer
	// Log receives structured diagnostics. Nil disables them.
	Log *zap.Logger
}

// Run discovers items under cfg.Root and transforms each one in turn. The
// returned error is non-nil only for structural failures (bad root,
// missing collaborators); per-item failures are recorded in the report.
func Run(ctx context.Context, cfg Config) (Report, error) {
	report := Report{Root: cfg.Root}
	if cfg.Namer == nil || cfg.Transformer == nil {
		return report, errors.AssertionFailedf("pipeline requires a namer and a transformer")
	}

	w := cfg.Out
	if w == nil {
		w = io.Discard
	}
	log := logging.OrNop(cfg.Log)

	items, err := Discover(cfg.Root, cfg.Recursive, cfg.Select)
	if err != nil {
		return report, err
	}
	log.Debug("discovered items", zap.String(logging.FieldSource, cfg.Root), zap.Int(logging.FieldCount, len(items)))

	if len(items) == 0 {
		fmt.Fprintf(w, "No matching files found in %s\n", cfg.Root)
		return report, nil
	}

	report.Outcomes = make([]Outcome, 0, len(items))
	for _, item := range items {
		report.Outcomes = append(report.Outcomes, runItem(ctx, cfg.Namer, cfg.Transformer, item, w, log))
	}

	fmt.Fprintf(w, "\nBatch summary: %d succeeded, %d failed (total: %d)\n",
		report.Succeeded(), report.Failed(), report.Total())
	return report, nil
}

// runItem transforms a single item. A panic inside the transform is
// recovered and recorded as that item's failure.
func runItem(ctx context.Context, n Namer, t Transformer, item Item, w io.Writer, log *zap.Logger) (out Outcome) {
	out = Outcome{Item: item, Destination: n.Destination(item)}
	fmt.Fprintf(w, "processing: %s\n", item.Path)

	defer func() {
		if r := recover(); r != nil {
			out.Action = ""
			out.Err = errors.Newf("transform panicked: %v", r)
		}
		if out.Err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", item.Path, out.Err)
			log.Warn("item failed",
				zap.String(logging.FieldFile, item.Path),
				zap.String(logging.FieldDestination, out.Destination),
				zap.Error(out.Err))
			return
		}
		fmt.Fprintf(w, "%s: %s -> %s\n", out.Action, item.Path, out.Destination)
		log.Debug("item done",
			zap.String(logging.FieldFile, item.Path),
			zap.String(logging.FieldDestination, out.Destination),
			zap.String(logging.FieldAction, string(out.Action)))
	}()

	out.Action, out.Err = t.Transform(ctx, item, out.Destination)
	return out
}
