// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns PDF documents into plain-text files. The PDF decoder
// sits behind the Opener/Document/Page seam; the default implementation is
// backed by github.com/ledongthuc/pdf.
package extract

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/pdiddy/docship/internal/pipeline"
	"github.com/pdiddy/docship/pkg/types"
)

const (
	// DefaultExtension selects input files.
	DefaultExtension = ".pdf"
	// DefaultOutputExtension replaces the input extension on output files.
	DefaultOutputExtension = ".txt"

	// pageSeparator follows every non-empty page, leaving a blank line
	// between consecutive pages.
	pageSeparator = "\n\n"
)

// ErrNoText is returned for documents where no page yielded any text,
// such as scanned image-only PDFs.
var ErrNoText = errors.New("no extractable text")

// Page is one page of an opened document.
type Page interface {
	// PlainText returns the page's text, or "" when it has none.
	PlainText() (string, error)
}

// Document is an opened PDF.
type Document interface {
	// NumPage returns the number of pages. Pages are numbered from 1.
	NumPage() int
	Page(n int) Page
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// Extractor reads documents and returns their text.
type Extractor struct {
	opener Opener
}

// New creates an Extractor using opener. A nil opener selects PDFOpener.
func New(opener Opener) *Extractor {
	if opener == nil {
		opener = PDFOpener{}
	}
	return &Extractor{opener: opener}
}

// Extract opens the document at path and concatenates the text of every
// page in order. Pages without text are skipped; each page that has text is
// followed by a blank line.
func (e *Extractor) Extract(path string) (string, error) {
	doc, err := e.opener.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "opening PDF %s", path)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		text, err := doc.Page(i).PlainText()
		if err != nil {
			return "", errors.Wrapf(err, "extracting page %d of %s", i, path)
		}
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString(pageSeparator)
	}

	if b.Len() == 0 {
		return "", errors.Wrapf(ErrNoText, "%s", path)
	}
	return b.String(), nil
}

// Transform implements pipeline.Transformer: it extracts the item's text
// and writes it to dest as UTF-8, creating parent directories and
// overwriting any existing file.
func (e *Extractor) Transform(_ context.Context, item pipeline.Item, dest string) (pipeline.Action, error) {
	text, err := e.Extract(item.Path)
	if err != nil {
		return "", err
	}
	if err := pipeline.PrepareDestination(dest); err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, []byte(text), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", dest)
	}
	return pipeline.ActionExtracted, nil
}

// ExtractDir runs the extraction pipeline over cfg.InputDir. Text files go
// to cfg.OutputDir (default: the input directory), named after their source
// with the extension replaced. Status lines are written to w.
func ExtractDir(ctx context.Context, e *Extractor, cfg types.ExtractConfig, w io.Writer, log *zap.Logger) (pipeline.Report, error) {
	if err := pipeline.CheckRoot(cfg.InputDir); err != nil {
		return pipeline.Report{Root: cfg.InputDir}, err
	}

	// Output directories are created per item, so a run with no matches
	// leaves the filesystem untouched.
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = cfg.InputDir
	}

	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	outExt := cfg.OutputExtension
	if outExt == "" {
		outExt = DefaultOutputExtension
	}

	return pipeline.Run(ctx, pipeline.Config{
		Root:      cfg.InputDir,
		Recursive: cfg.Recursive,
		Select:    pipeline.ExtensionSelector(ext),
		Namer: pipeline.FileNamer{
			OutputRoot: outDir,
			Recursive:  cfg.Recursive,
			Extension:  outExt,
		},
		Transformer: e,
		Out:         w,
		Log:         log,
	})
}
