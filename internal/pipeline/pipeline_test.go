// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

// recordingTransformer remembers call order and fails for selected names.
type recordingTransformer struct {
	calls  []string
	fail   map[string]error
	panics map[string]bool
}

func (r *recordingTransformer) Transform(_ context.Context, item Item, _ string) (Action, error) {
	name := filepath.Base(item.Path)
	r.calls = append(r.calls, name)
	if r.panics[name] {
		panic("corrupt xref table")
	}
	if err := r.fail[name]; err != nil {
		return "", err
	}
	return ActionExtracted, nil
}

func TestRun_FailureIsolation(t *testing.T) {
	root := writeTree(t, "a.pdf", "b.pdf", "c.pdf", "d.pdf")
	tr := &recordingTransformer{
		fail:   map[string]error{"b.pdf": errors.New("bad pdf")},
		panics: map[string]bool{"c.pdf": true},
	}

	var log bytes.Buffer
	report, err := Run(context.Background(), Config{
		Root:        root,
		Select:      ExtensionSelector(".pdf"),
		Namer:       FileNamer{OutputRoot: root, Extension: ".txt"},
		Transformer: tr,
		Out:         &log,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}, tr.calls, "order must survive failures")
	require.Len(t, report.Outcomes, 4)
	assert.True(t, report.Outcomes[0].Succeeded())
	assert.False(t, report.Outcomes[1].Succeeded())
	assert.False(t, report.Outcomes[2].Succeeded())
	assert.Contains(t, report.Outcomes[2].Err.Error(), "panicked")
	assert.True(t, report.Outcomes[3].Succeeded())

	assert.Equal(t, 2, report.Succeeded())
	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, StateSomeFailed, report.State())
	assert.False(t, report.AllFailed())

	out := log.String()
	assert.Contains(t, out, "failed:  "+filepath.Join(root, "b.pdf")+" (bad pdf)")
	assert.Contains(t, out, "extracted: "+filepath.Join(root, "a.pdf")+" -> "+filepath.Join(root, "a.txt"))
	assert.Contains(t, out, "Batch summary: 2 succeeded, 2 failed (total: 4)")
	assert.Equal(t, 4, strings.Count(out, "processing: "))
}

func TestRun_AllSucceeded(t *testing.T) {
	root := writeTree(t, "x.pdf")
	report, err := Run(context.Background(), Config{
		Root:        root,
		Select:      ExtensionSelector(".pdf"),
		Namer:       FileNamer{OutputRoot: root, Extension: ".txt"},
		Transformer: &recordingTransformer{},
	})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, filepath.Join(root, "x.txt"), report.Outcomes[0].Destination)
	assert.Equal(t, ActionExtracted, report.Outcomes[0].Action)
	assert.Equal(t, StateAllSucceeded, report.State())
}

func TestRun_NoItems(t *testing.T) {
	root := writeTree(t, "notes.txt")
	tr := &recordingTransformer{}

	var log bytes.Buffer
	report, err := Run(context.Background(), Config{
		Root:        root,
		Select:      ExtensionSelector(".pdf"),
		Namer:       FileNamer{OutputRoot: root, Extension: ".txt"},
		Transformer: tr,
		Out:         &log,
	})
	require.NoError(t, err)

	assert.Empty(t, tr.calls)
	assert.Equal(t, StateNoItems, report.State())
	assert.False(t, report.AllFailed())
	assert.Contains(t, log.String(), "No matching files found in "+root)
}

func TestRun_StructuralFailure(t *testing.T) {
	tr := &recordingTransformer{}
	_, err := Run(context.Background(), Config{
		Root:        filepath.Join(t.TempDir(), "missing"),
		Namer:       RemoteNamer{},
		Transformer: tr,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotDirectory))
	assert.Empty(t, tr.calls)
}

func TestRun_RequiresCollaborators(t *testing.T) {
	_, err := Run(context.Background(), Config{Root: t.TempDir()})
	assert.Error(t, err)
}

func TestRun_AllFailed(t *testing.T) {
	root := writeTree(t, "a.txt", "b.txt")
	report, err := Run(context.Background(), Config{
		Root:      root,
		Recursive: true,
		Select:    ExtensionSelector(".txt"),
		Namer:     RemoteNamer{Prefix: "docs"},
		Transformer: TransformFunc(func(context.Context, Item, string) (Action, error) {
			return "", errors.New("401 Bad credentials")
		}),
	})
	require.NoError(t, err)
	assert.True(t, report.AllFailed())
	assert.Equal(t, "docs/a.txt", report.Outcomes[0].Destination)
}

func TestWriteReport(t *testing.T) {
	report := Report{
		Root: "/docs",
		Outcomes: []Outcome{
			{Item: Item{Path: "/docs/a.pdf", RelPath: "a.pdf"}, Destination: "/docs/a.txt", Action: ActionExtracted},
			{Item: Item{Path: "/docs/b.pdf", RelPath: "b.pdf"}, Destination: "/docs/b.txt", Err: errors.New("bad pdf")},
		},
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, WriteReport(path, "pdf-extract", report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got ReportFile
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "pdf-extract", got.Tool)
	assert.Equal(t, StateSomeFailed, got.State)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Items, 2)
	assert.Equal(t, ActionExtracted, got.Items[0].Action)
	assert.Empty(t, got.Items[0].Error)
	assert.Equal(t, "bad pdf", got.Items[1].Error)
}
