// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Namer derives the destination identity of an item. Implementations are
// pure: the same item and configuration always give the same destination.
type Namer interface {
	Destination(item Item) string
}

// FileNamer maps items to filesystem paths under OutputRoot with the
// extension replaced. When Recursive is false only the base name is kept,
// so every output lands directly in OutputRoot.
type FileNamer struct {
	OutputRoot string
	Recursive  bool
	Extension  string
}

// Destination implements Namer.
func (n FileNamer) Destination(item Item) string {
	rel := item.RelPath
	if !n.Recursive {
		rel = filepath.Base(item.Path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + n.Extension
	return filepath.Join(n.OutputRoot, rel)
}

// RemoteNamer maps items to forward-slash remote paths, optionally under
// Prefix. Backslashes are normalized whatever the local separator is, and
// the result never starts with a slash.
type RemoteNamer struct {
	Prefix string
}

// Destination implements Namer.
func (n RemoteNamer) Destination(item Item) string {
	rel := toSlash(item.RelPath)
	if prefix := strings.Trim(toSlash(n.Prefix), "/"); prefix != "" {
		rel = prefix + "/" + rel
	}
	return strings.TrimLeft(path.Clean(rel), "/")
}

func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}

// PrepareDestination creates every missing directory on the way to the file
// at dest. It is idempotent.
func PrepareDestination(dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}
	return nil
}
