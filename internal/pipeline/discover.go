// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotDirectory marks a source root that is missing or not a directory.
// It is a structural failure: no item is processed.
var ErrNotDirectory = errors.New("not a valid directory")

// Item is one discovered source file.
type Item struct {
	// Path is the source path as found under the root.
	Path string
	// RelPath is Path relative to the root, using native separators.
	RelPath string
}

// Selector reports whether a file name is eligible for the batch.
type Selector func(name string) bool

// ExtensionSelector matches names ending in ext, ignoring case. An empty
// ext matches every file.
func ExtensionSelector(ext string) Selector {
	suffix := strings.ToLower(ext)
	return func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), suffix)
	}
}

// CheckRoot verifies that root exists and is a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.WithHint(
			errors.Mark(errors.Wrapf(err, "%s is %s", root, ErrNotDirectory), ErrNotDirectory),
			"check that the path exists and is readable",
		)
	}
	if !info.IsDir() {
		return errors.WithHint(
			errors.Mark(errors.Newf("%s is %s", root, ErrNotDirectory), ErrNotDirectory),
			"pass a directory, not a file",
		)
	}
	return nil
}

// Discover lists the files under root accepted by sel. Without recursion
// only direct children are considered. Results are sorted by RelPath.
// Discover never modifies the filesystem. Unreadable subdirectories are
// skipped; only a bad root is an error.
func Discover(root string, recursive bool, sel Selector) ([]Item, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	if sel == nil {
		sel = ExtensionSelector("")
	}

	var items []Item
	if recursive {
		// WalkDir does not descend into a symlinked root, so walk its target
		// and report paths under the root as given.
		walkRoot, err := filepath.EvalSymlinks(root)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", root)
		}
		err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == walkRoot {
					return err
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !sel(d.Name()) || !isRegular(path, d) {
				return nil
			}
			rel, err := filepath.Rel(walkRoot, path)
			if err != nil {
				rel = d.Name()
			}
			items = append(items, Item{Path: filepath.Join(root, rel), RelPath: rel})
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", root)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", root)
		}
		for _, e := range entries {
			path := filepath.Join(root, e.Name())
			if e.IsDir() || !sel(e.Name()) || !isRegular(path, e) {
				continue
			}
			items = append(items, Item{Path: path, RelPath: e.Name()})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].RelPath < items[j].RelPath })
	return items, nil
}

// isRegular reports whether the entry is a regular file, following symlinks.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
