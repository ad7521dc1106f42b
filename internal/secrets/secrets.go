// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: github-token.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/pdiddy/docship/internal/logging"
)

// DefaultDir is the secrets directory used when none is configured.
const DefaultDir = ".secrets/"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings on log (which may be nil) but do
// not abort.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	log = logging.OrNop(log)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "reading secrets directory %s", dir)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String(logging.FieldFile, name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Lookup returns the secret named key from dir, or "" when it is absent.
func Lookup(dir, key string, log *zap.Logger) (string, error) {
	s, err := Load(dir, log)
	if err != nil {
		return "", err
	}
	return s[key], nil
}
