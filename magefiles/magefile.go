// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

// Package main contains Mage build targets for the docship tools.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir     = "bin"
	modulePath = "github.com/pdiddy/docship"
)

// binaries maps each CLI to its main package.
var binaries = map[string]string{
	"pdf-extract": "./cmd/pdf-extract",
	"gh-upload":   "./cmd/gh-upload",
}

// version returns the string stamped into binaries: $VERSION or "dev".
func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}

// Build compiles both CLIs into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	ldflags := "-X main.version=" + version()
	for name, pkg := range binaries {
		out := filepath.Join(binDir, name)
		if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, pkg); err != nil {
			return fmt.Errorf("go build %s: %w", pkg, err)
		}
		fmt.Printf("Built %s\n", out)
	}
	return nil
}

// Test runs the unit tests. The sqlite driver needs cgo.
func Test() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "./...")
}

// Check vets the module and then runs the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Install builds and copies both CLIs into $GOBIN.
func Install() error {
	ldflags := "-X main.version=" + version()
	for _, pkg := range binaries {
		if err := sh.RunV("go", "install", "-ldflags", ldflags, pkg); err != nil {
			return fmt.Errorf("go install %s: %w", pkg, err)
		}
	}
	return nil
}

// Clean removes build output.
func Clean() error {
	fmt.Printf("Removing %s/\n", binDir)
	return sh.Rm(binDir)
}

// Stats prints Go production and test line counts per top-level directory.
func Stats() error {
	counts := map[string][2]int{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		top := strings.SplitN(filepath.ToSlash(path), "/", 2)[0]
		c := counts[top]
		if strings.HasSuffix(path, "_test.go") {
			c[1] += n
		} else {
			c[0] += n
		}
		counts[top] = c
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var prod, test int
	for _, dir := range dirs {
		c := counts[dir]
		fmt.Printf("%-12s production %6d  tests %6d\n", dir, c[0], c[1])
		prod += c[0]
		test += c[1]
	}
	fmt.Printf("Lines of code (%s, production): %d\n", modulePath, prod)
	fmt.Printf("Lines of code (%s, tests):      %d\n", modulePath, test)
	return nil
}

// countLines counts non-blank lines in the file at path.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
