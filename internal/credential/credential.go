// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package credential resolves the GitHub token through an explicit, ordered
// chain of sources. The first source yielding a non-empty value wins.
package credential

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/pdiddy/docship/internal/secrets"
)

const (
	// EnvVar is the environment variable holding the token.
	EnvVar = "GITHUB_TOKEN"
	// SecretKey is the file name of the token under the secrets directory.
	SecretKey = "github-token"
	// PromptLabel is shown when asking for the token interactively.
	PromptLabel = "Enter your GitHub Personal Access Token"
)

// ErrNoToken is returned when no source yields a token.
var ErrNoToken = errors.New("no GitHub token available")

// Source is one place a token can come from. Lookup returns "" when the
// source has nothing to offer; an error aborts resolution.
type Source interface {
	Name() string
	Lookup() (string, error)
}

// Chain is an ordered list of sources.
type Chain []Source

// Resolve returns the first non-empty token and the name of its source.
func (c Chain) Resolve() (token, source string, err error) {
	for _, s := range c {
		v, err := s.Lookup()
		if err != nil {
			return "", "", errors.Wrapf(err, "reading token from %s", s.Name())
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, s.Name(), nil
		}
	}
	return "", "", errors.WithHintf(ErrNoToken,
		"pass --token, set %s, or store it in .secrets/%s", EnvVar, SecretKey)
}

// DefaultChain is the order used by the uploader: the explicit flag value,
// the environment, a .env file, the secrets directory, and finally an
// interactive prompt. Warnings from the secrets directory go to log.
func DefaultChain(flagValue, secretsDir string, log *zap.Logger) Chain {
	return Chain{
		Static("--token", flagValue),
		Env(EnvVar),
		DotEnv(".env", EnvVar),
		Secrets(secretsDir, SecretKey, log),
		Prompt(TerminalPrompter),
	}
}

type sourceFunc struct {
	name   string
	lookup func() (string, error)
}

func (s sourceFunc) Name() string            { return s.name }
func (s sourceFunc) Lookup() (string, error) { return s.lookup() }

// Static offers a fixed value, typically from a command-line flag.
func Static(name, value string) Source {
	return sourceFunc{name: name, lookup: func() (string, error) { return value, nil }}
}

// Env reads an environment variable.
func Env(key string) Source {
	return sourceFunc{name: "$" + key, lookup: func() (string, error) { return os.Getenv(key), nil }}
}

// DotEnv reads key from a dotenv file. A missing file yields nothing.
func DotEnv(path, key string) Source {
	return sourceFunc{name: path, lookup: func() (string, error) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return "", nil
		}
		vals, err := godotenv.Read(path)
		if err != nil {
			return "", err
		}
		return vals[key], nil
	}}
}

// Secrets reads key from a secrets directory (one file per secret).
func Secrets(dir, key string, log *zap.Logger) Source {
	return sourceFunc{name: filepath.Join(dir, key), lookup: func() (string, error) {
		return secrets.Lookup(dir, key, log)
	}}
}

// Prompter asks the user for a value. It returns "" when it cannot ask.
type Prompter func(label string) (string, error)

// Prompt asks for the token with p.
func Prompt(p Prompter) Source {
	return sourceFunc{name: "prompt", lookup: func() (string, error) { return p(PromptLabel) }}
}

// TerminalPrompter reads a masked value from the terminal. When stdin is not
// a terminal it returns "" without blocking.
func TerminalPrompter(label string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}
	return pterm.DefaultInteractiveTextInput.WithMask("*").Show(label)
}
