// Copyright 2026 Oxide Computer Company

// Package config reads the optional .apimgr.toml file a repository can
// carry for defaults that would otherwise be repetitive command-line
// flags. Generalizes the teacher's toml.go, which reads Gopkg.toml
// through a hand-rolled tree-query mapper; with no legacy TOML schema to
// stay compatible with here, we marshal straight through an intermediate
// struct via go-toml's reflection-based Marshal/Unmarshal instead.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the subset of a run's settings a repository can pin in
// .apimgr.toml. Every field has a zero value that means "use the
// built-in default"; CLI flags always take precedence over a loaded
// Config, which in turn takes precedence over those defaults.
type Config struct {
	// DocumentsRoot is the directory containing managed OpenAPI
	// documents, relative to the repository root. Defaults to
	// "openapi" when unset.
	DocumentsRoot string `toml:"documents_root"`
	// BaselineBranch is the branch blessed documents are compared
	// against when no --baseline-revision flag is given. Defaults to
	// "main" when unset.
	BaselineBranch string `toml:"baseline_branch"`
	// GitBinary names a git executable. It is copied into
	// apimgrctx.Ctx.GitBin but does not change which binary internal/vcs
	// runs (that follows the GIT environment variable).
	GitBinary string `toml:"git_binary"`
	// UseGitRefStorage is parsed from the file but not applied: the
	// registry turns ".gitref" storage on only through
	// registry.Registry.WithGitRefStorage.
	UseGitRefStorage bool `toml:"use_git_ref_storage"`
}

// DefaultDocumentsRoot is DocumentsRoot's value when both the config
// file and the command line leave it unset.
const DefaultDocumentsRoot = "openapi"

// DefaultBaselineBranch is BaselineBranch's value when both the config
// file and the command line leave it unset.
const DefaultBaselineBranch = "main"

// FileName is the config file's expected basename, read from a
// repository's root directory.
const FileName = ".apimgr.toml"

// Load reads FileName from dir. A missing file is not an error: it
// reports ok=false and a zero Config, exactly as optional config should
// behave for a repository that simply hasn't opted in.
func Load(dir string) (cfg Config, ok bool, err error) {
	path := filepath.Join(dir, FileName)
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}
		return Config{}, false, errors.Wrapf(err, "reading %s", path)
	}

	if err := toml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, false, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, true, nil
}

// DocumentsRootOrDefault returns c.DocumentsRoot, falling back to
// DefaultDocumentsRoot when unset.
func (c Config) DocumentsRootOrDefault() string {
	if c.DocumentsRoot == "" {
		return DefaultDocumentsRoot
	}
	return c.DocumentsRoot
}

// BaselineBranchOrDefault returns c.BaselineBranch, falling back to
// DefaultBaselineBranch when unset.
func (c Config) BaselineBranchOrDefault() string {
	if c.BaselineBranch == "" {
		return DefaultBaselineBranch
	}
	return c.BaselineBranch
}
