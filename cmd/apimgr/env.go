// Copyright 2026 Oxide Computer Company

package main

import (
	"bytes"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/config"
)

// newEnv builds the Ctx a subcommand runs against: it finds the
// enclosing git repository, loads an optional .apimgr.toml from it, and
// resolves the documents root the way config.Config.DocumentsRootOrDefault
// describes (relative to the repository root unless already absolute).
func newEnv(workingDir string, out, err io.Writer, verbose bool) (*apimgrctx.Ctx, error) {
	repoRoot, gitErr := repoRoot(workingDir)
	if gitErr != nil {
		return nil, errors.Wrap(gitErr, "finding enclosing git repository")
	}

	cfg, _, cfgErr := config.Load(repoRoot)
	if cfgErr != nil {
		return nil, cfgErr
	}

	docsRoot := cfg.DocumentsRootOrDefault()
	if !filepath.IsAbs(docsRoot) {
		docsRoot = filepath.Join(repoRoot, docsRoot)
	}

	return &apimgrctx.Ctx{
		Out:        out,
		Err:        err,
		Verbose:    verbose,
		WorkingDir: workingDir,
		RepoRoot:   repoRoot,
		DocsRoot:   docsRoot,
		GitBin:     cfg.GitBinary,
	}, nil
}

// repoRoot shells out to "git rev-parse --show-toplevel" to find the
// repository containing dir, the same reliance on the real git binary
// internal/vcs uses for its own plumbing commands.
func repoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Errorf("git rev-parse --show-toplevel failed: %v\n%s", err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}
