// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package apimgrtest provides the temp-directory-and-git-fixture harness
// shared by the reconciliation engine's and VCS adapter's tests.
package apimgrtest

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// Helper bundles a temp directory and the environment git commands run
// with for one test. Construct with NewHelper; the temp directory comes
// from t.TempDir, so the testing package removes it when the test ends.
type Helper struct {
	t       *testing.T
	tempdir string
	temps   []string
	env     []string
}

// NewHelper initializes a new helper for testing.
func NewHelper(t *testing.T) *Helper {
	return &Helper{t: t, env: append([]string(nil), os.Environ()...)}
}

// Must gives a fatal error if err is not nil.
func (h *Helper) Must(err error) {
	if err != nil {
		h.t.Fatalf("%+v", err)
	}
}

// TempDir creates (if necessary) and returns the helper's scratch
// directory, or a subdirectory of it when path is non-empty.
func (h *Helper) TempDir(path string) string {
	if h.tempdir == "" {
		h.tempdir = h.t.TempDir()
	}
	if path == "" {
		return h.tempdir
	}
	full := filepath.Join(h.tempdir, path)
	h.Must(os.MkdirAll(full, 0o755))
	return full
}

// Path returns an absolute path within the helper's scratch directory.
func (h *Helper) Path(name string) string {
	if h.tempdir == "" {
		h.t.Fatalf("%+v", errors.New("apimgrtest: Path called before TempDir"))
	}
	if name == "." || name == "" {
		return h.tempdir
	}
	return filepath.Join(h.tempdir, name)
}

// WriteFile writes contents to a path relative to the scratch directory,
// creating parent directories as needed.
func (h *Helper) WriteFile(path, contents string) string {
	full := h.Path(path)
	h.Must(os.MkdirAll(filepath.Dir(full), 0o755))
	h.Must(os.WriteFile(full, []byte(contents), 0o644))
	return full
}

// MustExist fails the test if path does not exist.
func (h *Helper) MustExist(path string) {
	if !h.Exist(path) {
		h.t.Fatalf("%+v", errors.Errorf("%s does not exist but should", path))
	}
}

// MustNotExist fails the test if path exists.
func (h *Helper) MustNotExist(path string) {
	if h.Exist(path) {
		h.t.Fatalf("%+v", errors.Errorf("%s exists but should not", path))
	}
}

// Exist reports whether path exists, following symlinks.
func (h *Helper) Exist(path string) bool {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false
		}
		h.t.Fatalf("%+v", errors.Wrapf(err, "checking if path exists: %s", path))
	}
	return true
}

// RunGit runs a git command in dir and fails the test if it does not
// succeed, matching the teacher's integration-test convention of shelling
// out to the real git binary rather than mocking it.
func (h *Helper) RunGit(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(h.env, "GIT_AUTHOR_NAME=apimgr-test", "GIT_AUTHOR_EMAIL=apimgr-test@example.com",
		"GIT_COMMITTER_NAME=apimgr-test", "GIT_COMMITTER_EMAIL=apimgr-test@example.com")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		h.t.Fatalf("git %v failed: %v\n%s", args, err, out.String())
	}
	return out.String()
}

// NeedsGit skips the test if the git binary is not on PATH.
func NeedsGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("skipping because git binary not found")
	}
}

// InitRepo creates a fresh git repository at dir, suitable as a starting
// point for building up commit history in a test.
func (h *Helper) InitRepo(dir string) {
	h.Must(os.MkdirAll(dir, 0o755))
	h.RunGit(dir, "init", "-q")
}

// Commit stages everything under dir and commits it, returning the new
// commit's hash.
func (h *Helper) Commit(dir, message string) string {
	h.RunGit(dir, "add", "-A")
	h.RunGit(dir, "commit", "-q", "-m", message, "--allow-empty")
	return trimmed(h.RunGit(dir, "rev-parse", "HEAD"))
}

func trimmed(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
