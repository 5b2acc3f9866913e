// Copyright 2026 Oxide Computer Company

package apimgrctx

import (
	"fmt"
	"io"
)

// Ctx defines the supporting context threaded through every subcommand:
// where to write normal and diagnostic output, whether verbose logging
// is enabled, and the two directories every operation is relative to.
// Generalizes the teacher's Ctx{GOPATH} / dep.Ctx{Out,Err,Verbose} shape
// (cmd/dep/main.go's Config{WorkingDir, Args, Env, Stdout, Stderr}, and
// the bare Ctx this package replaces) to apimgr's two-root world: a
// repository root (for VCS plumbing) and a documents root (for the
// OpenAPI files under management).
type Ctx struct {
	Out     io.Writer
	Err     io.Writer
	Verbose bool

	// WorkingDir is the directory subcommands were invoked from.
	WorkingDir string
	// RepoRoot is the root of the git repository containing DocsRoot.
	RepoRoot string
	// DocsRoot is the directory containing managed OpenAPI documents,
	// always a descendant of (or equal to) RepoRoot.
	DocsRoot string
	// GitBin records the git executable named in .apimgr.toml. Nothing
	// reads it: internal/vcs runs the binary named by the GIT environment
	// variable, or "git" when that is unset.
	GitBin string
}

// Logf writes a formatted diagnostic line to Err if Verbose is set.
func (c *Ctx) Logf(format string, args ...interface{}) {
	if !c.Verbose {
		return
	}
	fmt.Fprintf(c.Err, format, args...)
}

// OpenAPIAbsDir returns the absolute path documents are read from and
// written to. Mirrors ResolvedEnv::openapi_abs_dir(); DocsRoot is
// already absolute by construction (see the Ctx.DocsRoot doc comment),
// so this exists chiefly so the fix executor has the same accessor name
// as the teacher's Env.
func (c *Ctx) OpenAPIAbsDir() string { return c.DocsRoot }
