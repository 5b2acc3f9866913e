// Copyright 2026 Oxide Computer Company

package main

import (
	"flag"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/config"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/driver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"
)

// baselineFlags registers the two baseline-override flags spec.md's
// driver surface calls for: a baseline revision (compared against via
// merge-base) and a baseline directory (for tests, or for comparing
// against a fixed extracted tree instead of git history). They're
// mutually exclusive; Resolve reports an error if both are set.
type baselineFlags struct {
	revision string
	dir      string
}

func (b *baselineFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&b.revision, "baseline-revision", "",
		"branch or revision to compare the working tree against (default: from .apimgr.toml, or \"main\")")
	fs.StringVar(&b.dir, "baseline-dir", "",
		"load the baseline from a plain directory instead of version control")
}

// Resolve turns the parsed flags into a driver.Baseline, applying the
// config file's baseline branch when neither flag was given.
func (b *baselineFlags) Resolve(env *apimgrctx.Ctx) (driver.Baseline, error) {
	if b.dir != "" && b.revision != "" {
		return driver.Baseline{}, errBaselineFlagsConflict
	}
	if b.dir != "" {
		return driver.Baseline{Dir: b.dir}, nil
	}

	revision := b.revision
	if revision == "" {
		cfg, _, err := config.Load(env.RepoRoot)
		if err != nil {
			return driver.Baseline{}, err
		}
		revision = cfg.BaselineBranchOrDefault()
	}
	return driver.Baseline{Revision: vcs.Revision(revision)}, nil
}

var errBaselineFlagsConflict = baselineFlagsConflictError{}

type baselineFlagsConflictError struct{}

func (baselineFlagsConflictError) Error() string {
	return "-baseline-revision and -baseline-dir are mutually exclusive"
}
