// Copyright 2026 Oxide Computer Company

// Package reconcile compares the documents the registry's generators
// produce against what's blessed in version control and what's on disk
// locally, classifying every discrepancy as a Problem and, where
// possible, pairing it with a Fix that can bring the local tree back
// into agreement. Grounded in full on original_source/.../resolved.rs
// (Resolution, ResolutionKind, Problem, Fix, Resolved, ApiResolved, and
// every resolve_api* helper), with the CheckStale/CheckStatus/validate
// machinery in validate.go reconstructed from resolved.rs's call sites
// rather than ported directly: the crate that actually defines those
// types (dropshot-api-manager/src/validation.rs) was not present in the
// filtered original_source pack, only a same-named but unrelated file
// from the dropshot-api-manager-types crate (ValidationContext, which
// internal/registry/validation.go already ports). See the doc comment
// on validate.go for what's a reconstruction versus a port.
package reconcile

import (
	"fmt"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
)

// Env is the environment a Fix executes against. It is the teacher's
// apimgrctx.Ctx directly (RepoRoot, DocsRoot) rather than a parallel
// type, since ResolvedEnv carries exactly those two roots and nothing
// else specific to resolution.
type Env = apimgrctx.Ctx

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}

func pluralFiles(n int) string {
	return plural(n, "file", "files")
}
