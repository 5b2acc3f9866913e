// Copyright 2026 Oxide Computer Company

package driver

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrtest"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

func driverTestDoc(version string) []byte {
	return []byte(fmt.Sprintf(`{
  "openapi": "3.0.3",
  "info": {"title": "Widget API", "version": %q},
  "paths": {}
}`, version))
}

func driverTestGenerator(contents []byte) registry.Generator {
	return func(apiver.Version) ([]byte, error) { return contents, nil }
}

// driverTestRegistry builds a registry with a single lockstep API, which
// is all Check/Generate/Diff need to exercise: the harder per-version
// cases are already covered at the reconcile package's resolve_test.go
// level.
func driverTestRegistry(t *testing.T, contents []byte) *registry.Registry {
	t.Helper()
	api := registry.NewAPI(registry.Config{
		Ident:    "widget",
		Versions: apiver.NewLockstep(apiver.MustVersion("1.0.0")),
		Title:    "Widget API",
		Generate: driverTestGenerator(contents),
	})
	reg, err := registry.NewRegistry([]*registry.API{api})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func newDriverEnv(h *apimgrtest.Helper, repoRoot string) *apimgrctx.Ctx {
	return &apimgrctx.Ctx{
		Out:      os.Stdout,
		Err:      os.Stderr,
		RepoRoot: repoRoot,
		DocsRoot: h.Path("docs"),
	}
}

func TestCheckResultStringAndExitCode(t *testing.T) {
	cases := []struct {
		result   CheckResult
		wantStr  string
		wantCode int
	}{
		{Success, "success", 0},
		{NeedsUpdate, "needs update", 1},
		{Failures, "failures", 2},
	}
	for _, c := range cases {
		if got := c.result.String(); got != c.wantStr {
			t.Errorf("%v.String() = %q, want %q", c.result, got, c.wantStr)
		}
		if got := c.result.ExitCode(); got != c.wantCode {
			t.Errorf("%v.ExitCode() = %d, want %d", c.result, got, c.wantCode)
		}
	}
}

// TestDriverCheckSuccess exercises a repository that's already fully
// reconciled: the local, generated, and blessed documents all match, so
// Check should report Success with no problems.
func TestDriverCheckSuccess(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	contents := driverTestDoc("1.0.0")
	reg := driverTestRegistry(t, contents)

	h.WriteFile("docs/widget.json", string(contents))
	h.WriteFile("blessed/widget.json", string(contents))

	env := newDriverEnv(h, h.Path("."))
	d := New(env, reg)

	loaded, result, err := d.Check(Baseline{Dir: h.Path("blessed")})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result != Success {
		t.Errorf("result = %v, want Success", result)
		if loaded != nil && loaded.Resolved != nil {
			t.Logf("general problems: %+v", loaded.Resolved.GeneralProblems())
		}
	}
}

// TestDriverCheckNeedsUpdate exercises a repository whose local lockstep
// document is stale relative to what the registry would generate: a
// fixable problem, so Check should report NeedsUpdate.
func TestDriverCheckNeedsUpdate(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	contents := driverTestDoc("1.0.0")
	reg := driverTestRegistry(t, contents)

	h.WriteFile("docs/widget.json", `{"openapi": "3.0.3", "info": {"title": "stale", "version": "1.0.0"}, "paths": {}}`)
	h.WriteFile("blessed/widget.json", string(contents))

	env := newDriverEnv(h, h.Path("."))
	d := New(env, reg)

	_, result, err := d.Check(Baseline{Dir: h.Path("blessed")})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result != NeedsUpdate {
		t.Errorf("result = %v, want NeedsUpdate", result)
	}
}

// TestDriverGenerateWritesFix exercises Generate rewriting a stale
// lockstep document to match what the registry generates.
func TestDriverGenerateWritesFix(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	contents := driverTestDoc("1.0.0")
	reg := driverTestRegistry(t, contents)

	h.WriteFile("docs/widget.json", `{"openapi": "3.0.3", "info": {"title": "stale", "version": "1.0.0"}, "paths": {}}`)
	h.WriteFile("blessed/widget.json", string(contents))

	env := newDriverEnv(h, h.Path("."))
	d := New(env, reg)

	result, _, err := d.Generate(Baseline{Dir: h.Path("blessed")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result != NeedsUpdate {
		t.Fatalf("result = %v, want NeedsUpdate", result)
	}

	got, err := os.ReadFile(h.Path("docs/widget.json"))
	if err != nil {
		t.Fatalf("reading fixed file: %v", err)
	}
	if string(got) != string(contents) {
		t.Errorf("docs/widget.json = %s, want %s", got, contents)
	}

	// Running Generate again against the now-fixed tree should report
	// Success and touch nothing further.
	result2, _, err := d.Generate(Baseline{Dir: h.Path("blessed")})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if result2 != Success {
		t.Errorf("second Generate result = %v, want Success", result2)
	}
}

// TestDriverDiffModified exercises Diff reporting a changed document
// between the blessed baseline and the local working tree.
func TestDriverDiffModified(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	localContents := driverTestDoc("1.0.0")
	reg := driverTestRegistry(t, localContents)

	h.WriteFile("docs/widget.json", string(localContents))
	h.WriteFile("blessed/widget.json", `{"openapi": "3.0.3", "info": {"title": "Widget API", "version": "0.9.0"}, "paths": {}}`)

	env := newDriverEnv(h, h.Path("."))
	d := New(env, reg)

	diffs, err := d.Diff(Baseline{Dir: h.Path("blessed")})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diffs) != 1 {
		t.Fatalf("expected exactly one diff, got %d: %+v", len(diffs), diffs)
	}
	if diffs[0].Kind != Modified {
		t.Errorf("Kind = %v, want Modified", diffs[0].Kind)
	}
	if diffs[0].Ident != specname.ApiIdent("widget") {
		t.Errorf("Ident = %q, want %q", diffs[0].Ident, "widget")
	}
	if !strings.Contains(diffs[0].Diff, "0.9.0") || !strings.Contains(diffs[0].Diff, "1.0.0") {
		t.Errorf("diff text missing expected version strings: %s", diffs[0].Diff)
	}
}

// TestDriverDiffUnchangedOmitted exercises Diff's requirement that
// identical blessed and local documents produce no entry at all.
func TestDriverDiffUnchangedOmitted(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	contents := driverTestDoc("1.0.0")
	reg := driverTestRegistry(t, contents)

	h.WriteFile("docs/widget.json", string(contents))
	h.WriteFile("blessed/widget.json", string(contents))

	env := newDriverEnv(h, h.Path("."))
	d := New(env, reg)

	diffs, err := d.Diff(Baseline{Dir: h.Path("blessed")})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diffs) != 0 {
		t.Errorf("expected no diffs for identical documents, got %+v", diffs)
	}
}

func TestBaselineRevisionDefault(t *testing.T) {
	var b Baseline
	if got := b.revision(); got != defaultParentBranch {
		t.Errorf("revision() = %q, want %q", got, defaultParentBranch)
	}
	b.Revision = "release/2026"
	if got := b.revision(); got != "release/2026" {
		t.Errorf("revision() = %q, want override %q", got, "release/2026")
	}
}
