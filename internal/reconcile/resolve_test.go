// Copyright 2026 Oxide Computer Company

package reconcile

import (
	"fmt"
	"os"
	"testing"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrtest"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specfiles"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"
)

func resolveTestDoc(version string) []byte {
	return []byte(fmt.Sprintf(`{
  "openapi": "3.0.3",
  "info": {"title": "Widget API", "version": %q},
  "paths": {}
}`, version))
}

func resolveTestGenerator(contents []byte) registry.Generator {
	return func(apiver.Version) ([]byte, error) { return contents, nil }
}

// resolveTestAPIs builds a registry with one lockstep API ("lockstep")
// and one versioned API ("versioned") with a single supported version,
// mirroring the fixture the specfiles package's tests use.
func resolveTestAPIs(t *testing.T, lockstepContents, versionedContents []byte) *registry.Registry {
	t.Helper()
	lockstep := registry.NewAPI(registry.Config{
		Ident:    "lockstep",
		Versions: apiver.NewLockstep(apiver.MustVersion("1.0.0")),
		Title:    "Lockstep API",
		Generate: resolveTestGenerator(lockstepContents),
	})
	versioned := registry.NewAPI(registry.Config{
		Ident: "versioned",
		Versions: apiver.NewVersioned(apiver.MustNewSupportedVersions([]apiver.SupportedVersion{
			{Semver: apiver.MustVersion("1.0.0"), Label: "initial"},
		})),
		Title:    "Versioned API",
		Generate: resolveTestGenerator(versionedContents),
	})
	reg, err := registry.NewRegistry([]*registry.API{lockstep, versioned})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func emptyBlessed() *specfiles.BlessedFiles { return &specfiles.BlessedFiles{} }

func TestResolveLockstepStale(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	generatedContents := resolveTestDoc("1.0.0")
	reg := resolveTestAPIs(t, generatedContents, resolveTestDoc("1.0.0"))

	h.WriteFile("docs/lockstep.json", `{"openapi": "3.0.3", "info": {"title": "stale", "version": "1.0.0"}, "paths": {}}`)
	h.WriteFile("docs/versioned/versioned-1.0.0-"+specname.HashContents(resolveTestDoc("1.0.0"))+".json", string(resolveTestDoc("1.0.0")))
	linkName := "versioned-1.0.0-" + specname.HashContents(resolveTestDoc("1.0.0")) + ".json"
	h.Must(os.Symlink(linkName, h.Path("docs/versioned/versioned-latest.json")))

	var acc apimgrctx.ErrorAccumulator
	local, err := specfiles.LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path("."))
	if err != nil || acc.HasErrors() {
		t.Fatalf("LoadFromDirectory: err=%v acc=%v", err, acc.Errors())
	}
	generated := specfiles.Generate(reg, &acc)
	if acc.HasErrors() {
		t.Fatalf("Generate: %v", acc.Errors())
	}

	env := &apimgrctx.Ctx{RepoRoot: h.Path("."), DocsRoot: h.Path("docs")}
	resolved := Resolve(env, reg, emptyBlessed(), generated, local)

	resolution, ok := resolved.ResolutionForAPIVersion("lockstep", apiver.MustVersion("1.0.0"))
	if !ok {
		t.Fatal("expected a resolution for lockstep 1.0.0")
	}
	if resolution.Kind() != ResolutionLockstep {
		t.Errorf("Kind() = %v, want ResolutionLockstep", resolution.Kind())
	}
	problems := resolution.Problems()
	if len(problems) != 1 {
		t.Fatalf("expected exactly one problem, got %d: %+v", len(problems), problems)
	}
	if _, ok := problems[0].(ProblemLockstepStale); !ok {
		t.Errorf("expected ProblemLockstepStale, got %T", problems[0])
	}
	if fix, ok := problems[0].Fix(); !ok {
		t.Error("expected ProblemLockstepStale to be fixable")
	} else if _, ok := fix.(FixUpdateLockstepFile); !ok {
		t.Errorf("expected FixUpdateLockstepFile, got %T", fix)
	}
}

func TestResolveLockstepMissingLocal(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	versionedContents := resolveTestDoc("1.0.0")
	reg := resolveTestAPIs(t, resolveTestDoc("1.0.0"), versionedContents)

	h.TempDir("docs")
	h.WriteFile("docs/versioned/versioned-1.0.0-"+specname.HashContents(versionedContents)+".json", string(versionedContents))
	linkName := "versioned-1.0.0-" + specname.HashContents(versionedContents) + ".json"
	h.Must(os.Symlink(linkName, h.Path("docs/versioned/versioned-latest.json")))

	var acc apimgrctx.ErrorAccumulator
	local, err := specfiles.LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path("."))
	if err != nil || acc.HasErrors() {
		t.Fatalf("LoadFromDirectory: err=%v acc=%v", err, acc.Errors())
	}
	generated := specfiles.Generate(reg, &acc)
	if acc.HasErrors() {
		t.Fatalf("Generate: %v", acc.Errors())
	}

	env := &apimgrctx.Ctx{RepoRoot: h.Path("."), DocsRoot: h.Path("docs")}
	resolved := Resolve(env, reg, emptyBlessed(), generated, local)

	resolution, ok := resolved.ResolutionForAPIVersion("lockstep", apiver.MustVersion("1.0.0"))
	if !ok {
		t.Fatal("expected a resolution for lockstep 1.0.0")
	}
	if len(resolution.Problems()) != 1 {
		t.Fatalf("expected exactly one problem, got %+v", resolution.Problems())
	}
	if _, ok := resolution.Problems()[0].(ProblemLockstepMissingLocal); !ok {
		t.Errorf("expected ProblemLockstepMissingLocal, got %T", resolution.Problems()[0])
	}
	if resolution.HasErrors() {
		t.Error("ProblemLockstepMissingLocal should be fixable, not an error")
	}
}

func TestResolveVersionedLocallyAddedMissingLocalAndSymlink(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	versionedContents := resolveTestDoc("1.0.0")
	reg := resolveTestAPIs(t, resolveTestDoc("1.0.0"), versionedContents)

	h.WriteFile("docs/lockstep.json", string(resolveTestDoc("1.0.0")))
	h.TempDir("docs/versioned")

	var acc apimgrctx.ErrorAccumulator
	local, err := specfiles.LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path("."))
	if err != nil || acc.HasErrors() {
		t.Fatalf("LoadFromDirectory: err=%v acc=%v", err, acc.Errors())
	}
	generated := specfiles.Generate(reg, &acc)
	if acc.HasErrors() {
		t.Fatalf("Generate: %v", acc.Errors())
	}

	env := &apimgrctx.Ctx{RepoRoot: h.Path("."), DocsRoot: h.Path("docs")}
	resolved := Resolve(env, reg, emptyBlessed(), generated, local)

	resolution, ok := resolved.ResolutionForAPIVersion("versioned", apiver.MustVersion("1.0.0"))
	if !ok {
		t.Fatal("expected a resolution for versioned 1.0.0")
	}
	if resolution.Kind() != ResolutionNewLocally {
		t.Errorf("Kind() = %v, want ResolutionNewLocally", resolution.Kind())
	}
	if len(resolution.Problems()) != 1 {
		t.Fatalf("expected exactly one problem, got %+v", resolution.Problems())
	}
	if _, ok := resolution.Problems()[0].(ProblemLocalVersionMissingLocal); !ok {
		t.Errorf("expected ProblemLocalVersionMissingLocal, got %T", resolution.Problems()[0])
	}

	symlinkProblem, ok := resolved.SymlinkProblem("versioned")
	if !ok {
		t.Fatal("expected a symlink problem since no local \"latest\" link exists")
	}
	missing, ok := symlinkProblem.(ProblemLatestLinkMissing)
	if !ok {
		t.Fatalf("expected ProblemLatestLinkMissing, got %T", symlinkProblem)
	}
	if missing.Ident != "versioned" {
		t.Errorf("Ident = %q, want %q", missing.Ident, "versioned")
	}
}

func TestResolveOrphanedLocalSpec(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	reg := resolveTestAPIs(t, resolveTestDoc("1.0.0"), resolveTestDoc("1.0.0"))

	h.WriteFile("docs/lockstep.json", string(resolveTestDoc("1.0.0")))
	// A local file for a version the registry no longer supports.
	orphanContents := resolveTestDoc("9.9.9")
	orphanHash := specname.HashContents(orphanContents)
	h.WriteFile("docs/versioned/versioned-9.9.9-"+orphanHash+".json", string(orphanContents))

	var acc apimgrctx.ErrorAccumulator
	local, err := specfiles.LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path("."))
	if err != nil || acc.HasErrors() {
		t.Fatalf("LoadFromDirectory: err=%v acc=%v", err, acc.Errors())
	}
	generated := specfiles.Generate(reg, &acc)
	if acc.HasErrors() {
		t.Fatalf("Generate: %v", acc.Errors())
	}

	env := &apimgrctx.Ctx{RepoRoot: h.Path("."), DocsRoot: h.Path("docs")}
	resolved := Resolve(env, reg, emptyBlessed(), generated, local)

	var found bool
	for _, p := range resolved.GeneralProblems() {
		if orphan, ok := p.(ProblemLocalSpecFileOrphaned); ok {
			found = true
			if orphan.SpecFileName.Basename() != "versioned-9.9.9-"+orphanHash+".json" {
				t.Errorf("unexpected orphaned file: %+v", orphan.SpecFileName)
			}
		}
	}
	if !found {
		t.Errorf("expected a ProblemLocalSpecFileOrphaned among general problems: %+v", resolved.GeneralProblems())
	}
}

// TestResolveVersionedBlessedMatching exercises resolveAPIVersionBlessed's
// straightforward path: a blessed version whose local file matches both
// the blessed content and the freshly generated content should produce no
// problems and leave the "latest" symlink untouched.
func TestResolveVersionedBlessedMatching(t *testing.T) {
	apimgrtest.NeedsGit(t)
	h := apimgrtest.NewHelper(t)
	repoDir := h.TempDir(".")
	h.InitRepo(repoDir)

	versionedContents := resolveTestDoc("1.0.0")
	hash := specname.HashContents(versionedContents)
	basename := "versioned-1.0.0-" + hash + ".json"

	h.WriteFile("docs/lockstep.json", string(resolveTestDoc("1.0.0")))
	h.WriteFile("docs/versioned/"+basename, string(versionedContents))
	h.Must(os.Symlink(basename, h.Path("docs/versioned/versioned-latest.json")))
	h.Commit(repoDir, "add initial specs")

	reg := resolveTestAPIs(t, resolveTestDoc("1.0.0"), versionedContents)

	var acc apimgrctx.ErrorAccumulator
	repo := vcs.New(repoDir)
	blessed, err := specfiles.LoadFromGitRevision(repo, "HEAD", "docs", reg, &acc)
	if err != nil || acc.HasErrors() {
		t.Fatalf("LoadFromGitRevision: err=%v acc=%v", err, acc.Errors())
	}

	local, err := specfiles.LoadFromDirectory(h.Path("docs"), reg, &acc, repoDir)
	if err != nil || acc.HasErrors() {
		t.Fatalf("LoadFromDirectory: err=%v acc=%v", err, acc.Errors())
	}
	generated := specfiles.Generate(reg, &acc)
	if acc.HasErrors() {
		t.Fatalf("Generate: %v", acc.Errors())
	}

	env := &apimgrctx.Ctx{RepoRoot: repoDir, DocsRoot: h.Path("docs")}
	resolved := Resolve(env, reg, blessed, generated, local)

	resolution, ok := resolved.ResolutionForAPIVersion("versioned", apiver.MustVersion("1.0.0"))
	if !ok {
		t.Fatal("expected a resolution for versioned 1.0.0")
	}
	if resolution.Kind() != ResolutionBlessed {
		t.Errorf("Kind() = %v, want ResolutionBlessed", resolution.Kind())
	}
	if resolution.HasProblems() {
		t.Errorf("expected no problems for a matching blessed version, got %+v", resolution.Problems())
	}
	if _, ok := resolved.SymlinkProblem("versioned"); ok {
		t.Error("expected no symlink problem when the local link matches the generated latest")
	}
	if resolved.HasUnfixableProblems() {
		t.Error("expected no unfixable problems")
	}
}
