// Copyright 2026 Oxide Computer Company

package specfiles

import (
	"os"
	"testing"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrtest"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

func TestLoadFromDirectoryLockstepAndVersioned(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	reg := testAPIs(t)

	h.WriteFile("docs/lockstep.json", string(sampleDoc("1.0.0")))

	versionedContents := sampleDoc("1.0.0")
	hash := specname.HashContents(versionedContents)
	versionedName := "versioned-1.0.0-" + hash + ".json"
	h.WriteFile("docs/versioned/"+versionedName, string(versionedContents))

	symlinkPath := h.Path("docs/versioned/versioned-latest.json")
	h.Must(os.Symlink(versionedName, symlinkPath))

	var acc apimgrctx.ErrorAccumulator
	lf, err := LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path("."))
	if err != nil {
		t.Fatalf("LoadFromDirectory: %v", err)
	}
	if acc.HasErrors() {
		t.Fatalf("unexpected errors: %v", acc.Errors())
	}

	lockstepFiles, ok := lf.Files("lockstep")
	if !ok {
		t.Fatal("expected lockstep files to be loaded")
	}
	if _, ok := lockstepFiles.Get(apiver.MustVersion("1.0.0")); !ok {
		t.Error("expected lockstep version 1.0.0 to be loaded")
	}

	versionedFiles, ok := lf.Files("versioned")
	if !ok {
		t.Fatal("expected versioned files to be loaded")
	}
	link, ok := versionedFiles.LatestLink()
	if !ok {
		t.Fatal("expected a latest link to be recorded")
	}
	if link.Basename() != versionedName {
		t.Errorf("latest link basename = %q, want %q", link.Basename(), versionedName)
	}
}

func TestLoadFromDirectoryCorruptedSymlink(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	reg := testAPIs(t)

	versionedContents := sampleDoc("1.0.0")
	hash := specname.HashContents(versionedContents)
	versionedName := "versioned-1.0.0-" + hash + ".json"
	h.WriteFile("docs/versioned/"+versionedName, string(versionedContents))
	// A merge conflict can turn the "latest" symlink into a regular file;
	// that should warn, not error, so generate can recreate it.
	h.WriteFile("docs/versioned/versioned-latest.json", "<<<<<<< ours\n")

	var acc apimgrctx.ErrorAccumulator
	lf, err := LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path("."))
	if err != nil {
		t.Fatalf("LoadFromDirectory: %v", err)
	}
	if acc.HasErrors() {
		t.Fatalf("expected no hard errors for a corrupted symlink, got: %v", acc.Errors())
	}
	if len(acc.Warnings()) == 0 {
		t.Error("expected a warning about the corrupted symlink")
	}

	versionedFiles, _ := lf.Files("versioned")
	if _, ok := versionedFiles.LatestLink(); ok {
		t.Error("expected no latest link to be recorded for the corrupted symlink")
	}
}

func TestLoadFromDirectoryUnparseableFile(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	reg := testAPIs(t)

	h.WriteFile("docs/lockstep.json", "<<<<<<< ours\nconflict\n=======\n")

	var acc apimgrctx.ErrorAccumulator
	lf, err := LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path("."))
	if err != nil {
		t.Fatalf("LoadFromDirectory: %v", err)
	}
	if acc.HasErrors() {
		t.Fatalf("unparseable local files should warn, not error: %v", acc.Errors())
	}
	if len(acc.Warnings()) == 0 {
		t.Error("expected a warning about the unparseable file")
	}

	lockstepFiles, ok := lf.Files("lockstep")
	if !ok {
		t.Fatal("expected an entry for the lockstep API even though its file was unparseable")
	}
	files, ok := lockstepFiles.Get(apiver.Version{})
	if !ok || len(files) != 1 || !files[0].IsUnparseable() {
		t.Errorf("expected one unparseable local file recorded, got %+v (ok=%v)", files, ok)
	}
}

func TestLoadFromDirectoryIgnoresStrayFiles(t *testing.T) {
	h := apimgrtest.NewHelper(t)
	reg := testAPIs(t)

	h.WriteFile("docs/lockstep.json", string(sampleDoc("1.0.0")))
	h.WriteFile("docs/README.md", "not an API document")

	var acc apimgrctx.ErrorAccumulator
	if _, err := LoadFromDirectory(h.Path("docs"), reg, &acc, h.Path(".")); err != nil {
		t.Fatalf("LoadFromDirectory: %v", err)
	}
	if acc.HasErrors() {
		t.Fatalf("unexpected errors for a stray non-API file: %v", acc.Errors())
	}
	if len(acc.Warnings()) == 0 {
		t.Error("expected a warning about the stray file")
	}
}
