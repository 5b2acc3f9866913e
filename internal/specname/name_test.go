// Copyright 2026 Oxide Computer Company

package specname

import (
	"testing"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
)

// testLookup is a minimal APILookup fixture mirroring the Rust test
// suite's all_apis(): "lockstep" is a lockstep API, "versioned" is
// versioned, and nothing else is known.
type testLookup struct{}

func (testLookup) IsKnownAPI(ident ApiIdent) (versioned bool, ok bool) {
	switch ident {
	case "lockstep":
		return false, true
	case "versioned":
		return true, true
	default:
		return false, false
	}
}

func TestParseLockstepFileName(t *testing.T) {
	name, err := ParseLockstepFileName(testLookup{}, "lockstep.json")
	if err != nil {
		t.Fatalf("ParseLockstepFileName: %v", err)
	}
	if name.Ident != "lockstep" || name.Kind != Lockstep {
		t.Errorf("unexpected name: %+v", name)
	}
}

func TestParseLockstepFileNameFailures(t *testing.T) {
	if _, err := ParseLockstepFileName(testLookup{}, "lockstep"); err == nil {
		t.Error("expected error for missing .json suffix")
	}
	if _, err := ParseLockstepFileName(testLookup{}, "bart-simpson.json"); err == nil {
		t.Error("expected error for unknown API")
	}
	if _, err := ParseLockstepFileName(testLookup{}, "versioned.json"); err == nil {
		t.Error("expected error for a versioned API's file")
	}
}

func TestParseVersionedFileName(t *testing.T) {
	name, err := ParseVersionedFileName(testLookup{}, "versioned", "versioned-1.2.3-feedface.json")
	if err != nil {
		t.Fatalf("ParseVersionedFileName: %v", err)
	}
	if name.Kind != Versioned || name.Hash != "feedface" || !name.Version.Equal(apiver.MustVersion("1.2.3")) {
		t.Errorf("unexpected name: %+v", name)
	}
}

func TestParseVersionedFileNameFailures(t *testing.T) {
	cases := []struct{ ident, basename string }{
		{"bart-simpson", "bart-simpson-1.2.3-hash.json"},
		{"lockstep", "lockstep-1.2.3-hash.json"},
		{"versioned", "1.2.3-hash.json"},
		{"versioned", "versioned-1.2.3.json"},
		{"versioned", "versioned-hash.json"},
		{"versioned", "versioned-1.2.3-hash"},
		{"versioned", "versioned-bogus-hash"},
	}
	for _, c := range cases {
		if _, err := ParseVersionedFileName(testLookup{}, ApiIdent(c.ident), c.basename); err == nil {
			t.Errorf("expected %q/%q to fail parsing", c.ident, c.basename)
		}
	}
}

func TestParseVersionedGitRefFileName(t *testing.T) {
	name, err := ParseVersionedGitRefFileName(testLookup{}, "versioned", "versioned-1.2.3-feedface.json.gitref")
	if err != nil {
		t.Fatalf("ParseVersionedGitRefFileName: %v", err)
	}
	if name.Kind != VersionedGitRef || name.Hash != "feedface" {
		t.Errorf("unexpected name: %+v", name)
	}
}

func TestParseVersionedGitRefFileNameFailures(t *testing.T) {
	if _, err := ParseVersionedGitRefFileName(testLookup{}, "versioned", "versioned-1.2.3-feedface.json"); err == nil {
		t.Error("expected error for missing .gitref suffix")
	}
	if _, err := ParseVersionedGitRefFileName(testLookup{}, "unknown", "unknown-1.2.3-feedface.json.gitref"); err == nil {
		t.Error("expected error for unknown API")
	}
	if _, err := ParseVersionedGitRefFileName(testLookup{}, "lockstep", "lockstep-1.2.3-feedface.json.gitref"); err == nil {
		t.Error("expected error for a lockstep API")
	}
	if _, err := ParseVersionedGitRefFileName(testLookup{}, "versioned", "versioned-badversion-feedface.json.gitref"); err == nil {
		t.Error("expected error for a bad version")
	}
}

func TestParseVersionedDirectory(t *testing.T) {
	if ident, ok := ParseVersionedDirectory(testLookup{}, "versioned"); !ok || ident != "versioned" {
		t.Errorf("ParseVersionedDirectory(versioned) = (%q, %v), want (versioned, true)", ident, ok)
	}
	if _, ok := ParseVersionedDirectory(testLookup{}, "lockstep"); ok {
		t.Error("expected lockstep (a non-versioned API) not to parse as a versioned directory")
	}
	if _, ok := ParseVersionedDirectory(testLookup{}, "unknown"); ok {
		t.Error("expected an unknown API not to parse as a versioned directory")
	}
}

func TestBasenameAndPath(t *testing.T) {
	lockstep := NewLockstep("widget")
	if lockstep.Basename() != "widget.json" || lockstep.Path() != "widget.json" {
		t.Errorf("unexpected lockstep rendering: basename=%q path=%q", lockstep.Basename(), lockstep.Path())
	}

	versioned := NewVersioned("widget", apiver.MustVersion("1.2.3"), "feedface")
	if versioned.Basename() != "widget-1.2.3-feedface.json" {
		t.Errorf("Basename() = %q", versioned.Basename())
	}
	if versioned.Path() != "widget/widget-1.2.3-feedface.json" {
		t.Errorf("Path() = %q", versioned.Path())
	}

	gitref := NewVersionedGitRef("widget", apiver.MustVersion("1.2.3"), "feedface")
	if gitref.Basename() != "widget-1.2.3-feedface.json.gitref" {
		t.Errorf("Basename() = %q", gitref.Basename())
	}
	if gitref.ToJSONFilename() != versioned.Basename() {
		t.Errorf("ToJSONFilename() = %q, want %q", gitref.ToJSONFilename(), versioned.Basename())
	}
}

func TestLatestSymlinkBasename(t *testing.T) {
	if got := LatestSymlinkBasename("dns-server"); got != "dns-server-latest.json" {
		t.Errorf("LatestSymlinkBasename = %q", got)
	}
	if !IsLatestSymlinkBasename("dns-server", "dns-server-latest.json") {
		t.Error("expected IsLatestSymlinkBasename to match its own output")
	}
	if IsLatestSymlinkBasename("dns-server", "dns-server-1.0.0-abcdef.json") {
		t.Error("expected a regular versioned file not to match the latest symlink name")
	}
}

func TestHashContentsIsSixHexDigits(t *testing.T) {
	h := HashContents([]byte("hello world"))
	if len(h) != 6 {
		t.Fatalf("HashContents returned %d characters, want 6: %q", len(h), h)
	}
	for _, r := range h {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("HashContents returned non-hex character %q in %q", r, h)
		}
	}
}
