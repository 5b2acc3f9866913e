// Copyright 2026 Oxide Computer Company

package specfiles

import (
	"fmt"
	"strings"
	"testing"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

func sampleDoc(version string) []byte {
	return []byte(fmt.Sprintf(`{
  "openapi": "3.0.3",
  "info": {"title": "Widget API", "version": %q},
  "paths": {}
}`, version))
}

func TestForContentsLockstep(t *testing.T) {
	name := specname.NewLockstep("widget")
	f, raw, err := ForContents(name, sampleDoc("1.0.0"))
	if err != nil {
		t.Fatalf("ForContents: %v", err)
	}
	if raw != nil {
		t.Fatal("expected nil raw-contents return on success")
	}
	if !f.Version().Equal(apiver.MustVersion("1.0.0")) {
		t.Errorf("Version() = %s, want 1.0.0", f.Version())
	}
}

func TestForContentsVersionedHashMismatch(t *testing.T) {
	contents := sampleDoc("1.2.3")
	name := specname.NewVersioned("widget", apiver.MustVersion("1.2.3"), "000000")
	_, raw, err := ForContents(name, contents)
	if err == nil {
		t.Fatal("expected hash mismatch error")
	}
	if !strings.Contains(err.Error(), "computed hash") {
		t.Errorf("unexpected error: %v", err)
	}
	if string(raw) != string(contents) {
		t.Error("expected original contents returned alongside the error")
	}
}

func TestForContentsVersionedHashMatch(t *testing.T) {
	contents := sampleDoc("1.2.3")
	hash := specname.HashContents(contents)
	name := specname.NewVersioned("widget", apiver.MustVersion("1.2.3"), hash)
	f, _, err := ForContents(name, contents)
	if err != nil {
		t.Fatalf("ForContents: %v", err)
	}
	if f.SpecFileName().Hash != hash {
		t.Errorf("Hash = %q, want %q", f.SpecFileName().Hash, hash)
	}
}

func TestForContentsVersionMismatch(t *testing.T) {
	contents := sampleDoc("9.9.9")
	hash := specname.HashContents(contents)
	name := specname.NewVersioned("widget", apiver.MustVersion("1.0.0"), hash)
	_, _, err := ForContents(name, contents)
	if err == nil || !strings.Contains(err.Error(), "differs from the one in the filename") {
		t.Fatalf("expected version-mismatch error, got %v", err)
	}
}

func TestForContentsGitRefSkipsHashCheck(t *testing.T) {
	contents := sampleDoc("1.2.3")
	// Deliberately wrong hash: VersionedGitRef trusts the git ref itself,
	// not the filename-embedded hash, as the source of authenticity.
	name := specname.NewVersionedGitRef("widget", apiver.MustVersion("1.2.3"), "000000")
	if _, _, err := ForContents(name, contents); err != nil {
		t.Fatalf("ForContents: %v", err)
	}
}

func TestForContentsBadJSON(t *testing.T) {
	name := specname.NewLockstep("widget")
	_, raw, err := ForContents(name, []byte("not json"))
	if err == nil {
		t.Fatal("expected JSON parse error")
	}
	if string(raw) != "not json" {
		t.Error("expected original contents returned alongside the error")
	}
}
