// Copyright 2026 Oxide Computer Company

package reconcile

import (
	"testing"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"
)

const (
	testCommitA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testCommitB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func mustCommit(t *testing.T, s string) vcs.CommitHash {
	t.Helper()
	c, err := vcs.ParseCommitHash(s)
	if err != nil {
		t.Fatalf("ParseCommitHash(%q): %v", s, err)
	}
	return c
}

func TestStorageFormatForBlessed(t *testing.T) {
	current := vcs.Ref{Commit: mustCommit(t, testCommitA), Path: "test/path.json"}

	if got := storageFormatForBlessed(NotBlessedFirstCommit(), current); got.Kind != storageFormatGitRef {
		t.Errorf("latest NotBlessed => want GitRef, got %q", got.Kind)
	}

	sameLatest := BlessedFirstCommit(mustCommit(t, testCommitA))
	if got := storageFormatForBlessed(sameLatest, current); got.Kind != storageFormatJSON {
		t.Errorf("latest Blessed with same commit => want Json, got %q", got.Kind)
	}

	differentLatest := BlessedFirstCommit(mustCommit(t, testCommitB))
	if got := storageFormatForBlessed(differentLatest, current); got.Kind != storageFormatGitRef {
		t.Errorf("latest Blessed with different commit => want GitRef, got %q", got.Kind)
	}

	if got := storageFormatForBlessed(BlessedErrorFirstCommit(), current); got.Kind != storageFormatError {
		t.Errorf("latest BlessedError => want Error, got %q", got.Kind)
	}
}
