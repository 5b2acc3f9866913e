// Copyright 2026 Oxide Computer Company

// Package vcs provides the git plumbing the reconciliation engine needs:
// reading file contents at a revision, listing a tree, computing merge
// bases, and finding the commit that introduced a file. It shells out to
// git(1) directly (restyled through the teacher's internal/gps/cmd.go
// subprocess-wrapping idiom) rather than linking a git library, matching
// the narrow, read-only plumbing surface the reconciliation engine
// actually needs.
package vcs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// CommitHash is a validated git commit hash: either 40 lowercase hex
// digits (SHA-1) or 64 lowercase hex digits (SHA-256).
type CommitHash struct {
	hex string
}

// ParseCommitHash validates s as a commit hash. It must be exactly 40 or
// 64 lowercase hex characters; git's --format=%H always produces one or
// the other depending on the repository's hash algorithm.
func ParseCommitHash(s string) (CommitHash, error) {
	switch len(s) {
	case 40, 64:
	default:
		return CommitHash{}, errors.Errorf(
			"invalid length: expected 40 (SHA-1) or 64 (SHA-256) hex characters, got %d", len(s))
	}
	for _, r := range s {
		if !isLowerHex(r) {
			return CommitHash{}, errors.Errorf("invalid hexadecimal in commit hash: %q", s)
		}
	}
	return CommitHash{hex: s}, nil
}

func isLowerHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// String renders the hash as its lowercase hex string.
func (c CommitHash) String() string { return c.hex }

// Equal reports whether c and o are the same commit hash.
func (c CommitHash) Equal(o CommitHash) bool { return c.hex == o.hex }

// IsZero reports whether c is the zero value (never a valid commit hash).
func (c CommitHash) IsZero() bool { return c.hex == "" }

// Revision is an unvalidated git revision reference: a commit hash,
// branch name, tag, or other symbolic ref understood by git.
type Revision string

// FromCommitHash renders a CommitHash as a Revision.
func FromCommitHash(c CommitHash) Revision { return Revision(c.hex) }

// Ref identifies a file at a specific commit: the wire format the
// ".gitref" storage files use is "<commit>:<path>\n".
type Ref struct {
	Commit CommitHash
	Path   string
}

// String renders the ref in "<commit>:<path>" form, with no trailing
// newline (callers writing this to a file add the newline themselves).
func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Commit, r.Path)
}

// ParseRef parses s (after trimming surrounding whitespace, matching the
// Rust original's leading/trailing-whitespace tolerance for files that
// pick up a stray trailing newline) as a Ref.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	commitStr, path, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, errors.Errorf("invalid git ref format: expected 'commit:path', got %q", s)
	}
	commit, err := ParseCommitHash(commitStr)
	if err != nil {
		return Ref{}, errors.Wrap(err, "invalid commit hash in git ref")
	}
	return Ref{Commit: commit, Path: path}, nil
}
