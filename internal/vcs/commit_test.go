// Copyright 2026 Oxide Computer Company

package vcs

import "testing"

const (
	validSHA1   = "0123456789abcdef0123456789abcdef01234567"
	validSHA256 = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

func TestParseCommitHashValid(t *testing.T) {
	for _, s := range []string{validSHA1, validSHA256} {
		h, err := ParseCommitHash(s)
		if err != nil {
			t.Fatalf("ParseCommitHash(%q): %v", s, err)
		}
		if h.String() != s {
			t.Errorf("String() = %q, want %q", h.String(), s)
		}
	}
}

func TestParseCommitHashInvalid(t *testing.T) {
	cases := []string{
		"abc123",               // too short
		validSHA1[:39],         // 39 chars
		validSHA1 + "0",        // 41 chars
		" " + validSHA1,        // leading whitespace, bad length
		"0123456789abcdefg123456789abcdef01234567", // non-hex 'g', correct 40-char length
	}
	for _, s := range cases {
		if _, err := ParseCommitHash(s); err == nil {
			t.Errorf("ParseCommitHash(%q): expected error, got none", s)
		}
	}
}

func TestRefParseAndString(t *testing.T) {
	input := validSHA1 + ":openapi/api/api-1.0.0-def456.json"
	ref, err := ParseRef(input)
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if ref.Commit.String() != validSHA1 {
		t.Errorf("commit = %q, want %q", ref.Commit.String(), validSHA1)
	}
	if ref.Path != "openapi/api/api-1.0.0-def456.json" {
		t.Errorf("path = %q", ref.Path)
	}
	if got := ref.String(); got != input {
		t.Errorf("String() = %q, want %q", got, input)
	}
}

func TestRefParseWithWhitespace(t *testing.T) {
	input := "  " + validSHA1 + ":path/file.json\n"
	ref, err := ParseRef(input)
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if ref.Path != "path/file.json" {
		t.Errorf("path = %q", ref.Path)
	}
}

func TestRefParseInvalidNoColon(t *testing.T) {
	if _, err := ParseRef("no-colon"); err == nil {
		t.Error("expected error for missing colon")
	}
}

func TestRefParseInvalidCommitHash(t *testing.T) {
	if _, err := ParseRef("abc123:path/file.json"); err == nil {
		t.Error("expected error for invalid commit hash")
	}
}

func TestRefRoundtrip(t *testing.T) {
	ref := Ref{Commit: mustParseCommitHash(t, validSHA1), Path: "path/to/file.json"}
	s := ref.String()
	parsed, err := ParseRef(s)
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if parsed != ref {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", parsed, ref)
	}
}

func mustParseCommitHash(t *testing.T, s string) CommitHash {
	t.Helper()
	h, err := ParseCommitHash(s)
	if err != nil {
		t.Fatalf("ParseCommitHash(%q): %v", s, err)
	}
	return h
}
