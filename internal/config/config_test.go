// Copyright 2026 Oxide Computer Company

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()

	cfg, ok, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("ok = true for a directory with no .apimgr.toml")
	}
	if cfg != (Config{}) {
		t.Errorf("cfg = %+v, want zero value", cfg)
	}
}

func TestLoadParsesFields(t *testing.T) {
	dir := t.TempDir()
	contents := `
documents_root = "specs"
baseline_branch = "release/2026"
git_binary = "/usr/bin/git"
use_git_ref_storage = true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, ok, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want true")
	}
	want := Config{
		DocumentsRoot:    "specs",
		BaselineBranch:   "release/2026",
		GitBinary:        "/usr/bin/git",
		UseGitRefStorage: true,
	}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("not = valid = toml"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	if got := cfg.DocumentsRootOrDefault(); got != DefaultDocumentsRoot {
		t.Errorf("DocumentsRootOrDefault() = %q, want %q", got, DefaultDocumentsRoot)
	}
	if got := cfg.BaselineBranchOrDefault(); got != DefaultBaselineBranch {
		t.Errorf("BaselineBranchOrDefault() = %q, want %q", got, DefaultBaselineBranch)
	}

	cfg = Config{DocumentsRoot: "docs", BaselineBranch: "trunk"}
	if got := cfg.DocumentsRootOrDefault(); got != "docs" {
		t.Errorf("DocumentsRootOrDefault() = %q, want %q", got, "docs")
	}
	if got := cfg.BaselineBranchOrDefault(); got != "trunk" {
		t.Errorf("BaselineBranchOrDefault() = %q, want %q", got, "trunk")
	}
}
