// Copyright 2026 Oxide Computer Company

package main

import (
	"testing"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/driver"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args     []string
		wantName string
		wantHelp bool
		wantExit bool
	}{
		{args: []string{"apimgr"}, wantExit: true},
		{args: []string{"apimgr", "check"}, wantName: "check"},
		{args: []string{"apimgr", "help"}, wantName: "help", wantExit: true},
		{args: []string{"apimgr", "-h"}, wantName: "-h", wantExit: true},
		{args: []string{"apimgr", "help", "check"}, wantName: "check", wantHelp: true},
		{args: []string{"apimgr", "check", "-baseline-revision", "trunk"}, wantName: "check"},
	}
	for _, c := range cases {
		name, help, exit := parseArgs(c.args)
		if name != c.wantName || help != c.wantHelp || exit != c.wantExit {
			t.Errorf("parseArgs(%v) = (%q, %v, %v), want (%q, %v, %v)",
				c.args, name, help, exit, c.wantName, c.wantHelp, c.wantExit)
		}
	}
}

func TestBaselineFlagsConflict(t *testing.T) {
	b := baselineFlags{revision: "main", dir: "/tmp/baseline"}
	env := &apimgrctx.Ctx{RepoRoot: t.TempDir()}
	if _, err := b.Resolve(env); err != errBaselineFlagsConflict {
		t.Errorf("Resolve() error = %v, want errBaselineFlagsConflict", err)
	}
}

func TestBaselineFlagsDir(t *testing.T) {
	b := baselineFlags{dir: "/tmp/baseline"}
	env := &apimgrctx.Ctx{RepoRoot: t.TempDir()}
	baseline, err := b.Resolve(env)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if baseline != (driver.Baseline{Dir: "/tmp/baseline"}) {
		t.Errorf("Resolve() = %+v, want Dir-only baseline", baseline)
	}
}

func TestBaselineFlagsDefaultRevision(t *testing.T) {
	b := baselineFlags{}
	env := &apimgrctx.Ctx{RepoRoot: t.TempDir()}
	baseline, err := b.Resolve(env)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if baseline.Revision != "main" {
		t.Errorf("Revision = %q, want %q (no .apimgr.toml present)", baseline.Revision, "main")
	}
}

func TestManagedRegistry(t *testing.T) {
	reg, err := managedRegistry()
	if err != nil {
		t.Fatalf("managedRegistry: %v", err)
	}
	apis := reg.Apis()
	if len(apis) != 1 || apis[0].Ident() != "example" {
		t.Fatalf("expected a single \"example\" API, got %+v", apis)
	}
}
