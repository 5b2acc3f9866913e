// Copyright 2026 Oxide Computer Company

package main

import (
	"flag"
	"fmt"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/driver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/log"
)

const diffShortHelp = `Show what changed since the blessed baseline`
const diffLongHelp = `
Diff compares the local working tree against the blessed baseline, one
unified diff per API version that differs. Unlike check and generate, diff
never consults the registry's generated documents: it only answers "what's
different between what's checked in and what's on disk".
`

type diffCommand struct {
	baseline baselineFlags
}

func (cmd *diffCommand) Name() string      { return "diff" }
func (cmd *diffCommand) Args() string      { return "[-baseline-revision REV] [-baseline-dir DIR]" }
func (cmd *diffCommand) ShortHelp() string { return diffShortHelp }
func (cmd *diffCommand) LongHelp() string  { return diffLongHelp }
func (cmd *diffCommand) Hidden() bool      { return false }

func (cmd *diffCommand) Register(fs *flag.FlagSet) {
	cmd.baseline.Register(fs)
}

func (cmd *diffCommand) Run(env *apimgrctx.Ctx, args []string) error {
	reg, err := managedRegistry()
	if err != nil {
		return err
	}
	baseline, err := cmd.baseline.Resolve(env)
	if err != nil {
		return err
	}

	d := driver.New(env, reg)
	diffs, err := d.Diff(baseline)
	if err != nil {
		return err
	}

	for _, dd := range diffs {
		fmt.Fprintf(env.Out, "--- %s@%s (%s) ---\n", dd.Ident, dd.Version, dd.Kind)
		fmt.Fprint(env.Out, dd.Diff)
	}
	if len(diffs) == 0 {
		log.New(env.Out).LogApimgrfln("no differences from the blessed baseline")
	}
	return nil
}
