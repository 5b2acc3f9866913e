// Copyright 2026 Oxide Computer Company

package main

import (
	"flag"
	"fmt"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/driver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/log"
)

const generateShortHelp = `Reconcile managed documents with the working tree`
const generateLongHelp = `
Generate runs the same checks as "apimgr check" and then applies every fix
it can: rewriting stale lockstep documents, adding newly-versioned ones,
repointing the "latest" symlink, and removing orphaned files.

If any problem has no automatic fix, generate reports it and makes no
changes at all, exactly as check would report Failures.
`

type generateCommand struct {
	baseline baselineFlags
}

func (cmd *generateCommand) Name() string      { return "generate" }
func (cmd *generateCommand) Args() string      { return "[-baseline-revision REV] [-baseline-dir DIR]" }
func (cmd *generateCommand) ShortHelp() string { return generateShortHelp }
func (cmd *generateCommand) LongHelp() string  { return generateLongHelp }
func (cmd *generateCommand) Hidden() bool      { return false }

func (cmd *generateCommand) Register(fs *flag.FlagSet) {
	cmd.baseline.Register(fs)
}

func (cmd *generateCommand) Run(env *apimgrctx.Ctx, args []string) error {
	reg, err := managedRegistry()
	if err != nil {
		return err
	}
	baseline, err := cmd.baseline.Resolve(env)
	if err != nil {
		return err
	}

	d := driver.New(env, reg)
	result, output, err := d.Generate(baseline)
	if err != nil {
		return err
	}

	for _, line := range output {
		fmt.Fprintln(env.Out, line)
	}

	if result == driver.Failures {
		log.New(env.Out).LogApimgrfln("one or more problems have no automatic fix; no changes made")
		return silentfail{}
	}
	return nil
}
