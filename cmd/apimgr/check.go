// Copyright 2026 Oxide Computer Company

package main

import (
	"flag"
	"fmt"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/driver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/log"
)

const checkShortHelp = `Check whether managed documents are reconciled`
const checkLongHelp = `
Check loads the registry's generated documents, the blessed baseline, and
the local working tree, and reports whether they agree.

Exit code 0 means nothing needs to change. Any other outcome exits with
code 1, both when "apimgr generate" would fix everything found and when
at least one problem has no automatic fix and needs a person to look at
it; the exit code does not tell these two apart, the final summary line
does.
`

type checkCommand struct {
	baseline baselineFlags
}

func (cmd *checkCommand) Name() string      { return "check" }
func (cmd *checkCommand) Args() string      { return "[-baseline-revision REV] [-baseline-dir DIR]" }
func (cmd *checkCommand) ShortHelp() string { return checkShortHelp }
func (cmd *checkCommand) LongHelp() string  { return checkLongHelp }
func (cmd *checkCommand) Hidden() bool      { return false }

func (cmd *checkCommand) Register(fs *flag.FlagSet) {
	cmd.baseline.Register(fs)
}

func (cmd *checkCommand) Run(env *apimgrctx.Ctx, args []string) error {
	reg, err := managedRegistry()
	if err != nil {
		return err
	}
	baseline, err := cmd.baseline.Resolve(env)
	if err != nil {
		return err
	}

	d := driver.New(env, reg)
	loaded, result, err := d.Check(baseline)
	if err != nil {
		return err
	}

	reportCheckResult(env, d, loaded, result)
	if result != driver.Success {
		return silentfail{}
	}
	return nil
}

// reportCheckResult prints a human-readable summary of a Check outcome:
// every note and problem found, grouped the way Resolved groups them.
func reportCheckResult(env *apimgrctx.Ctx, d *driver.Driver, loaded *driver.Loaded, result driver.CheckResult) {
	logger := log.New(env.Out)

	if loaded == nil || loaded.Resolved == nil {
		logger.LogApimgrfln("%s", result)
		return
	}

	for _, note := range loaded.Resolved.Notes() {
		fmt.Fprintf(env.Out, "note: %s\n", note)
	}
	for _, problem := range loaded.Resolved.GeneralProblems() {
		fmt.Fprintf(env.Out, "problem: %s\n", problem.Message())
	}
	for _, api := range d.Registry.Apis() {
		ident := api.Ident()
		for _, version := range api.Versions().AllSemvers() {
			if resolution, ok := loaded.Resolved.ResolutionForAPIVersion(ident, version); ok {
				for _, problem := range resolution.Problems() {
					fmt.Fprintf(env.Out, "problem: %s\n", problem.Message())
				}
			}
		}
		if problem, ok := loaded.Resolved.SymlinkProblem(ident); ok {
			fmt.Fprintf(env.Out, "problem: %s\n", problem.Message())
		}
	}

	logger.LogApimgrfln("%s", result)
}
