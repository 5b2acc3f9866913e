// Copyright 2026 Oxide Computer Company

package main

import (
	"flag"
	"fmt"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
)

const versionShortHelp = `Display version`
const versionLongHelp = `
Display the version of this tool.
`

// apimgrVersion is this build's version string. Set by -ldflags in
// release builds; it defaults to "devel" otherwise.
var apimgrVersion = "devel"

type versionCommand struct{}

func (cmd *versionCommand) Name() string      { return "version" }
func (cmd *versionCommand) Args() string      { return "" }
func (cmd *versionCommand) ShortHelp() string { return versionShortHelp }
func (cmd *versionCommand) LongHelp() string  { return versionLongHelp }
func (cmd *versionCommand) Hidden() bool      { return false }
func (cmd *versionCommand) Register(fs *flag.FlagSet) {}

func (cmd *versionCommand) Run(env *apimgrctx.Ctx, args []string) error {
	fmt.Fprintln(env.Out, apimgrVersion)
	return nil
}
