// Copyright 2026 Oxide Computer Company

// Command apimgr reconciles a repository's machine-generated OpenAPI
// documents against a version-controlled baseline and the local working
// tree. Mirrors cmd/dep's command dispatch (main.go's command interface,
// flag registration, and help text shape) over a different domain.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
)

// command is the interface every subcommand implements, exactly
// mirroring cmd/dep's command interface.
type command interface {
	Name() string           // "check"
	Args() string           // "[-baseline-revision REV]"
	ShortHelp() string      // "Check whether documents are reconciled"
	LongHelp() string       // full help text
	Register(*flag.FlagSet) // command-specific flags
	Hidden() bool           // omit from the top-level usage listing
	Run(ctx *apimgrctx.Ctx, args []string) error
}

// silentfail is returned by a subcommand that has already printed its
// own diagnostics and just needs main to set a nonzero exit code,
// matching cmd/dep/check.go's sentinel of the same name.
type silentfail struct{}

func (silentfail) Error() string { return "" }

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to get working directory:", err)
		os.Exit(1)
	}
	c := &Config{
		Args:       os.Args,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		WorkingDir: wd,
		Env:        os.Environ(),
	}
	os.Exit(c.Run())
}

// Config specifies a full configuration for an apimgr execution.
type Config struct {
	WorkingDir     string
	Args           []string
	Env            []string
	Stdout, Stderr io.Writer
}

// Run executes a configuration and returns a process exit code.
func (c *Config) Run() (exitCode int) {
	commands := []command{
		&checkCommand{},
		&generateCommand{},
		&diffCommand{},
		&versionCommand{},
	}

	examples := [][2]string{
		{"apimgr check", "report whether documents need regenerating"},
		{"apimgr generate", "fix whatever check would report"},
		{"apimgr diff", "show what changed since the blessed baseline"},
	}

	outLogger := log.New(c.Stdout, "", 0)
	errLogger := log.New(c.Stderr, "", 0)

	usage := func() {
		errLogger.Println("apimgr reconciles generated OpenAPI documents against a repository")
		errLogger.Println()
		errLogger.Println("Usage: apimgr <command>")
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(c.Stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			if !cmd.Hidden() {
				fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
			}
		}
		w.Flush()
		errLogger.Println()
		errLogger.Println("Examples:")
		for _, example := range examples {
			fmt.Fprintf(w, "\t%s\t%s\n", example[0], example[1])
		}
		w.Flush()
		errLogger.Println()
		errLogger.Println(`Use "apimgr help <command>" for more information about a command.`)
	}

	cmdName, printCommandHelp, exit := parseArgs(c.Args)
	if exit {
		usage()
		exitCode = 1
		return
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(c.Stderr)
		verbose := fs.Bool("v", false, "enable verbose logging")
		cmd.Register(fs)
		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if printCommandHelp {
			fs.Usage()
			exitCode = 1
			return
		}

		if err := fs.Parse(c.Args[2:]); err != nil {
			exitCode = 1
			return
		}

		env, err := newEnv(c.WorkingDir, outLogger.Writer(), errLogger.Writer(), *verbose)
		if err != nil {
			errLogger.Printf("%v\n", err)
			exitCode = 1
			return
		}

		if err := cmd.Run(env, fs.Args()); err != nil {
			if _, ok := err.(silentfail); !ok {
				errLogger.Printf("%v\n", err)
			}
			exitCode = 1
			return
		}
		return
	}

	errLogger.Printf("apimgr: %s: no such command\n", cmdName)
	usage()
	exitCode = 1
	return
}

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		logger.Printf("Usage: apimgr %s %s\n", name, args)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		logger.Println()
		if hasFlags {
			logger.Println("Flags:")
			logger.Println()
			logger.Println(flagBlock.String())
		}
	}
}

// parseArgs determines the name of the apimgr command and whether the
// user asked for help, exactly as cmd/dep's parseArgs does.
func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	isHelpArg := func() bool {
		return strings.Contains(strings.ToLower(args[1]), "help") || strings.ToLower(args[1]) == "-h"
	}

	switch len(args) {
	case 0, 1:
		exit = true
	case 2:
		if isHelpArg() {
			exit = true
		}
		cmdName = args[1]
	default:
		if isHelpArg() {
			cmdName = args[2]
			printCmdUsage = true
		} else {
			cmdName = args[1]
		}
	}
	return cmdName, printCmdUsage, exit
}
