// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package cliutil makes cobra behave GNU-ish: bad usage exits 2 with a
// pointer at --help, and commands that only exist to hold subcommands
// reject positional arguments with a suggestion instead of succeeding
// silently.
package cliutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// OnlySubcommands is a cobra.PositionalArgs like cobra.NoArgs, but with a
// friendlier error that suggests near-miss subcommand names.
func OnlySubcommands(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	err := fmt.Errorf("invalid subcommand %q", args[0])
	if cmd.SuggestionsMinimumDistance <= 0 {
		cmd.SuggestionsMinimumDistance = 2
	}
	if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
		err = fmt.Errorf("%w\nDid you mean one of these?\n\t%s",
			err, strings.Join(suggestions, "\n\t"))
	}
	return cmd.FlagErrorFunc()(cmd, err)
}

// RunSubcommands is a cobra.Command.RunE for commands that do nothing
// themselves.  Setting RunE matters even with nothing to run: without it
// cobra treats a bare invocation as success, and a typoed subcommand
// should not be success.
func RunSubcommands(cmd *cobra.Command, args []string) error {
	cmd.SetOut(cmd.ErrOrStderr())
	cmd.HelpFunc()(cmd, args)
	os.Exit(2)
	return nil
}

// WrapPositionalArgs routes a cobra.PositionalArgs' errors through
// FlagErrorFunc, so argument-count errors report like flag errors do.
func WrapPositionalArgs(inner cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return FlagErrorFunc(cmd, inner(cmd, args))
	}
}

// FlagErrorFunc is for (*cobra.Command).SetFlagErrorFunc.  On bad usage it
// prints the error plus a "See --help" line and exits 2; it does not
// return, so everything that does come back from Execute is an execution
// error rather than a usage error.
func FlagErrorFunc(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	errStr := strings.TrimRight(err.Error(), "\n")
	if strings.Contains(errStr, "\n") {
		errStr += "\n"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\nSee '%s --help' for more information.\n",
		cmd.CommandPath(), errStr, cmd.CommandPath())
	os.Exit(2)
	return nil
}

// AddVerboseFlag registers the counted -v flag ("-v" for info, "-vv" for
// debug) on a flag set and returns the counter.
func AddVerboseFlag(flags *pflag.FlagSet) *int {
	return flags.CountP("verbose", "v", "increase output (repeat for more)")
}
