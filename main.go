// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Command stanley-driver reads DS18S20 temperature sensors on the 1-wire
// bus and archives the readings to a Stanley server.  It also knows how to
// lint and run the release pipeline that packages the driver itself.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/cliutil"
)

var argparser = &cobra.Command{
	Use:   "stanley-driver {[flags]|SUBCOMMAND...}",
	Short: "Read DS18S20 sensors and archive the readings",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,

	SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
	SilenceUsage:  true, // our FlagErrorFunc will handle it
}

var argVerbosity *int

func init() {
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
	argVerbosity = cliutil.AddVerboseFlag(argparser.PersistentFlags())
}

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	ctx := dlog.WithLogger(context.Background(), dlog.WrapLogrus(logger))

	cobra.OnInitialize(func() {
		switch *argVerbosity {
		case 0:
			// keep the warning level from above
		case 1:
			logger.SetLevel(logrus.InfoLevel)
		default:
			logger.SetLevel(logrus.DebugLevel)
		}
	})

	if err := argparser.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(argparser.ErrOrStderr(), "%s: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}
