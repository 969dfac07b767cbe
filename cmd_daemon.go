// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package main

import (
	"github.com/datawire/dlib/dlog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/cliutil"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/daemon"
)

func init() {
	var argConfigFile string
	cmd := &cobra.Command{
		Use:   "daemon [flags]",
		Short: "Periodically read every sensor and archive the readings",
		Long: "Run until interrupted, reading the configured sensors on a fixed " +
			"interval and posting the readings to the archiver.  Readings that " +
			"cannot be delivered are spooled locally and retried on later rounds.  " +
			"Prometheus metrics and a health endpoint are served over HTTP.",
		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := godotenv.Load(); err != nil {
				dlog.Debugf(ctx, "no .env file: %v", err)
			}

			cfg, err := daemon.LoadConfig(argConfigFile)
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg)
			if err != nil {
				return err
			}
			return d.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&argConfigFile, "config-file", "",
		"Read the daemon configuration from `YAML_FILE`")
	if err := cmd.MarkFlagRequired("config-file"); err != nil {
		panic(err)
	}
	argparser.AddCommand(cmd)
}
