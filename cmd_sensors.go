// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/cliutil"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/w1"
)

var argparserSensors = &cobra.Command{
	Use:   "sensors {[flags]|SUBCOMMAND...}",
	Short: "Inspect the sensors on the 1-wire bus",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,
}

func init() {
	var busDir string
	argparserSensors.PersistentFlags().StringVar(&busDir, "bus-dir", w1.DefaultBusDir,
		"Look for sensors in `SYSFS_DIR`")

	argparserSensors.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the DS18S20 sensors on the bus",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			bus := w1.Bus{Dir: busDir}
			sensorIDs, err := bus.ListSensors()
			if err != nil {
				return err
			}
			for _, sensorID := range sensorIDs {
				fmt.Fprintln(cmd.OutOrStdout(), sensorID)
			}
			return nil
		},
	})

	argparserSensors.AddCommand(&cobra.Command{
		Use:   "read [flags] SENSOR_ID...",
		Short: "Read temperatures from the given sensors",
		Args:  cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			bus := w1.Bus{Dir: busDir}
			var firstErr error
			for _, sensorID := range args {
				temperature, err := bus.ReadTemperature(cmd.Context(), sensorID)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", sensorID, err)
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.3f\n", sensorID, temperature)
			}
			return firstErr
		},
	})

	argparser.AddCommand(argparserSensors)
}
