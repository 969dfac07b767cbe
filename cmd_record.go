// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package main

import (
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/cliutil"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/stanley"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/w1"
)

func init() {
	var (
		argURL      string
		argUsername string
		argCACert   string
		argBusDir   string
	)
	cmd := &cobra.Command{
		Use:   "record [flags] [SENSOR_ID...]",
		Short: "Read sensors once and post the readings to the archiver",
		Long: "Read the given sensors (or every DS18S20 on the bus) and post the " +
			"readings to the Stanley archiver.  A sensor that cannot be read is " +
			"recorded as NaN rather than aborting the whole round." +
			"\n\n" +
			"The archiver password is taken from the " + stanley.PasswordEnv + " " +
			"environment variable, possibly via a .env file in the current " +
			"directory, and is scrubbed from the environment before any sensor " +
			"is touched.",
		Args: cliutil.WrapPositionalArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Missing .env is fine; the variable can come from the real
			// environment.
			if err := godotenv.Load(); err != nil {
				dlog.Debugf(ctx, "no .env file: %v", err)
			}
			password, err := stanley.ReadPassword()
			if err != nil {
				return err
			}

			client := &stanley.Client{
				BaseURL:  argURL,
				Username: argUsername,
				Password: password,
			}
			if argCACert != "" {
				client, err = client.WithCACert(argCACert)
				if err != nil {
					return err
				}
			}

			bus := w1.Bus{Dir: argBusDir}
			sensorIDs := args
			if len(sensorIDs) == 0 {
				sensorIDs, err = bus.ListSensors()
				if err != nil {
					return err
				}
			}

			now := time.Now()
			temperatures := bus.ReadAll(ctx, sensorIDs)
			readings := make(map[string][]stanley.Reading, len(temperatures))
			for sensorID, temperature := range temperatures {
				readings[stanley.SeriesPath(sensorID)] = []stanley.Reading{
					{Time: now, Value: temperature},
				}
			}
			return client.PostReadings(ctx, readings)
		},
	}
	cmd.Flags().StringVar(&argURL, "url", "", "Post readings to the archiver at `URL`")
	cmd.Flags().StringVar(&argUsername, "username", "", "Authenticate as `USERNAME`")
	cmd.Flags().StringVar(&argCACert, "ca-cert", "",
		"Validate the archiver certificate against `PEM_FILE`")
	cmd.Flags().StringVar(&argBusDir, "bus-dir", w1.DefaultBusDir,
		"Look for sensors in `SYSFS_DIR`")
	for _, flag := range []string{"url", "username"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
	argparser.AddCommand(cmd)
}
