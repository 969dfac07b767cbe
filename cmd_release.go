// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/cliutil"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/release"
)

var argparserRelease = &cobra.Command{
	Use:   "release {[flags]|SUBCOMMAND...}",
	Short: "Build and name release artifacts",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,
}

func init() {
	var argProject string
	argparserRelease.PersistentFlags().StringVar(&argProject, "project", defaultProjectName(),
		"Use `NAME` as the project name")

	argparserRelease.AddCommand(&cobra.Command{
		Use:   "version TAG",
		Short: "Print the version a release tag denotes",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := release.VersionFromTag(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	})

	argparserRelease.AddCommand(&cobra.Command{
		Use:   "names TAG",
		Short: "Print the artifact filenames for a release tag",
		Long: "Print the wheel, source tarball, and Debian package filenames that " +
			"a release of the given tag produces.  The names are a pure function " +
			"of the project name and the tag, so the pipeline can predict them " +
			"before any artifact is built.",
		Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := release.VersionFromTag(args[0])
			if err != nil {
				return err
			}
			artifacts := release.Names(argProject, *version)
			fmt.Fprintln(cmd.OutOrStdout(), artifacts.Wheel)
			fmt.Fprintln(cmd.OutOrStdout(), artifacts.Tarball)
			fmt.Fprintln(cmd.OutOrStdout(), artifacts.Deb)
			return nil
		},
	})

	argparserRelease.AddCommand(&cobra.Command{
		Use:   "tarball [flags] TAG >OUT_TARBALL",
		Short: "Export the tagged source tree as a gzipped tarball",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[0]
			version, err := release.VersionFromTag(tag)
			if err != nil {
				return err
			}
			prefix := argProject + "-" + version.String()
			return release.WriteTarball(cmd.Context(), ".", tag, prefix, os.Stdout)
		},
	})

	argparserRelease.AddCommand(&cobra.Command{
		Use:   "wheel TAG",
		Short: "Build the wheel for a release tag",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := release.VersionFromTag(args[0])
			if err != nil {
				return err
			}
			filename, err := release.BuildWheel(cmd.Context(), ".",
				release.WheelFilename(argProject, *version))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filename)
			return nil
		},
	})

	argparserRelease.AddCommand(&cobra.Command{
		Use:   "deb TAG",
		Short: "Build the Debian package for a release tag",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := release.VersionFromTag(args[0])
			if err != nil {
				return err
			}
			filename, err := release.BuildDeb(cmd.Context(), ".",
				release.DebFilename(argProject, *version))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filename)
			return nil
		},
	})

	argparser.AddCommand(argparserRelease)
}
