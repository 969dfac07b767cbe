// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/cliutil"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/pipeline"
)

var argparserPipeline = &cobra.Command{
	Use:   "pipeline {[flags]|SUBCOMMAND...}",
	Short: "Lint, plan, and run the release pipeline",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,
}

func parseVarFlags(kvs []string) (pipeline.Vars, error) {
	vars := make(pipeline.Vars, len(kvs))
	for _, kv := range kvs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errors.Errorf("invalid variable %q: expected KEY=VALUE", kv)
		}
		vars[key] = value
	}
	return vars, nil
}

func defaultProjectName() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Base(cwd)
}

func init() {
	var argFile string
	argparserPipeline.PersistentFlags().StringVar(&argFile, "file", ".gitlab-ci.yml",
		"Read the pipeline definition from `YAML_FILE`")

	var (
		argRef     string
		argTag     bool
		argProject string
		argVars    []string
	)
	addPlanFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&argRef, "ref", "main", "Plan for branch or tag `NAME`")
		cmd.Flags().BoolVar(&argTag, "tag", false, "Treat the ref as a tag")
		cmd.Flags().StringVar(&argProject, "project", defaultProjectName(),
			"Use `NAME` as the project name")
		cmd.Flags().StringArrayVar(&argVars, "var", nil,
			"Set an extra pipeline variable (`KEY=VALUE`, repeatable)")
	}
	plan := func() (*pipeline.Definition, []pipeline.StagePlan, pipeline.Vars, error) {
		def, err := pipeline.ParseFile(argFile)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pipeline.Lint(def); err != nil {
			return nil, nil, nil, err
		}
		extra, err := parseVarFlags(argVars)
		if err != nil {
			return nil, nil, nil, err
		}
		ref := pipeline.Ref{Name: argRef, Tag: argTag}
		if ref.Tag && !ref.VersionTag() {
			return nil, nil, nil, errors.Errorf(
				"tag %q does not follow the version-tag convention (\"v\" + version)", ref.Name)
		}
		vars := pipeline.Environment(argProject, ref, extra)
		return def, def.Plan(ref, vars), vars, nil
	}

	argparserPipeline.AddCommand(&cobra.Command{
		Use:   "lint",
		Short: "Check the pipeline definition for mistakes",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := pipeline.ParseFile(argFile)
			if err != nil {
				return err
			}
			if err := pipeline.Lint(def); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d stages, %d jobs, no problems\n",
				argFile, len(def.Stages), len(def.Jobs))
			return nil
		},
	})

	planCmd := &cobra.Command{
		Use:   "plan [flags]",
		Short: "Show which jobs a ref would trigger",
		Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, stages, _, err := plan()
			if err != nil {
				return err
			}
			table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 1, 2, ' ', 0)
			for _, stage := range stages {
				for _, job := range stage.Jobs {
					var notes []string
					if job.AllowFailure {
						notes = append(notes, "allowed to fail")
					}
					if len(job.Artifacts) > 0 {
						notes = append(notes, "artifacts: "+strings.Join(job.Artifacts, " "))
					}
					fmt.Fprintf(table, "%s\t%s\t%s\n",
						stage.Stage, job.Name, strings.Join(notes, "; "))
				}
			}
			return table.Flush()
		},
	}
	addPlanFlags(planCmd)
	argparserPipeline.AddCommand(planCmd)

	var argDir string
	runCmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Run the triggered jobs locally",
		Long: "Run the jobs the given ref would trigger, in the local shell rather " +
			"than in containers, with the same stage ordering and failure " +
			"semantics as the hosted engine: a blocking failure skips every " +
			"later stage, while jobs that are allowed to fail only downgrade " +
			"the result to \"passed with warnings\".",
		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, stages, vars, err := plan()
			if err != nil {
				return err
			}
			results, outcome := pipeline.Run(cmd.Context(), stages, pipeline.RunOptions{
				Dir: argDir,
				Env: vars.Environ(),
			})
			table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 1, 2, ' ', 0)
			for _, result := range results {
				detail := ""
				if result.Err != nil {
					detail = result.Err.Error()
				}
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\n",
					result.Stage, result.Job, result.Status, detail)
			}
			if err := table.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline %s\n", outcome)
			if outcome == pipeline.OutcomeFailed {
				return errors.New("pipeline failed")
			}
			return nil
		},
	}
	addPlanFlags(runCmd)
	runCmd.Flags().StringVar(&argDir, "dir", "", "Run jobs in `DIR` instead of the current directory")
	argparserPipeline.AddCommand(runCmd)

	argparser.AddCommand(argparserPipeline)
}
