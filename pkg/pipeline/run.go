// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/datawire/dlib/dexec"
	"github.com/datawire/dlib/dlog"
)

// JobStatus is the terminal state of one job in a run.
type JobStatus string

const (
	StatusPassed JobStatus = "passed"
	StatusFailed JobStatus = "failed"
	// StatusWarning is a failed job whose failure is tolerated
	// (allow_failure); it does not halt the pipeline.
	StatusWarning JobStatus = "warning"
	// StatusSkipped marks jobs of stages that never ran because an
	// earlier stage had a blocking failure.
	StatusSkipped JobStatus = "skipped"
)

// JobResult is the outcome of one job.
type JobResult struct {
	Job    string
	Stage  string
	Status JobStatus
	Err    error
}

// Outcome is the overall pipeline result.
type Outcome string

const (
	OutcomePassed   Outcome = "passed"
	OutcomeWarnings Outcome = "passed with warnings"
	OutcomeFailed   Outcome = "failed"
)

// ComputeOutcome folds job results into the pipeline outcome: any blocking
// failure fails the pipeline; tolerated failures only downgrade it to
// "passed with warnings".
func ComputeOutcome(results []JobResult) Outcome {
	outcome := OutcomePassed
	for _, result := range results {
		switch result.Status {
		case StatusFailed:
			return OutcomeFailed
		case StatusWarning:
			outcome = OutcomeWarnings
		}
	}
	return outcome
}

// RunOptions configure a local run.
type RunOptions struct {
	// Dir is the working directory jobs run in; defaults to the current
	// directory.
	Dir string
	// Env is extra environment for job shells, in "KEY=VALUE" form; the
	// parent environment is inherited.
	Env []string
}

// Run executes a plan locally, stage by stage, with the engine's ordering
// and failure semantics: jobs of one stage run before the next stage
// starts, a blocking failure skips all later stages, and tolerated
// failures are reported without halting.  Container images are ignored;
// scripts run in the local shell.
func Run(ctx context.Context, plan []StagePlan, opts RunOptions) ([]JobResult, Outcome) {
	var results []JobResult
	halted := false

	for _, stage := range plan {
		// A blocking failure only halts progression to later stages;
		// the failing job's siblings in the same stage still run.
		stageFailed := false
		for _, job := range stage.Jobs {
			if halted {
				results = append(results, JobResult{
					Job:    job.Name,
					Stage:  stage.Stage,
					Status: StatusSkipped,
				})
				continue
			}

			dlog.Infof(ctx, "running job %q (stage %s)", job.Name, stage.Stage)
			err := runScript(ctx, job, opts)
			result := JobResult{Job: job.Name, Stage: stage.Stage, Status: StatusPassed}
			if err == nil {
				err = checkArtifacts(job, opts.Dir)
			}
			if err != nil {
				result.Err = err
				if job.AllowFailure {
					result.Status = StatusWarning
					dlog.Warnf(ctx, "job %q failed (tolerated): %v", job.Name, err)
				} else {
					result.Status = StatusFailed
					stageFailed = true
					dlog.Errorf(ctx, "job %q failed: %v", job.Name, err)
				}
			}
			results = append(results, result)
		}
		if stageFailed {
			halted = true
		}
	}
	return results, ComputeOutcome(results)
}

// runScript runs the job's before_script and script as a single strict
// shell script, so a failing line fails the job like the engine's runner
// would.
func runScript(ctx context.Context, job PlannedJob, opts RunOptions) error {
	lines := make([]string, 0, len(job.BeforeScript)+len(job.Script))
	lines = append(lines, job.BeforeScript...)
	lines = append(lines, job.Script...)

	cmd := dexec.CommandContext(ctx, "/bin/sh", "-e", "-c", strings.Join(lines, "\n"))
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// checkArtifacts verifies that every declared artifact pattern matched at
// least one file.
func checkArtifacts(job PlannedJob, dir string) error {
	for _, pattern := range job.Artifacts {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return &MissingArtifactError{Job: job.Name, Pattern: pattern}
		}
	}
	return nil
}

// MissingArtifactError means a job completed but did not produce a
// declared artifact.
type MissingArtifactError struct {
	Job     string
	Pattern string
}

func (e *MissingArtifactError) Error() string {
	return "job " + e.Job + ": no artifact matches " + e.Pattern
}
