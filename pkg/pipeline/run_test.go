// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/pipeline"
)

func planOf(t *testing.T, src string, ref pipeline.Ref) []pipeline.StagePlan {
	t.Helper()
	def, err := pipeline.Parse([]byte(src))
	require.NoError(t, err)
	return def.Plan(ref, pipeline.Environment("proj", ref, nil))
}

func statuses(results []pipeline.JobResult) map[string]pipeline.JobStatus {
	ret := make(map[string]pipeline.JobStatus, len(results))
	for _, result := range results {
		ret[result.Job] = result.Status
	}
	return ret
}

func TestRunPassed(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	plan := planOf(t, `
produce:
  stage: build
  script:
    - echo hello > artifact.txt
  artifacts:
    - artifact.txt

consume:
  stage: test
  script:
    - cat artifact.txt
`, pipeline.Ref{Name: "master"})

	results, outcome := pipeline.Run(context.Background(), plan, pipeline.RunOptions{Dir: dir})
	assert.Equal(t, pipeline.OutcomePassed, outcome)
	assert.Equal(t, map[string]pipeline.JobStatus{
		"produce": pipeline.StatusPassed,
		"consume": pipeline.StatusPassed,
	}, statuses(results))

	content, err := os.ReadFile(filepath.Join(dir, "artifact.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}

func TestRunToleratedFailure(t *testing.T) {
	t.Parallel()
	plan := planOf(t, `
flaky check:
  stage: test
  script: "false"
  allow_failure: true

solid check:
  stage: test
  script: "true"
`, pipeline.Ref{Name: "master"})

	results, outcome := pipeline.Run(context.Background(), plan, pipeline.RunOptions{Dir: t.TempDir()})
	assert.Equal(t, pipeline.OutcomeWarnings, outcome)
	assert.Equal(t, map[string]pipeline.JobStatus{
		"flaky check": pipeline.StatusWarning,
		"solid check": pipeline.StatusPassed,
	}, statuses(results))
}

func TestRunBlockingFailureHaltsLaterStages(t *testing.T) {
	t.Parallel()
	plan := planOf(t, `
stages:
  - build
  - test

break:
  stage: build
  script: "false"

never runs:
  stage: test
  script: "true"
`, pipeline.Ref{Name: "master"})

	results, outcome := pipeline.Run(context.Background(), plan, pipeline.RunOptions{Dir: t.TempDir()})
	assert.Equal(t, pipeline.OutcomeFailed, outcome)
	assert.Equal(t, map[string]pipeline.JobStatus{
		"break":      pipeline.StatusFailed,
		"never runs": pipeline.StatusSkipped,
	}, statuses(results))
}

func TestRunBlockingFailureSparesSameStage(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	plan := planOf(t, `
stages:
  - build
  - test

break:
  stage: build
  script: "false"

sibling:
  stage: build
  script:
    - echo still here > sibling.txt

never runs:
  stage: test
  script: "true"
`, pipeline.Ref{Name: "master"})

	results, outcome := pipeline.Run(context.Background(), plan, pipeline.RunOptions{Dir: dir})
	assert.Equal(t, pipeline.OutcomeFailed, outcome)
	assert.Equal(t, map[string]pipeline.JobStatus{
		"break":      pipeline.StatusFailed,
		"sibling":    pipeline.StatusPassed,
		"never runs": pipeline.StatusSkipped,
	}, statuses(results))

	content, err := os.ReadFile(filepath.Join(dir, "sibling.txt"))
	require.NoError(t, err)
	assert.Equal(t, "still here\n", string(content))
}

func TestRunMissingArtifactFailsJob(t *testing.T) {
	t.Parallel()
	plan := planOf(t, `
package:
  stage: build
  script: "true"
  artifacts:
    - "dist/*.whl"
`, pipeline.Ref{Name: "master"})

	results, outcome := pipeline.Run(context.Background(), plan, pipeline.RunOptions{Dir: t.TempDir()})
	assert.Equal(t, pipeline.OutcomeFailed, outcome)
	require.Len(t, results, 1)
	var missingErr *pipeline.MissingArtifactError
	require.ErrorAs(t, results[0].Err, &missingErr)
	assert.Equal(t, "dist/*.whl", missingErr.Pattern)
}

func TestComputeOutcome(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		results []pipeline.JobResult
		exp     pipeline.Outcome
	}{
		"empty":  {nil, pipeline.OutcomePassed},
		"passed": {[]pipeline.JobResult{{Status: pipeline.StatusPassed}}, pipeline.OutcomePassed},
		"warning-only": {
			[]pipeline.JobResult{
				{Status: pipeline.StatusPassed},
				{Status: pipeline.StatusWarning},
			},
			pipeline.OutcomeWarnings,
		},
		"failure-beats-warning": {
			[]pipeline.JobResult{
				{Status: pipeline.StatusWarning},
				{Status: pipeline.StatusFailed},
				{Status: pipeline.StatusSkipped},
			},
			pipeline.OutcomeFailed,
		},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, pipeline.ComputeOutcome(tc.results))
		})
	}
}
