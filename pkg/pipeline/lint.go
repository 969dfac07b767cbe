// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package pipeline

import (
	"github.com/datawire/dlib/derror"
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// Lint checks a definition against the constraints the external engine
// enforces at run time, plus this project's own conventions:
//
//   - every job's stage must be in the declared stage sequence;
//   - jobs in the deploy stage must be tag-triggered;
//   - jobs outside the deploy stage must not be tag-triggered;
//   - jobs must have a script;
//   - job names must be unique, stage names must be unique;
//   - needs must name existing jobs in strictly earlier stages, without
//     cycles.
//
// All findings are reported, not just the first.
func Lint(def *Definition) error {
	var errs derror.MultiError

	report := func(err error) {
		errs = append(errs, err)
	}

	seenStages := make(map[string]bool, len(def.Stages))
	for _, stage := range def.Stages {
		if seenStages[stage] {
			report(errors.Errorf("stage %q is declared twice", stage))
		}
		seenStages[stage] = true
	}

	seenJobs := make(map[string]bool, len(def.Jobs))
	for _, job := range def.Jobs {
		if seenJobs[job.Name] {
			report(errors.Errorf("job %q is declared twice", job.Name))
		}
		seenJobs[job.Name] = true

		if !seenStages[job.Stage] {
			report(errors.Errorf("job %q: stage %q is not in the stages sequence %v",
				job.Name, job.Stage, def.Stages))
		}
		if job.Stage == DeployStage && !job.OnlyTags {
			report(errors.Errorf("job %q: deploy jobs must be restricted to tag pipelines (only: tags)",
				job.Name))
		}
		if job.Stage != DeployStage && job.OnlyTags {
			report(errors.Errorf("job %q: only deploy jobs may be restricted to tag pipelines",
				job.Name))
		}
		if len(job.Script) == 0 {
			report(errors.Errorf("job %q: script is empty", job.Name))
		}
	}

	if err := lintNeeds(def, report); err != nil {
		report(err)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// lintNeeds checks the needs edges: targets must exist, must live in a
// strictly earlier stage, and the edge set must be acyclic.
func lintNeeds(def *Definition, report func(error)) error {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for _, job := range def.Jobs {
		// AddVertex only fails on duplicates, which lint reports
		// separately.
		_ = g.AddVertex(job.Name)
	}

	for _, job := range def.Jobs {
		jobStage := def.StageIndex(job.Stage)
		for _, need := range job.Needs {
			target, ok := def.Job(need)
			if !ok {
				report(errors.Errorf("job %q: needs unknown job %q", job.Name, need))
				continue
			}
			if targetStage := def.StageIndex(target.Stage); jobStage >= 0 &&
				targetStage >= 0 && targetStage >= jobStage {
				report(errors.Errorf("job %q: needs job %q of stage %q, which does not run earlier",
					job.Name, need, target.Stage))
			}
			if err := g.AddEdge(need, job.Name); err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					return errors.Errorf("job %q: needs %q creates a dependency cycle",
						job.Name, need)
				}
				if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return errors.Wrapf(err, "job %q: needs %q", job.Name, need)
				}
			}
		}
	}
	return nil
}
