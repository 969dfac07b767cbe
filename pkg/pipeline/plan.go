// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package pipeline

import (
	"os"
	"sort"
	"strings"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep440"
)

// Ref identifies what a pipeline runs against: a branch name, or a tag name
// for pipelines started by a tag push.
type Ref struct {
	Name string
	Tag  bool
}

// VersionTag reports whether the ref is a tag following the project's
// version-tag convention: a "v" prefix followed by a PEP 440 version, e.g.
// "v0.1.2".
func (r Ref) VersionTag() bool {
	if !r.Tag || !strings.HasPrefix(r.Name, "v") {
		return false
	}
	_, err := pep440.ParseVersion(strings.TrimPrefix(r.Name, "v"))
	return err == nil
}

// Vars are the variables substituted into job scripts and artifact paths.
type Vars map[string]string

// Environment returns the predefined variables the engine would inject for
// a pipeline of the given project and ref, merged with extra.  Later maps
// win.
func Environment(projectName string, ref Ref, extra Vars) Vars {
	vars := Vars{
		"CI_PROJECT_NAME":    projectName,
		"CI_COMMIT_REF_NAME": ref.Name,
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

// Expand substitutes $VAR and ${VAR} references.  Unknown variables expand
// to the empty string, as the engine's shell would.
func (vars Vars) Expand(s string) string {
	return os.Expand(s, func(name string) string {
		return vars[name]
	})
}

// Environ renders the variables in "KEY=VALUE" form, sorted, for handing
// to a job shell.
func (vars Vars) Environ() []string {
	ret := make([]string, 0, len(vars))
	for k, v := range vars {
		ret = append(ret, k+"="+v)
	}
	sort.Strings(ret)
	return ret
}

func (vars Vars) expandAll(strs []string) []string {
	if strs == nil {
		return nil
	}
	ret := make([]string, len(strs))
	for i, s := range strs {
		ret[i] = vars.Expand(s)
	}
	return ret
}

// PlannedJob is a job selected for a concrete pipeline run.  Variables are
// substituted in the fields the engine itself interprets (image, artifact
// paths); script lines are left verbatim for the job shell, which sees the
// variables as environment instead.
type PlannedJob struct {
	Job
}

// StagePlan is the set of jobs one stage contributes to a concrete run.
// Stages that trigger no jobs are omitted from the plan.
type StagePlan struct {
	Stage string
	Jobs  []PlannedJob
}

// Plan evaluates which jobs the given ref triggers, grouped by stage in the
// declared stage order.  Tag-restricted jobs are selected only for tag
// refs.
func (d *Definition) Plan(ref Ref, vars Vars) []StagePlan {
	var ret []StagePlan
	for _, stage := range d.Stages {
		var jobs []PlannedJob
		for _, job := range d.StageJobs(stage) {
			if job.OnlyTags && !ref.Tag {
				continue
			}
			planned := PlannedJob{Job: job}
			planned.Image = vars.Expand(job.Image)
			planned.Artifacts = vars.expandAll(job.Artifacts)
			jobs = append(jobs, planned)
		}
		if len(jobs) > 0 {
			ret = append(ret, StagePlan{Stage: stage, Jobs: jobs})
		}
	}
	return ret
}
