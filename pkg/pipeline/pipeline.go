// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package pipeline models a declarative CI pipeline definition: an ordered
// stage sequence plus jobs bound to stages, with tag-only triggers and
// failure tolerance, in the shape the GitLab CI engine consumes.
//
// The package validates definitions, evaluates which jobs a given ref
// triggers, and can execute the resulting plan locally with the engine's
// blocking/tolerated failure semantics.
package pipeline

// DefaultStages is the stage sequence used when a definition does not
// declare its own.
var DefaultStages = []string{"build", "test", "deploy", "documentation"}

// DeployStage is the stage whose jobs publish release artifacts; lint holds
// its jobs to the tag-trigger rules.
const DeployStage = "deploy"

// Definition is a parsed pipeline definition.  Jobs keep their declaration
// order.
type Definition struct {
	Stages []string
	Jobs   []Job
}

// Job is one declarative task of the pipeline.
type Job struct {
	Name         string
	Stage        string
	Image        string
	BeforeScript []string
	Script       []string
	// OnlyTags restricts the job to pipelines started by a tag push.
	OnlyTags bool
	// AllowFailure makes the job's failure non-blocking: it is reported
	// but does not halt later stages.
	AllowFailure bool
	// Artifacts are the paths preserved after the job completes.
	Artifacts []string
	// Needs names jobs of earlier stages this job consumes artifacts
	// from.
	Needs []string
}

// StageIndex returns the position of a stage in the declared sequence, or
// -1 if the stage is not declared.
func (d *Definition) StageIndex(stage string) int {
	for i, s := range d.Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

// Job looks a job up by name.
func (d *Definition) Job(name string) (*Job, bool) {
	for i := range d.Jobs {
		if d.Jobs[i].Name == name {
			return &d.Jobs[i], true
		}
	}
	return nil, false
}

// StageJobs returns the jobs of one stage, in declaration order.
func (d *Definition) StageJobs(stage string) []Job {
	var ret []Job
	for _, job := range d.Jobs {
		if job.Stage == stage {
			ret = append(ret, job)
		}
	}
	return ret
}
