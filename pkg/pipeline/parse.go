// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package pipeline

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The definition file is a YAML mapping whose reserved keys configure the
// pipeline and whose remaining keys each declare a job, mirroring the
// .gitlab-ci.yml layout:
//
//	stages:
//	  - build
//	  - test
//	  - deploy
//	  - documentation
//
//	style check:
//	  stage: test
//	  image: python:3
//	  script:
//	    - python3 setup.py flake8
//	  allow_failure: true
//
//	create wheel package:
//	  stage: deploy
//	  only:
//	    - tags
//	  script: python3 setup.py bdist_wheel
//	  artifacts:
//	    paths:
//	      - "dist/*.whl"

// rawJob is the YAML shape of one job block.
type rawJob struct {
	Stage        string       `yaml:"stage"`
	Image        string       `yaml:"image"`
	BeforeScript scriptLines  `yaml:"before_script"`
	Script       scriptLines  `yaml:"script"`
	Only         []string     `yaml:"only"`
	AllowFailure bool         `yaml:"allow_failure"`
	Artifacts    rawArtifacts `yaml:"artifacts"`
	Needs        []string     `yaml:"needs"`
}

// scriptLines accepts either a single scalar command or a sequence of
// commands.
type scriptLines []string

func (s *scriptLines) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var line string
		if err := node.Decode(&line); err != nil {
			return err
		}
		*s = scriptLines{line}
		return nil
	}
	var lines []string
	if err := node.Decode(&lines); err != nil {
		return err
	}
	*s = scriptLines(lines)
	return nil
}

// rawArtifacts accepts both the engine's mapping form ("artifacts: {paths:
// [...]}") and a bare path sequence.
type rawArtifacts struct {
	Paths []string `yaml:"paths"`
}

func (a *rawArtifacts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&a.Paths)
	}
	type plain rawArtifacts
	return node.Decode((*plain)(a))
}

// reservedKeys are the top-level keys that do not declare jobs.
var reservedKeys = map[string]bool{
	"stages":    true,
	"variables": true,
	"image":     true,
}

// Parse reads a pipeline definition.  Jobs keep the order they appear in
// the file; a missing stages key falls back to DefaultStages; a job without
// an explicit stage lands in "test", matching the external engine's
// default.
func Parse(src []byte) (*Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, errors.Wrap(err, "unable to parse pipeline definition")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 ||
		doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("pipeline definition must be a YAML mapping")
	}
	root := doc.Content[0]

	def := &Definition{}
	var defaultImage string

	// Mapping nodes hold alternating key/value children.
	for i := 0; i < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return nil, errors.Wrap(err, "unable to decode top-level key")
		}

		switch {
		case key == "stages":
			if err := valueNode.Decode(&def.Stages); err != nil {
				return nil, errors.Wrap(err, "unable to decode stage list")
			}
		case key == "image":
			if err := valueNode.Decode(&defaultImage); err != nil {
				return nil, errors.Wrap(err, "unable to decode default image")
			}
		case reservedKeys[key]:
			// recognized but not interpreted here
		default:
			var raw rawJob
			if err := valueNode.Decode(&raw); err != nil {
				return nil, errors.Wrapf(err, "unable to decode job %q", key)
			}
			job, err := raw.toJob(key)
			if err != nil {
				return nil, err
			}
			def.Jobs = append(def.Jobs, job)
		}
	}

	if def.Stages == nil {
		def.Stages = append([]string(nil), DefaultStages...)
	}
	if defaultImage != "" {
		for i := range def.Jobs {
			if def.Jobs[i].Image == "" {
				def.Jobs[i].Image = defaultImage
			}
		}
	}
	return def, nil
}

// ParseFile is Parse on a file.
func ParseFile(filename string) (*Definition, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	def, err := Parse(src)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return def, nil
}

func (raw rawJob) toJob(name string) (Job, error) {
	job := Job{
		Name:         name,
		Stage:        raw.Stage,
		Image:        raw.Image,
		BeforeScript: raw.BeforeScript,
		Script:       raw.Script,
		AllowFailure: raw.AllowFailure,
		Artifacts:    raw.Artifacts.Paths,
		Needs:        raw.Needs,
	}
	if job.Stage == "" {
		job.Stage = "test"
	}
	for _, trigger := range raw.Only {
		if trigger != "tags" {
			return Job{}, errors.Errorf("job %q: unsupported trigger %q", name, trigger)
		}
		job.OnlyTags = true
	}
	return job, nil
}
