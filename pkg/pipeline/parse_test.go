// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/pipeline"
)

// releaseDefinition mirrors the project's own CI file.
const releaseDefinition = `
stages:
  - build
  - test
  - deploy
  - documentation

image: python:3

style check:
  stage: test
  script:
    - python3 setup.py flake8
  allow_failure: true

type check:
  stage: test
  script: python3 -m mypy ${CI_PROJECT_NAME}
  allow_failure: true

create deb package:
  stage: deploy
  only:
    - tags
  before_script:
    - pip install stdeb
  script:
    - python3 setup.py --command-packages=stdeb.command bdist_deb
  artifacts:
    paths:
      - "deb_dist/python3-*_all.deb"

create wheel package:
  stage: deploy
  only:
    - tags
  script:
    - python3 setup.py bdist_wheel
  artifacts:
    paths:
      - "dist/*.whl"

create tarball:
  stage: deploy
  only:
    - tags
  script:
    - git archive --format tar.gz --output ${CI_PROJECT_NAME}-${CI_COMMIT_REF_NAME#v}.tar.gz ${CI_COMMIT_REF_NAME}
  artifacts:
    paths:
      - "*.tar.gz"
`

func TestParse(t *testing.T) {
	t.Parallel()
	def, err := pipeline.Parse([]byte(releaseDefinition))
	require.NoError(t, err)

	assert.Equal(t, []string{"build", "test", "deploy", "documentation"}, def.Stages)
	require.Len(t, def.Jobs, 5)

	// declaration order is preserved
	names := make([]string, len(def.Jobs))
	for i, job := range def.Jobs {
		names[i] = job.Name
	}
	assert.Equal(t, []string{
		"style check",
		"type check",
		"create deb package",
		"create wheel package",
		"create tarball",
	}, names)

	styleCheck, ok := def.Job("style check")
	require.True(t, ok)
	assert.Equal(t, "test", styleCheck.Stage)
	assert.Equal(t, "python:3", styleCheck.Image, "top-level image is the default")
	assert.True(t, styleCheck.AllowFailure)
	assert.False(t, styleCheck.OnlyTags)

	typeCheck, ok := def.Job("type check")
	require.True(t, ok)
	assert.Equal(t, []string{"python3 -m mypy ${CI_PROJECT_NAME}"}, typeCheck.Script,
		"scalar script decodes as a single line")

	deb, ok := def.Job("create deb package")
	require.True(t, ok)
	assert.True(t, deb.OnlyTags)
	assert.False(t, deb.AllowFailure)
	assert.Equal(t, []string{"pip install stdeb"}, deb.BeforeScript)
	assert.Equal(t, []string{"deb_dist/python3-*_all.deb"}, deb.Artifacts)
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()
	def, err := pipeline.Parse([]byte(`
lone job:
  script: true
`))
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultStages, def.Stages)
	require.Len(t, def.Jobs, 1)
	assert.Equal(t, "test", def.Jobs[0].Stage, "jobs without a stage land in test")
}

func TestParseArtifactsShorthand(t *testing.T) {
	t.Parallel()
	def, err := pipeline.Parse([]byte(`
job:
  script: true
  artifacts:
    - "dist/*"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"dist/*"}, def.Jobs[0].Artifacts)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	testcases := map[string]string{
		"not-a-mapping":       `[1, 2]`,
		"unsupported-trigger": "job:\n  script: true\n  only:\n    - branches\n",
		"bad-yaml":            "job: [\n",
	}
	for tcName, src := range testcases {
		src := src
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			_, err := pipeline.Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}
