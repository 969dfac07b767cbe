// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package release

import (
	"strings"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep425"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep427"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep440"
)

// Artifacts are the release artifact filenames for one project version.
// They are a pure function of project name and version, so a rebuilt tag
// produces identically-named files.
type Artifacts struct {
	Wheel   string
	Tarball string
	Deb     string
}

// Names computes the artifact filenames for a project and version.
func Names(project string, version pep440.Version) Artifacts {
	return Artifacts{
		Wheel:   WheelFilename(project, version),
		Tarball: TarballFilename(project, version),
		Deb:     DebFilename(project, version),
	}
}

// WheelFilename is the name `setup.py bdist_wheel` gives a pure-Python
// wheel: the PEP 427 escaped project name, the version, and the py3-none-any
// compatibility tag.
func WheelFilename(project string, version pep440.Version) string {
	return pep427.Filename{
		Distribution: project,
		Version:      version,
		Tag:          pep425.Pure,
	}.String()
}

// TarballFilename is the name of the source tarball, matching what
// `git archive` is invoked with in the deploy stage.
func TarballFilename(project string, version pep440.Version) string {
	return project + "-" + version.String() + ".tar.gz"
}

// DebFilename is the binary package name stdeb's bdist_deb produces: the
// "python3-" prefixed lowercase project name, the version with Debian
// revision "-1", architecture "all" for a pure-Python package.
func DebFilename(project string, version pep440.Version) string {
	return "python3-" + strings.ToLower(project) + "_" + version.String() + "-1_all.deb"
}
