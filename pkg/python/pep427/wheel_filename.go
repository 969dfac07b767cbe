// Copyright Claudio Mattera 2026.
//
// Distributed under the MIT License.

// Package pep427 implements the wheel filename convention of PEP 427 (the
// binary distribution format):
//
//	{distribution}-{version}(-{build tag})?-{python tag}-{abi tag}-{platform tag}.whl
//
// https://www.python.org/dev/peps/pep-0427/
package pep427

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep425"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep440"
)

// reEscape matches the character runs that must be collapsed when a
// distribution name is embedded in a filename: each run of characters that
// are not alphanumerics or dots becomes a single underscore.
var reEscape = regexp.MustCompile(`[^A-Za-z0-9.]+`)

// Escape makes a distribution name safe for embedding in a wheel filename;
// for example "foo-bar" becomes "foo_bar".
func Escape(distribution string) string {
	return reEscape.ReplaceAllString(distribution, "_")
}

// Filename is a parsed wheel filename.
type Filename struct {
	Distribution string
	Version      pep440.Version
	BuildTag     *BuildTag
	Tag          pep425.Tag
}

// String renders the filename, escaping the distribution name as needed.
func (f Filename) String() string {
	ret := Escape(f.Distribution) + "-" + f.Version.String()
	if f.BuildTag != nil {
		ret += "-" + f.BuildTag.String()
	}
	return ret + "-" + f.Tag.String() + ".whl"
}

var reFilename = regexp.MustCompile(regexp.MustCompile(`\s+`).ReplaceAllString(`
		^(?P<distribution>[^-]+)
		-(?P<version>[^-]+)
		(?:-(?P<build_n>[0-9]+)(?P<build_l>[^-0-9][^-]*)?)?
		-(?P<python>[^-]+)
		-(?P<abi>[^-]+)
		-(?P<platform>[^-]+)
		\.whl$`, ``))

// ParseFilename splits a wheel filename into its fields.  The version is
// normalized; the distribution name is left in its escaped form.
func ParseFilename(filename string) (*Filename, error) {
	match := reFilename.FindStringSubmatch(filename)
	if match == nil {
		return nil, fmt.Errorf("invalid wheel filename: %q", filename)
	}

	var ret Filename

	ret.Distribution = match[reFilename.SubexpIndex("distribution")]

	ver, err := pep440.ParseVersion(match[reFilename.SubexpIndex("version")])
	if err != nil {
		return nil, fmt.Errorf("invalid wheel filename: %q: %w", filename, err)
	}
	ret.Version = *ver

	if buildN := match[reFilename.SubexpIndex("build_n")]; buildN != "" {
		n, _ := strconv.Atoi(buildN)
		ret.BuildTag = &BuildTag{
			Int: n,
			Str: match[reFilename.SubexpIndex("build_l")],
		}
	}

	ret.Tag = pep425.Tag{
		Python:   match[reFilename.SubexpIndex("python")],
		ABI:      match[reFilename.SubexpIndex("abi")],
		Platform: match[reFilename.SubexpIndex("platform")],
	}

	return &ret, nil
}

// BuildTag is the optional build number used to break ties between builds
// of the same version; it sorts numerically first and lexically second.
type BuildTag struct {
	Int int
	Str string
}

func (t BuildTag) String() string {
	return fmt.Sprintf("%d%s", t.Int, t.Str)
}

func (a *BuildTag) Cmp(b *BuildTag) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if d := a.Int - b.Int; d != 0 {
		return d
	}
	switch {
	case a.Str < b.Str:
		return -1
	case a.Str > b.Str:
		return 1
	default:
		return 0
	}
}
