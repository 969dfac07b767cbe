// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package pep425 implements PEP 425 -- Compatibility Tags for Built
// Distributions.
//
// https://www.python.org/dev/peps/pep-0425/
package pep425

// Tag is a compatibility tag, as embedded in wheel filenames.
type Tag struct {
	Python   string
	ABI      string
	Platform string
}

func (t Tag) String() string {
	return t.Python + "-" + t.ABI + "-" + t.Platform
}

// Pure is the tag of a pure-Python distribution with no ABI or platform
// requirements; it is what `setup.py bdist_wheel` emits for a package with
// no extension modules.
var Pure = Tag{Python: "py3", ABI: "none", Platform: "any"}
