// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package release derives the project's release artifacts from a version
// tag: the deterministic artifact filenames, the source tarball, and the
// externally-built wheel and Debian packages.
package release

import (
	"fmt"
	"strings"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep440"
)

// VersionFromTag derives the release version from a version-control tag.
// The tag convention is a "v" prefix followed by a PEP 440 version; the
// prefix is stripped and the remainder normalized, so tag "v1.2.3" yields
// version "1.2.3".
func VersionFromTag(tag string) (*pep440.Version, error) {
	if !strings.HasPrefix(tag, "v") {
		return nil, fmt.Errorf("tag %q does not follow the version-tag convention (leading %q)", tag, "v")
	}
	ver, err := pep440.ParseVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", tag, err)
	}
	return ver, nil
}
