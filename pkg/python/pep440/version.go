// Copyright Claudio Mattera 2026.
//
// Distributed under the MIT License.

// Package pep440 implements the PEP 440 version scheme: parsing with
// normalization, canonical rendering, and total ordering.
//
// https://peps.python.org/pep-0440/
package pep440

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// Version is a local version identifier; for versions without a local label
// the Local slice is simply empty.
type Version = LocalVersion

// PublicVersion is a public version identifier, separated into its five
// segments:
//
//	[N!]N(.N)*[{a|b|rc}N][.postN][.devN]
type PublicVersion struct {
	// Epoch segment: “N!”
	Epoch int
	// Release segment: “N(.N)*”
	Release []int
	// Pre-release segment: “{a|b|rc}N”
	Pre *PreRelease
	// Post-release segment: “.postN”
	Post *int
	// Development release segment: “.devN”
	Dev *int
}

// PreRelease is a pre-release phase letter (“a”, “b”, or “rc”, after
// normalization) and its number.
type PreRelease struct {
	L string
	N int
}

// LocalVersion is a public version identifier plus a local version label
// (“+ubuntu.1”).  Each dot-separated local segment is either numeric or
// lexical, which matters for ordering.
type LocalVersion struct {
	PublicVersion
	Local []intstr.IntOrString
}

// IsFinal reports whether the version consists solely of an epoch and a
// release segment.
func (ver PublicVersion) IsFinal() bool {
	return ver.Pre == nil && ver.Post == nil && ver.Dev == nil
}

func (ver LocalVersion) IsFinal() bool {
	return ver.PublicVersion.IsFinal() && len(ver.Local) == 0
}

func (ver PublicVersion) releaseSegment(n int) int {
	if n < len(ver.Release) {
		return ver.Release[n]
	}
	return 0
}

// Major returns the first release segment; missing segments read as zero.
func (ver PublicVersion) Major() int { return ver.releaseSegment(0) }

// Minor returns the second release segment; missing segments read as zero.
func (ver PublicVersion) Minor() int { return ver.releaseSegment(1) }

// Micro returns the third release segment; missing segments read as zero.
func (ver PublicVersion) Micro() int { return ver.releaseSegment(2) }

func (ver PublicVersion) writeTo(ret *strings.Builder) {
	if ver.Epoch > 0 {
		fmt.Fprintf(ret, "%d!", ver.Epoch)
	}
	if len(ver.Release) == 0 {
		panic("invalid version: no release segments")
	}
	fmt.Fprintf(ret, "%d", ver.Release[0])
	for _, segment := range ver.Release[1:] {
		fmt.Fprintf(ret, ".%d", segment)
	}
	if ver.Pre != nil {
		fmt.Fprintf(ret, "%s%d", ver.Pre.L, ver.Pre.N)
	}
	if ver.Post != nil {
		fmt.Fprintf(ret, ".post%d", *ver.Post)
	}
	if ver.Dev != nil {
		fmt.Fprintf(ret, ".dev%d", *ver.Dev)
	}
}

// String implements fmt.Stringer, rendering the canonical form of an
// already-normalized version.
func (ver PublicVersion) String() string {
	var ret strings.Builder
	ver.writeTo(&ret)
	return ret.String()
}

func (ver LocalVersion) String() string {
	var ret strings.Builder
	ver.PublicVersion.writeTo(&ret)
	sep := "+"
	for _, local := range ver.Local {
		ret.WriteString(sep)
		ret.WriteString(local.String())
		sep = "."
	}
	return ret.String()
}

// Ordering follows the packaging library's comparison key: within one
// release segment, dev-only releases sort lowest, then pre-releases (a < b
// < rc, which is plain lexicographic on the normalized letters), then the
// final release, then post-releases.  A dev segment on a pre- or
// post-release sorts before the corresponding non-dev version.

const (
	negInf = -1 // sorts before any present segment
	posInf = 1  // sorts after any present segment
)

// cmpOptional compares two optional numeric segments given the rank that an
// absent segment takes (negInf or posInf).
func cmpOptional(a, b *int, absent int) int {
	rank := func(p *int) int {
		if p == nil {
			return absent
		}
		return 0
	}
	if d := rank(a) - rank(b); d != 0 {
		return d
	}
	if a == nil {
		return 0
	}
	return *a - *b
}

func cmpPre(a, b PublicVersion) int {
	// A dev release with no pre-release segment sorts before any
	// pre-release of the same release segment.
	rank := func(v PublicVersion) int {
		switch {
		case v.Pre == nil && v.Post == nil && v.Dev != nil:
			return negInf
		case v.Pre == nil:
			return posInf
		default:
			return 0
		}
	}
	if d := rank(a) - rank(b); d != 0 {
		return d
	}
	if a.Pre == nil || b.Pre == nil {
		return 0
	}
	if d := strings.Compare(a.Pre.L, b.Pre.L); d != 0 {
		return d
	}
	return a.Pre.N - b.Pre.N
}

// Cmp returns a number < 0 if version 'a' is less than version 'b', > 0 if
// 'a' is greater than 'b', or 0 if they are equal; only the sign is
// meaningful.
func (a PublicVersion) Cmp(b PublicVersion) int {
	if d := a.Epoch - b.Epoch; d != 0 {
		return d
	}
	for i := 0; i < len(a.Release) || i < len(b.Release); i++ {
		if d := a.releaseSegment(i) - b.releaseSegment(i); d != 0 {
			return d
		}
	}
	if d := cmpPre(a, b); d != 0 {
		return d
	}
	if d := cmpOptional(a.Post, b.Post, negInf); d != 0 {
		return d
	}
	return cmpOptional(a.Dev, b.Dev, posInf)
}

// Local version ordering: segments compare pairwise; numeric segments
// compare numerically and sort after lexical segments; a version with more
// segments sorts after one that is a strict prefix of it.
func cmpLocalSegment(a, b *intstr.IntOrString) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch {
	case a.Type == intstr.Int && b.Type == intstr.Int:
		return int(a.IntVal - b.IntVal)
	case a.Type == intstr.String && b.Type == intstr.String:
		return strings.Compare(a.StrVal, b.StrVal)
	case a.Type == intstr.Int:
		return 1
	default:
		return -1
	}
}

func (a LocalVersion) Cmp(b LocalVersion) int {
	if d := a.PublicVersion.Cmp(b.PublicVersion); d != 0 {
		return d
	}
	for i := 0; i < len(a.Local) || i < len(b.Local); i++ {
		var aSeg, bSeg *intstr.IntOrString
		if i < len(a.Local) {
			aSeg = &(a.Local[i])
		}
		if i < len(b.Local) {
			bSeg = &(b.Local[i])
		}
		if d := cmpLocalSegment(aSeg, bSeg); d != 0 {
			return d
		}
	}
	return 0
}
