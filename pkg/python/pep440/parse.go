// Copyright Claudio Mattera 2026.
//
// Distributed under the MIT License.

package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// reVersion is PEP 440's "Appendix B" permissive pattern; inputs accepted by
// it may still need the normalizations applied by parseVersion below
// (lowercase phase letters, canonical spellings, implicit zeroes).
var reVersion = regexp.MustCompile(`(?i)^\s*` + regexp.MustCompile(`\s+`).ReplaceAllString(`
		v?
		(?:
		    (?:(?P<epoch>[0-9]+)!)?
		    (?P<release>[0-9]+(?:\.[0-9]+)*)
		    (?P<pre>
		        [-_\.]?
		        (?P<pre_l>(a|b|c|rc|alpha|beta|pre|preview))
		        [-_\.]?
		        (?P<pre_n>[0-9]+)?
		    )?
		    (?P<post>
		        (?:-(?P<post_n1>[0-9]+))
		        |
		        (?:
		            [-_\.]?
		            (?P<post_l>post|rev|r)
		            [-_\.]?
		            (?P<post_n2>[0-9]+)?
		        )
		    )?
		    (?P<dev>
		        [-_\.]?
		        (?P<dev_l>dev)
		        [-_\.]?
		        (?P<dev_n>[0-9]+)?
		    )?
		)
		(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?
	`, ``) + `\s*$`)

// ParseVersion parses a string to a Version object, performing
// normalization.
func ParseVersion(str string) (*Version, error) {
	ver, err := parseVersion(str)
	if err != nil {
		return nil, fmt.Errorf("pep440.ParseVersion: %w", err)
	}
	return ver, nil
}

// canonicalPhase maps the alternate pre-release spellings that the
// permissive pattern accepts to their normalized forms.
var canonicalPhase = map[string]string{
	"a": "a", "alpha": "a",
	"b": "b", "beta": "b",
	"rc": "rc", "c": "rc", "pre": "rc", "preview": "rc",
}

// phaseNumber parses a phase's number, with a missing number normalizing to
// an implicit zero.
func phaseNumber(str string) (int, error) {
	if str == "" {
		return 0, nil
	}
	return strconv.Atoi(str)
}

func parseVersion(str string) (*Version, error) {
	match := reVersion.FindStringSubmatch(str)
	if match == nil {
		return nil, fmt.Errorf("invalid version: %q", str)
	}
	group := func(name string) string {
		return match[reVersion.SubexpIndex(name)]
	}

	var ver Version
	var err error

	if epoch := group("epoch"); epoch != "" {
		if ver.Epoch, err = strconv.Atoi(epoch); err != nil {
			return nil, err
		}
	}

	for _, segStr := range strings.Split(group("release"), ".") {
		segInt, err := strconv.Atoi(segStr)
		if err != nil {
			return nil, err
		}
		ver.Release = append(ver.Release, segInt)
	}

	if group("pre") != "" {
		n, err := phaseNumber(group("pre_n"))
		if err != nil {
			return nil, fmt.Errorf("pre-release: %w", err)
		}
		ver.Pre = &PreRelease{
			L: canonicalPhase[strings.ToLower(group("pre_l"))],
			N: n,
		}
	}

	if group("post") != "" {
		n, err := phaseNumber(group("post_n1") + group("post_n2"))
		if err != nil {
			return nil, fmt.Errorf("post-release: %w", err)
		}
		ver.Post = &n
	}

	if group("dev") != "" {
		n, err := phaseNumber(group("dev_n"))
		if err != nil {
			return nil, fmt.Errorf("dev: %w", err)
		}
		ver.Dev = &n
	}

	localParts := strings.FieldsFunc(group("local"), func(r rune) bool {
		return strings.ContainsRune("-_.", r)
	})
	for _, part := range localParts {
		ver.Local = append(ver.Local, intstr.Parse(strings.ToLower(part)))
	}

	return &ver, nil
}
