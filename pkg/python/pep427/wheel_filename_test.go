// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package pep427_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep425"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/python/pep427"
	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/testutil"
)

func TestEscape(t *testing.T) {
	t.Parallel()
	testcases := map[string]string{
		"foo-bar":                            "foo_bar",
		"temperature-ds18s20-stanley-driver": "temperature_ds18s20_stanley_driver",
		"plain":                              "plain",
		"has--runs":                          "has_runs",
		"dotted.name":                        "dotted.name",
		"spaces and-dashes":                  "spaces_and_dashes",
	}
	for in, exp := range testcases {
		assert.Equal(t, exp, pep427.Escape(in))
	}
}

func TestEscapeQuick(t *testing.T) {
	t.Parallel()
	// Escaping is idempotent and only ever emits [A-Za-z0-9._].
	re := regexp.MustCompile(`^[A-Za-z0-9._]*$`)
	testutil.QuickCheck(t,
		func(in string) bool {
			out := pep427.Escape(in)
			return re.MatchString(out) && pep427.Escape(out) == out
		},
		testutil.QuickConfig{},
		[]interface{}{"foo-bar"},
		[]interface{}{"--"},
		[]interface{}{""})
}

func TestParseFilename(t *testing.T) {
	t.Parallel()

	t.Run("simple", func(t *testing.T) {
		t.Parallel()
		parsed, err := pep427.ParseFilename("foo_bar-2.0.0-py3-none-any.whl")
		require.NoError(t, err)
		assert.Equal(t, "foo_bar", parsed.Distribution)
		assert.Equal(t, "2.0.0", parsed.Version.String())
		assert.Nil(t, parsed.BuildTag)
		assert.Equal(t, pep425.Pure, parsed.Tag)
	})

	t.Run("build-tag", func(t *testing.T) {
		t.Parallel()
		parsed, err := pep427.ParseFilename("distribution-1.0-1-py27-none-any.whl")
		require.NoError(t, err)
		require.NotNil(t, parsed.BuildTag)
		assert.Equal(t, 1, parsed.BuildTag.Int)
		assert.Equal(t, "py27", parsed.Tag.Python)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		for _, in := range []string{
			"",
			"foo_bar-2.0.0-py3-none-any.zip",
			"foo_bar-2.0.0-py3-none.whl",
			"foo_bar-not.a.version-py3-none-any.whl",
		} {
			_, err := pep427.ParseFilename(in)
			assert.Error(t, err, "input %q", in)
		}
	})
}

func TestBuildTagCmp(t *testing.T) {
	t.Parallel()
	tag := func(n int, s string) *pep427.BuildTag {
		return &pep427.BuildTag{Int: n, Str: s}
	}
	testcases := map[string]struct {
		a, b *pep427.BuildTag
		exp  int
	}{
		"both-nil":     {nil, nil, 0},
		"nil-first":    {nil, tag(1, ""), -1},
		"nil-second":   {tag(1, ""), nil, 1},
		"equal":        {tag(2, "b"), tag(2, "b"), 0},
		"numeric":      {tag(1, ""), tag(2, ""), -1},
		"lexical-tie":  {tag(1, "a"), tag(1, "b"), -1},
		"numeric-wins": {tag(2, "a"), tag(10, "z"), -8},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, tc.a.Cmp(tc.b))
			assert.Equal(t, -tc.exp, tc.b.Cmp(tc.a))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	for _, filename := range []string{
		"foo_bar-2.0.0-py3-none-any.whl",
		"temperature_ds18s20_stanley_driver-0.1.2-py3-none-any.whl",
		"distribution-1.0-1b-py27-none-any.whl",
	} {
		parsed, err := pep427.ParseFilename(filename)
		require.NoError(t, err)
		assert.Equal(t, filename, parsed.String())
	}
}
