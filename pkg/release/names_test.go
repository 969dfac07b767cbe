// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package release_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/release"
)

func TestVersionFromTag(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		tag    string
		exp    string
		expErr bool
	}{
		"release":           {tag: "v1.2.3", exp: "1.2.3"},
		"driver-version":    {tag: "v0.1.2", exp: "0.1.2"},
		"pre-release":       {tag: "v1.0rc1", exp: "1.0rc1"},
		"normalized":        {tag: "v1.0-beta2", exp: "1.0b2"},
		"no-prefix":         {tag: "1.2.3", expErr: true},
		"not-a-version":     {tag: "vnext", expErr: true},
		"empty":             {tag: "", expErr: true},
		"prefix-only":       {tag: "v", expErr: true},
		"branch-like-ref":   {tag: "master", expErr: true},
		"whitespace-inside": {tag: "v1 . 2", expErr: true},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			ver, err := release.VersionFromTag(tc.tag)
			if tc.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, ver.String())
		})
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	t.Run("hyphenated-project", func(t *testing.T) {
		t.Parallel()
		ver, err := release.VersionFromTag("v2.0.0")
		require.NoError(t, err)
		names := release.Names("foo-bar", *ver)
		assert.Equal(t, "foo_bar-2.0.0-py3-none-any.whl", names.Wheel)
		assert.Equal(t, "foo-bar-2.0.0.tar.gz", names.Tarball)
		assert.Equal(t, "python3-foo-bar_2.0.0-1_all.deb", names.Deb)
	})

	t.Run("this-project", func(t *testing.T) {
		t.Parallel()
		ver, err := release.VersionFromTag("v0.1.2")
		require.NoError(t, err)
		names := release.Names("temperature-ds18s20-stanley-driver", *ver)
		assert.Equal(t,
			"temperature_ds18s20_stanley_driver-0.1.2-py3-none-any.whl",
			names.Wheel)
		assert.Equal(t,
			"temperature-ds18s20-stanley-driver-0.1.2.tar.gz",
			names.Tarball)
		assert.Equal(t,
			"python3-temperature-ds18s20-stanley-driver_0.1.2-1_all.deb",
			names.Deb)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		ver, err := release.VersionFromTag("v2.0.0")
		require.NoError(t, err)
		assert.Equal(t, release.Names("foo-bar", *ver), release.Names("foo-bar", *ver))
	})
}
