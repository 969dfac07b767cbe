// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package cliutil_test

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/cliutil"
)

func TestWrap(t *testing.T) {
	t.Parallel()
	type testcase struct {
		Indent   int
		Width    int
		Input    string
		Expected string
	}
	testcases := map[string]testcase{
		"no-wrapping": {
			Indent:   0,
			Width:    0,
			Input:    "one two three four five",
			Expected: "one two three four five",
		},
		"plain": {
			Indent:   0,
			Width:    20,
			Input:    "one two three four five",
			Expected: "one two three\nfour five",
		},
		"indented": {
			Indent:   2,
			Width:    20,
			Input:    "one two three four five",
			Expected: "one two three\n  four five",
		},
		"paragraphs": {
			Indent:   0,
			Width:    80,
			Input:    "first paragraph\n\nsecond paragraph",
			Expected: "first paragraph\n\nsecond paragraph",
		},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			actual := cliutil.WrapIndent(tc.Indent, tc.Width, tc.Input)
			assert.Equal(t, tc.Expected, actual)
		})
	}
}

//nolint:paralleltest // can't use .Parallel() with .Setenv()
func TestHelpTemplate(t *testing.T) {
	t.Setenv("COLUMNS", "80")
	noopRunE := func(_ *cobra.Command, _ []string) error {
		return nil
	}
	cmd := &cobra.Command{
		Use:   "frobnicate [flags]",
		Short: "One line description of program, no period",
		Long: "Longer description of program.  This is a paragraph.  " +
			"Because it is a paragraph, it may be quite long and " +
			"may need to be word-wrapped.",
		RunE: noopRunE,
	}
	cmd.Flags().BoolP("bar", "b", false, "Barzooble the baz")
	cmd.AddCommand(&cobra.Command{
		Use:   "twiddle",
		Short: "Twiddle the frobnicator",
		RunE:  noopRunE,
	})
	cmd.SetHelpTemplate(cliutil.HelpTemplate)

	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	help := out.String()
	assert.True(t, strings.HasPrefix(help, "Usage: frobnicate [flags]\n"))
	assert.Contains(t, help, "One line description of program, no period\n")
	assert.Contains(t, help, "Available Commands:\n")
	assert.Contains(t, help, "twiddle")
	assert.Contains(t, help, "Flags:\n")
	assert.Contains(t, help, "--bar")
	assert.Contains(t, help,
		"Use \"frobnicate [command] --help\" for more information about a command.\n")
	for _, line := range strings.Split(help, "\n") {
		assert.LessOrEqual(t, len(line), 80)
	}
}
