// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package cliutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	cobra.AddTemplateFunc("getTerminalWidth", GetTerminalWidth)
	cobra.AddTemplateFunc("wrap", Wrap)
	cobra.AddTemplateFunc("wrapIndent", WrapIndent)
	cobra.AddTemplateFunc("add", func(args ...int) int {
		ret := 0
		for _, arg := range args {
			ret += arg
		}
		return ret
	})
}

const HelpTemplate = `Usage: {{ .UseLine }}

{{- /* Short help text ---------------------------------------------------- */}}
{{- if .Short }}
{{ .Short }}
{{- end }}

{{- /* Long help text ----------------------------------------------------- */}}
{{- if .Long }}

{{ .Long | wrap getTerminalWidth | trimTrailingWhitespaces }}
{{- end }}

{{- /* Aliases ------------------------------------------------------------ */}}
{{- if .Aliases }}

Aliases:
  {{ .NameAndAliases }}
{{- end }}

{{- /* Examples ----------------------------------------------------------- */}}
{{- if .HasExample }}

Examples:
{{ .Example }}
{{- end }}

{{- /* Subcommands -------------------------------------------------------- */}}
{{- if .HasAvailableSubCommands }}

Available Commands:
{{- range .Commands}}
  {{- if (or .IsAvailableCommand (eq .Name "help")) }}
    {{- "\n" }}  {{ rpad .Name .NamePadding }}   {{ .Short | wrapIndent (add .NamePadding 5) getTerminalWidth }}
  {{- end }}
{{- end }}
{{- end }}

{{- /* Local Flags -------------------------------------------------------- */}}
{{- if .HasAvailableLocalFlags }}

Flags:
{{ getTerminalWidth | .LocalFlags.FlagUsagesWrapped | trimTrailingWhitespaces }}
{{- end }}

{{- /* Global flags ------------------------------------------------------- */}}
{{- if .HasAvailableInheritedFlags }}

Global Flags:
{{ getTerminalWidth | .InheritedFlags.FlagUsagesWrapped | trimTrailingWhitespaces }}
{{- end }}

{{- /* Help footer -------------------------------------------------------- */}}
{{- if .HasAvailableSubCommands }}

Use "{{ .CommandPath }} [command] --help" for more information about a command.
{{- end}}
`

// GetTerminalWidth returns the width that help text should wrap to.
func GetTerminalWidth() int {
	// Obey COLUMNS if the shell or the user sets it.
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		return cols
	}

	// Otherwise detect the size of stdout.
	if cols, _, err := term.GetSize(1); err == nil {
		return cols
	}
	if term.IsTerminal(1) {
		return 80
	}

	// Not a terminal at all; 0 means "don't wrap".
	return 0
}

// Wrap wraps the string s to a maximum width w.  Pass w == 0 to do no
// wrapping.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// WrapIndent wraps the string s to a maximum width w with a leading indent
// of i spaces on every line but the first (the first line's indent is
// assumed to have been emitted by the caller).  Pass w == 0 to do no
// wrapping.
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(indent, width int, s string) string {
	if width <= 0 {
		return s
	}
	// Leave a little slop so a short word doesn't end up alone on a line.
	limit := width - 5
	if limit <= indent {
		limit = indent + 1
	}

	var out strings.Builder
	for i, paragraph := range strings.Split(s, "\n") {
		if i > 0 {
			out.WriteString("\n")
			out.WriteString(strings.Repeat(" ", indent))
		}
		col := indent
		for j, word := range strings.Fields(paragraph) {
			switch {
			case j == 0:
				// nothing
			case col+1+len(word) > limit:
				out.WriteString("\n")
				out.WriteString(strings.Repeat(" ", indent))
				col = indent
			default:
				out.WriteString(" ")
				col++
			}
			out.WriteString(word)
			col += len(word)
		}
	}
	return out.String()
}
