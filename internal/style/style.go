// Package style provides shared lipgloss styles for shipmate terminal output.
package style

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Shared styles for operator-facing output.
var (
	// Bold is for headings and emphasized values.
	Bold = lipgloss.NewStyle().Bold(true)

	// Dim is for secondary information (paths, hints).
	Dim = lipgloss.NewStyle().Faint(true)

	// Success is for positive confirmations (green check marks).
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// Warning is for degraded-but-continuing conditions.
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	// Error is for fatal error messages.
	Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// Accent is for the ship log tail marker.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes SGR escape sequences from rendered output.
// Used by tests to assert on content regardless of the color profile.
func StripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// DisableColors forces plain output, for non-TTY or NO_COLOR environments.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
