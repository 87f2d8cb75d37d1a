package logging

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette - keeping it minimal and accessible.
var (
	ColorSuccess = lipgloss.Color("34")  // Green
	ColorError   = lipgloss.Color("196") // Red
	ColorMuted   = lipgloss.Color("240") // Dark gray
)

// SymbolCheck marks a completed load.
const SymbolCheck = "✓"

type styles struct {
	verbose lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *styles {
	return &styles{
		verbose: r.NewStyle().Foreground(ColorMuted),
		success: r.NewStyle().Foreground(ColorSuccess),
		err:     r.NewStyle().Foreground(ColorError).Bold(true),
	}
}

// ColorEnabled reports whether output to f should be styled.
//
// Returns false if:
//   - NO_COLOR is set (https://no-color.org)
//   - CI is set (common CI/CD convention)
//   - f is not a terminal (redirected to a file or pipe)
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
