package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// ConsoleLogger writes log messages to a writer, stderr by default.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	out     io.Writer
	verbose bool
	styles  *styles // nil means plain output
	mu      sync.Mutex
}

var _ pgload.Logger = (*ConsoleLogger)(nil)

// NewConsoleLogger creates a ConsoleLogger writing to stderr.
// If verbose is true, Verbose() calls will produce output.
// If verbose is false, Verbose() calls are no-ops.
// Output is styled only when stderr is an interactive terminal.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose, ColorEnabled(os.Stderr))
}

// NewConsoleLoggerTo creates a ConsoleLogger writing to out.
func NewConsoleLoggerTo(out io.Writer, verbose, color bool) *ConsoleLogger {
	l := &ConsoleLogger{out: out, verbose: verbose}
	if color {
		l.styles = newStyles(lipgloss.NewRenderer(out))
	}
	return l
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write(l.prefix("[VERBOSE] ", func(s *styles) lipgloss.Style { return s.verbose }), format, args)
}

// Info logs informational messages about normal operations.
// Lines starting with the success mark are highlighted.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	msg := render(format, args)
	if l.styles != nil && strings.HasPrefix(msg, SymbolCheck) {
		msg = l.styles.success.Render(msg)
	}
	l.write("", msg, nil)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(l.prefix("[ERROR] ", func(s *styles) lipgloss.Style { return s.err }), format, args)
}

func (l *ConsoleLogger) prefix(p string, pick func(*styles) lipgloss.Style) string {
	if l.styles == nil {
		return p
	}
	return pick(l.styles).Render(strings.TrimSpace(p)) + " "
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	line := prefix + render(format, args) + "\n"
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, line)
}

// render formats like Printf, except that a message without args is
// printed verbatim so literal % signs survive.
func render(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
