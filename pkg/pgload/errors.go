package pgload

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := loader.Load(ctx, req)
//	if errors.Is(err, pgload.ErrStatementFailed) {
//	    // A COPY statement was rejected; the transaction was not committed
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidTable indicates the target table name is empty or not a plain identifier.
	ErrInvalidTable = errors.New("invalid table name")

	// ErrDirectoryUnreadable indicates the events directory could not be accessed.
	ErrDirectoryUnreadable = errors.New("events directory unreadable")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrStatementFailed indicates a statement was rejected by the server.
	ErrStatementFailed = errors.New("statement execution failed")

	// ErrExternalProcessFailed indicates the client process exited non-zero or could not start.
	ErrExternalProcessFailed = errors.New("external process failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ErrorKind classifies a LoadError.
type ErrorKind int

const (
	KindDirectoryUnreadable ErrorKind = iota + 1
	KindConnection
	KindStatementExecution
	KindExternalProcess
)

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindDirectoryUnreadable:
		return "DirectoryUnreadable"
	case KindConnection:
		return "ConnectionFailure"
	case KindStatementExecution:
		return "StatementExecutionError"
	case KindExternalProcess:
		return "ExternalProcessFailure"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindDirectoryUnreadable:
		return ErrDirectoryUnreadable
	case KindConnection:
		return ErrConnectionFailed
	case KindStatementExecution:
		return ErrStatementFailed
	case KindExternalProcess:
		return ErrExternalProcessFailed
	default:
		return nil
	}
}

// LoadError is the single structured failure value of a load. It names the
// statement (or file, for pipe loads) that failed, the error category and the
// underlying message. There is no partial-success form.
type LoadError struct {
	Kind      ErrorKind
	Statement string // failing statement text, empty for directory errors
	File      string // file being piped (remote pipe) or the unreadable directory
	Category  string // SQLSTATE condition class, process exit status, or Go error type
	Message   string
	Err       error // underlying cause, may be nil
}

func (e *LoadError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindDirectoryUnreadable:
		fmt.Fprintf(&b, "%s error reading %s: %s", e.Category, e.File, e.Message)
		return b.String()
	case KindConnection:
		fmt.Fprintf(&b, "%s error connecting: %s", e.Category, e.Message)
		return b.String()
	}

	fmt.Fprintf(&b, "%s error executing %s", e.Category, Preview(e.Statement))
	if e.File != "" {
		fmt.Fprintf(&b, " for %s", e.File)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	return b.String()
}

// Unwrap exposes the cause for errors.As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the kind's sentinel so callers can test with errors.Is.
func (e *LoadError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Preview shortens s to at most MaxErrorPreviewLength bytes for display,
// cutting on a rune boundary.
func Preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxErrorPreviewLength {
		return s
	}
	cut := MaxErrorPreviewLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidTable), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrDirectoryUnreadable):
		return ExitDirectoryUnreadable
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrStatementFailed):
		return ExitStatementFailed
	case errors.Is(err, ErrExternalProcessFailed):
		return ExitProcessFailed
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognises cobra's argument and flag parsing messages.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"flag needs an argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
