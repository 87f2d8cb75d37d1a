package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// maxIdentifierLength is PostgreSQL's NAMEDATALEN-1.
const maxIdentifierLength = 63

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Settings are the serialization parameters shared by every load.
type Settings struct {
	Delimiter byte
	Quote     byte
	Escape    byte
	Null      string
}

// DefaultSettings returns the event file format: tab separated, with quote
// and escape set to the control bytes 0x01 and 0x02 so that no byte of the
// encoded event data is ever interpreted as framing.
func DefaultSettings() Settings {
	return Settings{
		Delimiter: '\t',
		Quote:     0x01,
		Escape:    0x02,
		Null:      "",
	}
}

// Builder renders statements for one Settings value.
type Builder struct {
	settings Settings
	options  string
}

// New creates a Builder. Panics if quote and escape collide with each other or
// with the delimiter, since such settings make every COPY ambiguous.
func New(settings Settings) *Builder {
	if settings.Quote == settings.Escape || settings.Quote == settings.Delimiter || settings.Escape == settings.Delimiter {
		panic("statement: delimiter, quote and escape must be distinct bytes")
	}
	return &Builder{
		settings: settings,
		options: fmt.Sprintf("WITH CSV ESCAPE E'%s' QUOTE E'%s' DELIMITER E'%s' NULL %s",
			escapeByte(settings.Escape),
			escapeByte(settings.Quote),
			escapeByte(settings.Delimiter),
			quoteLiteral(settings.Null),
		),
	}
}

// Settings returns the builder's serialization parameters.
func (b *Builder) Settings() Settings {
	return b.settings
}

// CopyFromFile renders a COPY reading a file the server can open locally.
func (b *Builder) CopyFromFile(table, path string) (string, error) {
	if err := ValidateTable(table); err != nil {
		return "", err
	}
	return fmt.Sprintf("COPY %s FROM %s %s;", table, quoteLiteral(path), b.options), nil
}

// CopyFromFiles renders one CopyFromFile statement per path, in order.
func (b *Builder) CopyFromFiles(table string, paths []string) ([]string, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	stmts := make([]string, 0, len(paths))
	for _, p := range paths {
		stmts = append(stmts, fmt.Sprintf("COPY %s FROM %s %s;", table, quoteLiteral(p), b.options))
	}
	return stmts, nil
}

// CopyFromStdin renders a COPY reading the client's standard input.
func (b *Builder) CopyFromStdin(table string) (string, error) {
	if err := ValidateTable(table); err != nil {
		return "", err
	}
	return fmt.Sprintf("COPY %s FROM STDIN %s;", table, b.options), nil
}

// Transaction frames statements in BEGIN/COMMIT as one submittable unit.
func Transaction(stmts []string) string {
	parts := make([]string, 0, len(stmts)+2)
	parts = append(parts, TransactionBegin)
	parts = append(parts, stmts...)
	parts = append(parts, TransactionCommit)
	return strings.Join(parts, "\n")
}

const (
	TransactionBegin  = "BEGIN;"
	TransactionCommit = "COMMIT;"
)

// Maintenance renders the post-load statement for table, or "" when neither
// step is requested. VACUUM and ANALYZE combine into VACUUM ANALYZE.
func Maintenance(table string, vacuum, analyze bool) (string, error) {
	if err := ValidateTable(table); err != nil {
		return "", err
	}
	var keyword string
	switch {
	case vacuum && analyze:
		keyword = "VACUUM ANALYZE"
	case vacuum:
		keyword = "VACUUM"
	case analyze:
		keyword = "ANALYZE"
	default:
		return "", nil
	}
	return fmt.Sprintf("%s %s;", keyword, table), nil
}

// ValidateTable accepts "table" or "schema.table" where each part is an
// unquoted PostgreSQL identifier.
func ValidateTable(table string) error {
	if table == "" {
		return fmt.Errorf("table name is empty: %w", pgload.ErrInvalidTable)
	}
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return fmt.Errorf("table name %q has too many parts: %w", table, pgload.ErrInvalidTable)
	}
	for _, p := range parts {
		if len(p) > maxIdentifierLength || !identifierPattern.MatchString(p) {
			return fmt.Errorf("table name %q is not a plain identifier: %w", table, pgload.ErrInvalidTable)
		}
	}
	return nil
}

// quoteLiteral renders s as a standard SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeByte renders c for use inside an E'' literal.
func escapeByte(c byte) string {
	switch {
	case c == '\t':
		return `\t`
	case c == '\\':
		return `\\`
	case c == '\'':
		return `\'`
	case c < 0x20 || c >= 0x7f:
		return fmt.Sprintf(`\x%02x`, c)
	default:
		return string(c)
	}
}
