package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// StandardConnector implements the Connector interface for standard
// username/password authentication. A failed attempt is not retried.
type StandardConnector struct {
	target *pgload.Target
}

// NewStandardConnector creates a new StandardConnector for the given target.
func NewStandardConnector(target *pgload.Target) *StandardConnector {
	return &StandardConnector{target: target}
}

// Connect opens one dedicated connection using standard authentication.
func (c *StandardConnector) Connect(ctx context.Context) (pgload.Conn, error) {
	return connect(ctx, c.target, c.target.Password)
}

// connect opens a connection to target authenticating with password.
func connect(ctx context.Context, target *pgload.Target, password string) (pgload.Conn, error) {
	withPassword := *target
	withPassword.Password = password

	connConfig, err := pgx.ParseConfig(BuildConnectionString(&withPassword))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, target.Host, target.Port, target.Database)
	}
	return NewConnAdapter(conn, nil), nil
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the target's AuthMethod. It satisfies pgload.ConnectorFactory.
func NewConnector(target *pgload.Target) (pgload.Connector, error) {
	switch target.AuthMethod {
	case pgload.AuthMethodStandard:
		return NewStandardConnector(target), nil
	case pgload.AuthMethodAWSIAM:
		provider, err := newAWSTokenProvider(target)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(target, provider, "AWS IAM"), nil
	case pgload.AuthMethodGoogleIAM:
		return newGoogleConnector(target)
	case pgload.AuthMethodAzureEntraID:
		provider, err := newAzureTokenProvider(target)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(target, provider, "Azure"), nil
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", target.AuthMethod, pgload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username
  - Expired IAM token (check the clock and the cloud credentials)

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

The loader does not create databases or tables. Create them first:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached in postgresql.conf
  - Another load still holds its connection

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
