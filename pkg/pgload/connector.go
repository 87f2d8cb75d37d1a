package pgload

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, Cloud SQL dialer).
type Connector interface {
	// Connect opens a single dedicated connection.
	// The caller must Close it when done.
	Connect(ctx context.Context) (Conn, error)
}

// ConnectorFactory builds the Connector matching a target's auth method.
type ConnectorFactory func(*Target) (Connector, error)

// Conn is the one connection a direct executor call owns.
type Conn interface {
	// ExecScript submits sql as one simple-protocol query, which may hold several
	// statements. It returns the command tags of the statements that completed,
	// in order, followed by the first error. The server does not run statements
	// after a failing one.
	ExecScript(ctx context.Context, sql string) ([]pgconn.CommandTag, error)

	// Close terminates the connection. An open transaction is rolled back by the server.
	Close(ctx context.Context) error
}

// PasswordProvider yields the password handed to external clients.
// For token-based auth methods this is a freshly minted token.
type PasswordProvider interface {
	Password(ctx context.Context) (string, error)
}

// PasswordProviderFactory builds the PasswordProvider matching a target's auth method.
type PasswordProviderFactory func(*Target) (PasswordProvider, error)
