package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// ConnAdapter adapts *pgx.Conn to implement the pgload.Conn interface.
// This decouples the executors from pgx connection types.
//
// Thread-Safety: NOT safe for concurrent use (pgx.Conn is not).
type ConnAdapter struct {
	conn    *pgx.Conn
	onClose func() error
}

// NewConnAdapter wraps conn. onClose, if not nil, runs after the connection
// is closed and releases resources tied to it (e.g. a Cloud SQL dialer).
func NewConnAdapter(conn *pgx.Conn, onClose func() error) pgload.Conn {
	return &ConnAdapter{conn: conn, onClose: onClose}
}

// Conn returns the underlying pgx connection.
func (a *ConnAdapter) Conn() *pgx.Conn {
	return a.conn
}

// ExecScript runs sql through the simple query protocol so that a
// multi-statement script travels to the server as one message.
func (a *ConnAdapter) ExecScript(ctx context.Context, sql string) ([]pgconn.CommandTag, error) {
	results, err := a.conn.PgConn().Exec(ctx, sql).ReadAll()

	tags := make([]pgconn.CommandTag, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return tags, r.Err
		}
		tags = append(tags, r.CommandTag)
	}
	return tags, err
}

// Close terminates the connection and runs the release hook.
func (a *ConnAdapter) Close(ctx context.Context) error {
	err := a.conn.Close(ctx)
	if a.onClose != nil {
		err = errors.Join(err, a.onClose())
	}
	return err
}
