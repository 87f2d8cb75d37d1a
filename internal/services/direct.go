package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvka-141/pgload/internal/statement"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// DirectExecutor submits statements over one dedicated connection per call.
// Thread-Safety: safe for concurrent calls; each call owns its connection.
type DirectExecutor struct {
	connectorFactory pgload.ConnectorFactory
	logger           pgload.Logger
}

// NewDirectExecutor creates a DirectExecutor.
// Panics if connectorFactory or logger is nil.
func NewDirectExecutor(connectorFactory pgload.ConnectorFactory, logger pgload.Logger) *DirectExecutor {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &DirectExecutor{connectorFactory: connectorFactory, logger: logger}
}

// Execute submits each statement on its own, in order. The first failure
// stops the chain and is returned as a *pgload.LoadError naming that statement.
func (e *DirectExecutor) Execute(ctx context.Context, target *pgload.Target, stmts []string) error {
	return e.withConn(ctx, target, func(conn pgload.Conn) error {
		for _, stmt := range stmts {
			e.logger.Verbose("Executing: %s", pgload.Preview(stmt))
			if _, err := conn.ExecScript(ctx, stmt); err != nil {
				return statementFailure(stmt, err)
			}
		}
		return nil
	})
}

// ExecuteTransaction frames stmts in BEGIN/COMMIT and submits them as one
// query. On failure the completed command tags locate the failing statement,
// the server skips every later one and the connection is closed with the
// transaction uncommitted.
func (e *DirectExecutor) ExecuteTransaction(ctx context.Context, target *pgload.Target, stmts []string) error {
	script := statement.Transaction(stmts)

	return e.withConn(ctx, target, func(conn pgload.Conn) error {
		e.logger.Verbose("Submitting transaction with %d statement(s)", len(stmts))

		tags, err := conn.ExecScript(ctx, script)
		if err != nil {
			failed := failedTransactionStatement(stmts, len(tags))
			e.logger.Verbose("Transaction aborted after %d of %d statement(s)", completedInner(len(tags), len(stmts)), len(stmts))
			return statementFailure(failed, err)
		}

		if n := len(tags); n > 0 && tags[n-1].String() == "ROLLBACK" {
			return statementFailure(statement.TransactionCommit, errors.New("transaction was rolled back by the server"))
		}
		return nil
	})
}

// failedTransactionStatement maps the number of completed command tags of
// BEGIN; stmts...; COMMIT; to the statement that failed.
func failedTransactionStatement(stmts []string, completed int) string {
	switch {
	case completed <= 0:
		return statement.TransactionBegin
	case completed <= len(stmts):
		return stmts[completed-1]
	default:
		return statement.TransactionCommit
	}
}

func completedInner(completed, total int) int {
	n := completed - 1
	if n < 0 {
		return 0
	}
	if n > total {
		return total
	}
	return n
}

// withConn runs fn on a fresh connection that is closed on every exit path.
func (e *DirectExecutor) withConn(ctx context.Context, target *pgload.Target, fn func(pgload.Conn) error) error {
	connector, err := e.connectorFactory(target)
	if err != nil {
		return connectionFailure(fmt.Errorf("failed to create connector: %w", err))
	}

	conn, err := connector.Connect(ctx)
	if err != nil {
		return connectionFailure(err)
	}
	defer func() {
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil {
			e.logger.Verbose("Closing connection: %v", cerr)
		}
	}()

	return fn(conn)
}
