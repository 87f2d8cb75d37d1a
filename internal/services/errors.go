package services

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/vvka-141/pgload/internal/db"
	"github.com/vvka-141/pgload/internal/psql"
	"github.com/vvka-141/pgload/pkg/pgload"
)

func connectionFailure(err error) *pgload.LoadError {
	return &pgload.LoadError{
		Kind:     pgload.KindConnection,
		Category: db.ErrorCategory(err),
		Message:  err.Error(),
		Err:      err,
	}
}

func statementFailure(stmt string, err error) *pgload.LoadError {
	return &pgload.LoadError{
		Kind:      pgload.KindStatementExecution,
		Statement: stmt,
		Category:  db.ErrorCategory(err),
		Message:   db.ErrorMessage(err),
		Err:       err,
	}
}

func processFailure(stmt, file string, err error) *pgload.LoadError {
	le := &pgload.LoadError{
		Kind:      pgload.KindExternalProcess,
		Statement: stmt,
		File:      file,
		Category:  "ClientError",
		Message:   err.Error(),
		Err:       err,
	}

	var pe *psql.ProcessError
	if errors.As(err, &pe) {
		le.Category = pe.Reason()
		if msg := strings.TrimSpace(pe.Stderr); msg != "" {
			le.Message = msg
		} else {
			le.Message = pe.Err.Error()
		}
	}
	return le
}

func fileFailure(file string, err error) *pgload.LoadError {
	category := "IOError"
	switch {
	case errors.Is(err, fs.ErrNotExist):
		category = "NotFound"
	case errors.Is(err, fs.ErrPermission):
		category = "PermissionDenied"
	}
	return &pgload.LoadError{
		Kind:     pgload.KindDirectoryUnreadable,
		File:     file,
		Category: category,
		Message:  err.Error(),
		Err:      err,
	}
}
