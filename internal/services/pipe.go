package services

import (
	"context"

	"github.com/vvka-141/pgload/internal/files/filesystem"
	"github.com/vvka-141/pgload/internal/psql"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// ClientRunner runs one external client invocation.
type ClientRunner interface {
	Run(ctx context.Context, inv psql.Invocation) error
}

// PipeExecutor streams files to the server through an external client, one
// invocation per file. Files are not loaded atomically: each invocation
// commits on its own and files piped before a failure stay loaded.
type PipeExecutor struct {
	runner     ClientRunner
	passwords  pgload.PasswordProviderFactory
	fsProvider filesystem.FileSystemProvider
	logger     pgload.Logger
}

// NewPipeExecutor creates a PipeExecutor.
// Panics if any dependency is nil.
func NewPipeExecutor(
	runner ClientRunner,
	passwords pgload.PasswordProviderFactory,
	fsProvider filesystem.FileSystemProvider,
	logger pgload.Logger,
) *PipeExecutor {
	if runner == nil {
		panic("runner cannot be nil")
	}
	if passwords == nil {
		panic("passwords cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PipeExecutor{runner: runner, passwords: passwords, fsProvider: fsProvider, logger: logger}
}

// Execute pipes each file, in order, into stmt. The first failing file stops
// the chain with a *pgload.LoadError naming the file.
func (e *PipeExecutor) Execute(ctx context.Context, target *pgload.Target, stmt string, files []string) error {
	provider, err := e.passwords(target)
	if err != nil {
		return connectionFailure(err)
	}

	e.logger.Verbose("Remote pipe mode: %d file(s), each committed separately", len(files))

	for i, file := range files {
		if err := e.pipeFile(ctx, target, provider, stmt, file); err != nil {
			if i > 0 {
				e.logger.Verbose("%d file(s) piped before the failure remain loaded", i)
			}
			return err
		}
		e.logger.Verbose("Piped %s (%d/%d)", file, i+1, len(files))
	}
	return nil
}

func (e *PipeExecutor) pipeFile(ctx context.Context, target *pgload.Target, provider pgload.PasswordProvider, stmt, file string) error {
	password, err := provider.Password(ctx)
	if err != nil {
		return connectionFailure(err)
	}

	f, err := e.fsProvider.OpenFile(file)
	if err != nil {
		return fileFailure(file, err)
	}
	defer f.Close()

	err = e.runner.Run(ctx, psql.Invocation{
		Host:     target.Host,
		Port:     target.Port,
		Username: target.Username,
		Database: target.Database,
		Password: password,
		SSLMode:  target.SSLMode,
		AppName:  target.AppName,
		Command:  stmt,
		Stdin:    f,
	})
	if err != nil {
		return processFailure(stmt, file, err)
	}
	return nil
}
