package services

import (
	"context"

	"github.com/vvka-141/pgload/internal/statement"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// MaintenanceStatement returns the post-load statement for table: ANALYZE
// unless skip has "analyze", prefixed by VACUUM when include has "vacuum".
// It returns "" when no step remains.
func MaintenanceStatement(table string, skip, include pgload.StepSet) (string, error) {
	return statement.Maintenance(table, include.Has(pgload.StepVacuum), !skip.Has(pgload.StepAnalyze))
}

// PostProcessor runs maintenance after a successful load, as its own
// statement outside the load transaction.
type PostProcessor struct {
	executor *DirectExecutor
	logger   pgload.Logger
}

// NewPostProcessor creates a PostProcessor.
// Panics if executor or logger is nil.
func NewPostProcessor(executor *DirectExecutor, logger pgload.Logger) *PostProcessor {
	if executor == nil {
		panic("executor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PostProcessor{executor: executor, logger: logger}
}

// Run executes the maintenance statement for target, if any.
func (p *PostProcessor) Run(ctx context.Context, target *pgload.Target, skip, include pgload.StepSet) error {
	stmt, err := MaintenanceStatement(target.Table, skip, include)
	if err != nil {
		return err
	}
	if stmt == "" {
		p.logger.Verbose("No post-processing steps selected")
		return nil
	}

	p.logger.Verbose("Post-processing: %s", stmt)
	return p.executor.Execute(ctx, target, []string{stmt})
}
