package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/pgload/internal/statement"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// EventFileScanner discovers the event files of a load.
type EventFileScanner interface {
	EventFiles(dir string) ([]string, error)
}

// LoadService implements pgload.Loader:
// validate, discover files, plan, execute the plan, post-process.
// Thread-Safety: safe for concurrent Load calls when its dependencies are.
type LoadService struct {
	scanner  EventFileScanner
	builder  *statement.Builder
	detector ModeDetector
	direct   *DirectExecutor
	pipe     *PipeExecutor
	post     *PostProcessor
	logger   pgload.Logger
	newRunID func() string
}

var _ pgload.Loader = (*LoadService)(nil)

// NewLoadService creates a LoadService with all dependencies injected.
// Panics on nil dependencies.
func NewLoadService(
	scanner EventFileScanner,
	builder *statement.Builder,
	direct *DirectExecutor,
	pipe *PipeExecutor,
	logger pgload.Logger,
) *LoadService {
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if builder == nil {
		panic("builder cannot be nil")
	}
	if direct == nil {
		panic("direct executor cannot be nil")
	}
	if pipe == nil {
		panic("pipe executor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoadService{
		scanner:  scanner,
		builder:  builder,
		detector: DefaultModeDetector,
		direct:   direct,
		pipe:     pipe,
		post:     NewPostProcessor(direct, logger),
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// WithModeDetector replaces the detector used for targets in ModeAuto.
func (s *LoadService) WithModeDetector(detector ModeDetector) *LoadService {
	if detector == nil {
		panic("detector cannot be nil")
	}
	s.detector = detector
	return s
}

// Plan validates req, discovers its files and resolves the strategy without
// connecting to the target.
func (s *LoadService) Plan(req pgload.LoadRequest) (Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	files, err := s.scanner.EventFiles(req.EventsDir)
	if err != nil {
		return nil, err
	}

	return PlanLoad(&req.Target, files, s.builder, s.detector)
}

// Load bulk-loads the event files of req.EventsDir into req.Target and then
// runs post-processing. A directory without event files is a successful
// empty load; post-processing still runs.
func (s *LoadService) Load(ctx context.Context, req pgload.LoadRequest) error {
	runID := s.newRunID()
	if req.Target.AppName == "" {
		req.Target.AppName = fmt.Sprintf("%s-%s", pgload.DefaultAppName, shortID(runID))
	}
	target := &req.Target

	s.logger.Info("Loading events into %s (PostgreSQL database)...", target.DisplayName())
	s.logger.Verbose("Run %s: events %s, table %s", runID, req.EventsDir, target.Table)
	start := time.Now()

	plan, err := s.Plan(req)
	if err != nil {
		return err
	}
	s.logger.Verbose("Mode %s with %d event file(s)", plan.Mode(), plan.FileCount())

	if plan.FileCount() == 0 {
		s.logger.Info("No event files matching %s under %s", pgload.EventFilePattern, req.EventsDir)
	} else if err := s.execute(ctx, target, plan); err != nil {
		return err
	}

	if err := s.post.Run(ctx, target, req.SkipSteps, req.IncludeSteps); err != nil {
		return err
	}

	s.logger.Info("✓ Loaded %d event file(s) into %s in %v", plan.FileCount(), target.DisplayName(), time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *LoadService) execute(ctx context.Context, target *pgload.Target, plan Plan) error {
	switch p := plan.(type) {
	case *DirectPlan:
		return s.direct.ExecuteTransaction(ctx, target, p.Statements)
	case *RemotePipePlan:
		return s.pipe.Execute(ctx, target, p.Statement, p.Files)
	default:
		return fmt.Errorf("unsupported plan %T: %w", plan, pgload.ErrInvalidConfig)
	}
}

// LoadAll loads dir into each target in order and stops at the first failure.
func (s *LoadService) LoadAll(ctx context.Context, dir string, targets []pgload.Target, skip, include pgload.StepSet) error {
	if len(targets) == 0 {
		return fmt.Errorf("no targets to load into: %w", pgload.ErrInvalidConfig)
	}
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.Load(ctx, pgload.LoadRequest{
			EventsDir:    dir,
			Target:       target,
			SkipSteps:    skip,
			IncludeSteps: include,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
