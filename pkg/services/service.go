package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/persistence"
	"github.com/calheira/conveyor/pkg/registry"
	"github.com/calheira/conveyor/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service exposes the workflow operations backed by a persistence layer and
// the execution engine. It tracks in-flight runs so Get and Cancel can reach
// them; everything else lives in storage.
type Service struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	executor    *workflow.Executor
	validate    *validator.Validate
	logger      *slog.Logger

	mu      sync.Mutex
	running map[string]*workflow.Run
}

func NewService(p persistence.Persistence, reg *registry.Registry, executor *workflow.Executor, logger *slog.Logger) *Service {
	return &Service{
		persistence: p,
		registry:    reg,
		executor:    executor,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With(slog.String("module", "workflow_service")),
		running:     make(map[string]*workflow.Run),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Service) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Define validates a workflow definition and stores it. A valid definition
// gets an id (if absent) and becomes immutable; defining again under the
// same id replaces the whole definition.
func (s *Service) Define(ctx context.Context, wf *models.Workflow) (*models.Workflow, error) {
	if wf.ID == "" {
		wf.ID = uuid.New().String()
	}

	if err := s.validate.Struct(wf); err != nil {
		return nil, &DefinitionError{WorkflowID: wf.ID, Err: err}
	}

	if err := workflow.Validate(wf, s.registry); err != nil {
		return nil, &DefinitionError{WorkflowID: wf.ID, Err: err}
	}

	if err := s.persistence.WorkflowRepository().Save(ctx, wf); err != nil {
		return nil, err
	}

	s.logger.Info("Workflow defined",
		slog.String("workflow_id", wf.ID),
		slog.Int("nodes", len(wf.Nodes)),
		slog.Int("edges", len(wf.Edges)),
	)

	return wf, nil
}

// GetWorkflow retrieves a stored workflow definition.
func (s *Service) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	return s.persistence.WorkflowRepository().GetByID(ctx, id)
}

// ListWorkflows returns all stored workflow definitions.
func (s *Service) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	return s.persistence.WorkflowRepository().List(ctx)
}

// DeleteWorkflow removes a workflow definition. Past execution records are
// kept.
func (s *Service) DeleteWorkflow(ctx context.Context, id string) error {
	return s.persistence.WorkflowRepository().Delete(ctx, id)
}

// Run starts an execution of a workflow with the given trigger input and
// returns its execution id without waiting for completion. The run proceeds
// on its own goroutine; its terminal record is persisted when it finishes.
func (s *Service) Run(ctx context.Context, workflowID string, input map[string]any) (string, error) {
	wf, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return "", err
	}

	run := s.executor.NewRun(wf, input)

	s.mu.Lock()
	s.running[run.ID()] = run
	s.mu.Unlock()

	if err := s.persistence.ExecutionRepository().Save(ctx, run.Snapshot()); err != nil {
		s.mu.Lock()
		delete(s.running, run.ID())
		s.mu.Unlock()

		return "", err
	}

	go func() {
		// The run outlives the request that started it.
		final := run.Execute(context.Background())

		if err := s.persistence.ExecutionRepository().Save(context.Background(), final); err != nil {
			s.logger.Error("Failed to persist terminal execution",
				slog.String("execution_id", final.ID),
				slog.String("error", err.Error()),
			)
		}

		s.mu.Lock()
		delete(s.running, run.ID())
		s.mu.Unlock()
	}()

	return run.ID(), nil
}

// Get returns the state of an execution: a live snapshot while it runs, the
// stored record once terminal.
func (s *Service) Get(ctx context.Context, executionID string) (*models.Execution, error) {
	s.mu.Lock()
	run, live := s.running[executionID]
	s.mu.Unlock()

	if live {
		return run.Snapshot(), nil
	}

	return s.persistence.ExecutionRepository().GetByID(ctx, executionID)
}

// Cancel requests cooperative cancellation of a running execution. It
// returns false when the execution already reached a terminal status.
func (s *Service) Cancel(ctx context.Context, executionID string) (bool, error) {
	s.mu.Lock()
	run, live := s.running[executionID]
	s.mu.Unlock()

	if live {
		return run.Cancel(), nil
	}

	// Not in flight; confirm it exists at all.
	if _, err := s.persistence.ExecutionRepository().GetByID(ctx, executionID); err != nil {
		return false, err
	}

	return false, nil
}

// List returns execution records, optionally filtered by workflow id. Live
// runs are reported from their current snapshot rather than the stale
// stored record.
func (s *Service) List(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	stored, err := s.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, execution := range stored {
		if run, live := s.running[execution.ID]; live {
			stored[i] = run.Snapshot()
		}
	}

	return stored, nil
}
