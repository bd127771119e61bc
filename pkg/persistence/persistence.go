// Package persistence provides the data storage abstraction for workflow
// definitions and execution records.
package persistence

import (
	"context"

	"github.com/calheira/conveyor/pkg/models"
)

// Persistence is the storage backend contract. Implementations exist for
// the file system, PostgreSQL and Redis; the backend is selected by the URL
// scheme at startup.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores immutable workflow definitions.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.Workflow) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context) ([]*models.Workflow, error)
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution records. Records are written when a
// run starts and overwritten with the terminal state when it finishes.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)
}
