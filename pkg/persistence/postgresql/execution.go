package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/persistence"
)

// ExecutionRepository handles execution record storage in PostgreSQL.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Save upserts an execution record.
func (er *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	contextJSON, err := json.Marshal(execution.Context)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("marshal context: %w", err))
	}

	traceJSON, err := json.Marshal(execution.Trace)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("marshal trace: %w", err))
	}

	visitedJSON, err := json.Marshal(execution.Visited)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("marshal visited: %w", err))
	}

	var errorJSON []byte
	if execution.Error != nil {
		errorJSON, err = json.Marshal(execution.Error)
		if err != nil {
			return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("marshal error: %w", err))
		}
	}

	query := `
		INSERT INTO executions (id, workflow_id, status, started_at, finished_at, context, trace, visited, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			finished_at = EXCLUDED.finished_at,
			context = EXCLUDED.context,
			trace = EXCLUDED.trace,
			visited = EXCLUDED.visited,
			error = EXCLUDED.error
	`

	_, err = er.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.Status,
		execution.StartedAt,
		execution.FinishedAt,
		contextJSON,
		traceJSON,
		visitedJSON,
		errorJSON,
	)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

// GetByID retrieves an execution record by id.
func (er *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `
		SELECT id, workflow_id, status, started_at, finished_at, context, trace, visited, error
		FROM executions
		WHERE id = $1
	`

	execution, err := scanExecution(er.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return execution, nil
}

// ListByWorkflow returns execution records, optionally filtered by workflow
// id, sorted by start time.
func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	query := `
		SELECT id, workflow_id, status, started_at, finished_at, context, trace, visited, error
		FROM executions
		WHERE $1 = '' OR workflow_id = $1
		ORDER BY started_at ASC
	`

	rows, err := er.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	return executions, nil
}

func scanExecution(row rowScanner) (*models.Execution, error) {
	var (
		execution   models.Execution
		finishedAt  sql.NullTime
		contextJSON []byte
		traceJSON   []byte
		visitedJSON []byte
		errorJSON   []byte
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.Status,
		&execution.StartedAt,
		&finishedAt,
		&contextJSON,
		&traceJSON,
		&visitedJSON,
		&errorJSON,
	)
	if err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		ts := finishedAt.Time
		execution.FinishedAt = &ts
	}

	if err := json.Unmarshal(contextJSON, &execution.Context); err != nil {
		return nil, fmt.Errorf("unmarshal context: %w", err)
	}

	if err := json.Unmarshal(traceJSON, &execution.Trace); err != nil {
		return nil, fmt.Errorf("unmarshal trace: %w", err)
	}

	if err := json.Unmarshal(visitedJSON, &execution.Visited); err != nil {
		return nil, fmt.Errorf("unmarshal visited: %w", err)
	}

	if errorJSON != nil {
		if err := json.Unmarshal(errorJSON, &execution.Error); err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
		}
	}

	return &execution, nil
}
