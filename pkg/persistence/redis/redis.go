// Package redis provides Redis persistence for workflows and executions.
// Records are stored as JSON documents under namespaced keys.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	workflowKeyPrefix  = "conveyor:workflows:"
	executionKeyPrefix = "conveyor:executions:"
)

// Persistence implements the persistence layer for Redis.
type Persistence struct {
	client        *redis.Client
	logger        *slog.Logger
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects to Redis using a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client:        client,
		logger:        logger,
		workflowRepo:  &WorkflowRepository{client: client},
		executionRepo: &ExecutionRepository{client: client},
	}, nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

// HealthCheck verifies the Redis connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the Redis client.
func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

// WorkflowRepository handles workflow definition storage in Redis.
type WorkflowRepository struct {
	client *redis.Client
}

func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	err = wr.client.Set(ctx, workflowKeyPrefix+workflow.ID, data, 0).Err()
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := wr.client.Get(ctx, workflowKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows := make([]*models.Workflow, 0)

	iter := wr.client.Scan(ctx, 0, workflowKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := wr.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", iter.Val(), err)
		}

		var workflow models.Workflow
		if err := json.Unmarshal(data, &workflow); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", iter.Val(), err)
		}

		workflows = append(workflows, &workflow)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan workflows: %w", err)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	err := wr.client.Del(ctx, workflowKeyPrefix+id).Err()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

// ExecutionRepository handles execution record storage in Redis.
type ExecutionRepository struct {
	client *redis.Client
}

func (er *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	err = er.client.Set(ctx, executionKeyPrefix+execution.ID, data, 0).Err()
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	data, err := er.client.Get(ctx, executionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	var execution models.Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return &execution, nil
}

func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	executions := make([]*models.Execution, 0)

	iter := er.client.Scan(ctx, 0, executionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := er.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load execution %s: %w", iter.Val(), err)
		}

		var execution models.Execution
		if err := json.Unmarshal(data, &execution); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution %s: %w", iter.Val(), err)
		}

		if workflowID != "" && execution.WorkflowID != workflowID {
			continue
		}

		executions = append(executions, &execution)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan executions: %w", err)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}
