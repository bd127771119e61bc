// Package transform provides a data transformation action handler driven by
// template expressions.
package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/template"
)

type Action struct {
	id         string
	expression string
}

func NewAction(id string, config map[string]any) (*Action, error) {
	expression, ok := config["expression"].(string)
	if !ok || expression == "" {
		return nil, errors.New("missing required field 'expression'")
	}

	return &Action{
		id:         id,
		expression: expression,
	}, nil
}

// Execute renders the configured expression against the execution context
// and returns the coerced result as the node's output.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("module", "transform_action", "node_id", a.id)
	logger.DebugContext(ctx, "Executing transform action")

	result, err := template.RenderWithContext(a.expression, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	return result, nil
}
