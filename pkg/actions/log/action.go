// Package log provides a logging action handler with template support.
package log

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/template"
)

type Action struct {
	id      string
	message string
	level   string
}

func NewAction(id string, config map[string]any) (*Action, error) {
	message, ok := config["message"].(string)
	if !ok {
		return nil, errors.New("missing required field 'message'")
	}

	level := "info"
	if lvl, ok := config["level"].(string); ok {
		level = lvl
	}

	return &Action{
		id:      id,
		message: message,
		level:   level,
	}, nil
}

// Execute renders the configured message against the execution context and
// logs it at the configured level. The rendered message is returned as the
// node's output.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	rendered, err := template.RenderWithContext(a.message, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render log message template: %w", err)
	}

	message := fmt.Sprintf("%v", rendered)

	logger = logger.With("node_id", a.id, "node_type", "log")

	switch a.level {
	case "debug":
		logger.DebugContext(ctx, message)
	case "warn":
		logger.WarnContext(ctx, message)
	case "error":
		logger.ErrorContext(ctx, message)
	default:
		logger.InfoContext(ctx, message)
	}

	return map[string]any{
		"message": message,
		"level":   a.level,
	}, nil
}
