// Package protocol defines the contracts for pluggable action handlers.
package protocol

import (
	"context"
	"log/slog"

	"github.com/calheira/conveyor/pkg/models"
)

// Action performs one node's effect. It may suspend on I/O and signals
// failure by returning an error; any error is fatal to the whole execution.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error)
}

// ActionFactory creates action instances for one node type and describes the
// type to the registry.
type ActionFactory interface {
	// Create instantiates an action for a node with the given configuration.
	Create(ctx context.Context, id string, config map[string]any) (Action, error)

	// ID returns the node type key this factory serves.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node type does.
	Description() string

	// Schema returns the JSON schema for the node configuration.
	Schema() map[string]any
}
