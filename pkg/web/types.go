// Package web provides the REST API over workflow definitions and
// executions.
package web

import "github.com/calheira/conveyor/pkg/models"

// CreateWorkflowRequest represents the request body for defining a workflow.
type CreateWorkflowRequest struct {
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Trigger     *models.Trigger `json:"trigger"     validate:"required"`
	Nodes       []*models.Node  `json:"nodes"       validate:"required,min=1"`
	Edges       []*models.Edge  `json:"edges"`
	Variables   map[string]any  `json:"variables,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// RunWorkflowRequest represents the request body for starting an execution.
type RunWorkflowRequest struct {
	Input map[string]any `json:"input,omitempty"`
}

// RunWorkflowResponse acknowledges an accepted execution.
type RunWorkflowResponse struct {
	ExecutionID string `json:"execution_id"`
}

// CancelResponse reports the outcome of a cancellation request.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

func (r *CreateWorkflowRequest) toWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Trigger:     r.Trigger,
		Nodes:       r.Nodes,
		Edges:       r.Edges,
		Variables:   r.Variables,
		Metadata:    r.Metadata,
	}
}
