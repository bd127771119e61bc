package models

// ExecutionContext is the read view of a running execution handed to action
// handlers and expression rendering. Context maps node id to that node's
// output, seeded with the definition's variables and the caller's input.
type ExecutionContext struct {
	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	NodeID      string         `json:"node_id,omitempty"`
	Context     map[string]any `json:"context"`
}
