package models

// Node types with engine-level traversal behavior. They are resolved by the
// engine itself, not through the action registry.
const (
	NodeTypeConditional = "conditional"
	NodeTypeLoop        = "loop"
)

// Edge tags. Untagged edges always follow their source node's completion.
const (
	EdgeTagTrue  = "true"  // conditional branch taken when the condition holds
	EdgeTagFalse = "false" // conditional branch taken otherwise
	EdgeTagBody  = "body"  // entry into a loop node's body subgraph
	EdgeTagDone  = "done"  // continuation after a loop node finishes
	EdgeTagLoop  = "loop"  // optional re-entry edge back into a loop node
)

// Node is a single typed step in the workflow graph. Type is a string key
// resolved against the action registry at run time, except for the reserved
// conditional and loop behaviors.
type Node struct {
	ID      string         `json:"id"      validate:"required"`
	Type    string         `json:"type"    validate:"required"`
	Name    string         `json:"name"`
	Config  map[string]any `json:"config"`
	Enabled bool           `json:"enabled"`
}

// Edge is a directed, optionally tagged connection between two nodes. From
// may also reference the workflow trigger.
type Edge struct {
	ID   string `json:"id"`
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
	Tag  string `json:"tag,omitempty"`
}
