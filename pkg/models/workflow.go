// Package models defines the core domain models for graph-based workflow execution.
package models

import "time"

// Workflow is an immutable description of a workflow: a trigger, a set of
// typed nodes and the tagged edges connecting them. Once validated it is
// never mutated; a new version requires a new id.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Trigger     *Trigger       `json:"trigger"     validate:"required"`
	Nodes       []*Node        `json:"nodes"       validate:"required,min=1,dive,required"`
	Edges       []*Edge        `json:"edges"       validate:"dive,required"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NodeByID returns the node with the given id, if present.
func (w *Workflow) NodeByID(id string) (*Node, bool) {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// EdgesFrom returns the outgoing edges of a node (or of the trigger) in
// declaration order.
func (w *Workflow) EdgesFrom(id string) []*Edge {
	edges := make([]*Edge, 0)

	for _, edge := range w.Edges {
		if edge.From == id {
			edges = append(edges, edge)
		}
	}

	return edges
}

// EdgesTo returns the incoming edges of a node in declaration order.
func (w *Workflow) EdgesTo(id string) []*Edge {
	edges := make([]*Edge, 0)

	for _, edge := range w.Edges {
		if edge.To == id {
			edges = append(edges, edge)
		}
	}

	return edges
}
