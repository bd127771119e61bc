// Package models provides the structured error types returned by
// workflow-definition validation.
package models

import (
	"fmt"
	"strings"
)

// DanglingEdgeError indicates a node references a successor id that does not
// exist in the same definition.
type DanglingEdgeError struct {
	NodeID    string
	MissingID string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("node %q references unknown node %q", e.NodeID, e.MissingID)
}

// CycleError indicates the successor graph reachable from the trigger
// contains a cycle outside a sanctioned loop re-entry edge.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "workflow graph contains a cycle: " + strings.Join(e.Path, " -> ")
}

// UnknownNodeTypeError indicates a node's declared type does not resolve in
// the action registry.
type UnknownNodeTypeError struct {
	NodeID string
	Type   string
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("node %q has unregistered type %q", e.NodeID, e.Type)
}

// InvalidTriggerError indicates the trigger descriptor is missing or
// malformed.
type InvalidTriggerError struct {
	Reason string
}

func (e *InvalidTriggerError) Error() string {
	return "invalid trigger: " + e.Reason
}

// NodeConfigError indicates a node's configuration failed its declared
// schema or a reserved behavior's config contract.
type NodeConfigError struct {
	NodeID string
	Reason string
}

func (e *NodeConfigError) Error() string {
	return fmt.Sprintf("invalid config for node %q: %s", e.NodeID, e.Reason)
}
