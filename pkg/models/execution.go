package models

import (
	"maps"
	"slices"
	"time"
)

// ExecutionStatus represents the lifecycle state of an execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// TracePhase is the phase recorded by a trace entry.
type TracePhase string

const (
	TracePhaseStarted   TracePhase = "started"
	TracePhaseCompleted TracePhase = "completed"
	TracePhaseFailed    TracePhase = "failed"
	TracePhaseSkipped   TracePhase = "skipped"
)

// TraceEntry records one node phase transition. Entries from concurrent
// branches may interleave by wall-clock time; consumers must key on node id
// and phase for causal ordering.
type TraceEntry struct {
	NodeID    string     `json:"node_id"`
	Phase     TracePhase `json:"phase"`
	Timestamp time.Time  `json:"timestamp"`
	Branch    string     `json:"branch,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ExecutionError failure reasons.
const (
	ErrorReasonHandler          = "handler_error"
	ErrorReasonDeadlineExceeded = "deadline_exceeded"
	ErrorReasonCancelled        = "cancelled"
)

// ExecutionError is the terminal error of a failed execution.
type ExecutionError struct {
	NodeID  string `json:"node_id,omitempty"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *ExecutionError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}

	return e.Message
}

// Execution is the mutable, single-run-owned record of one workflow run. It
// is owned exclusively by the engine while running and handed to the caller
// read-only once terminal.
type Execution struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflow_id"`
	Status     ExecutionStatus `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Context    map[string]any  `json:"context"`
	Trace      []TraceEntry    `json:"trace"`
	Visited    []string        `json:"visited"`
	Error      *ExecutionError `json:"error,omitempty"`
}

// Terminal reports whether the execution left the running state.
func (e *Execution) Terminal() bool {
	return e.Status != ExecutionStatusRunning
}

// HasVisited reports whether a node already executed in this run.
func (e *Execution) HasVisited(nodeID string) bool {
	return slices.Contains(e.Visited, nodeID)
}

// TraceFor returns the trace entries recorded for one node.
func (e *Execution) TraceFor(nodeID string) []TraceEntry {
	entries := make([]TraceEntry, 0)

	for _, entry := range e.Trace {
		if entry.NodeID == nodeID {
			entries = append(entries, entry)
		}
	}

	return entries
}

// Clone returns a copy safe to hand to callers while the engine still owns
// the original. Trace and visited slices are copied; context is copied one
// level deep, node outputs themselves are treated as immutable.
func (e *Execution) Clone() *Execution {
	clone := *e
	clone.Context = maps.Clone(e.Context)
	clone.Trace = slices.Clone(e.Trace)
	clone.Visited = slices.Clone(e.Visited)

	if e.Error != nil {
		errCopy := *e.Error
		clone.Error = &errCopy
	}

	if e.FinishedAt != nil {
		ts := *e.FinishedAt
		clone.FinishedAt = &ts
	}

	return &clone
}
