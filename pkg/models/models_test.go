package models_test

import (
	"testing"
	"time"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:      "wf-1",
		Name:    "sample",
		Trigger: &models.Trigger{ID: "trigger-1", Type: models.TriggerTypeWebhook},
		Nodes: []*models.Node{
			{ID: "check", Type: models.NodeTypeConditional, Enabled: true},
			{ID: "yes", Type: "log", Enabled: true},
			{ID: "no", Type: "log", Enabled: true},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "trigger-1", To: "check"},
			{ID: "e2", From: "check", To: "yes", Tag: models.EdgeTagTrue},
			{ID: "e3", From: "check", To: "no", Tag: models.EdgeTagFalse},
		},
	}
}

func TestWorkflowNodeByID(t *testing.T) {
	wf := sampleWorkflow()

	node, found := wf.NodeByID("check")
	require.True(t, found)
	assert.Equal(t, models.NodeTypeConditional, node.Type)

	_, found = wf.NodeByID("missing")
	assert.False(t, found)
}

func TestWorkflowEdgesFrom(t *testing.T) {
	wf := sampleWorkflow()

	edges := wf.EdgesFrom("check")
	require.Len(t, edges, 2)
	assert.Equal(t, "yes", edges[0].To)
	assert.Equal(t, "no", edges[1].To)

	assert.Empty(t, wf.EdgesFrom("yes"))
}

func TestWorkflowEdgesFromTrigger(t *testing.T) {
	wf := sampleWorkflow()

	edges := wf.EdgesFrom("trigger-1")
	require.Len(t, edges, 1)
	assert.Equal(t, "check", edges[0].To)
}

func TestWorkflowEdgesTo(t *testing.T) {
	wf := sampleWorkflow()

	edges := wf.EdgesTo("yes")
	require.Len(t, edges, 1)
	assert.Equal(t, models.EdgeTagTrue, edges[0].Tag)

	assert.Empty(t, wf.EdgesTo("trigger-1"))
}

func TestExecutionTerminal(t *testing.T) {
	execution := &models.Execution{Status: models.ExecutionStatusRunning}
	assert.False(t, execution.Terminal())

	for _, status := range []models.ExecutionStatus{
		models.ExecutionStatusCompleted,
		models.ExecutionStatusFailed,
		models.ExecutionStatusCancelled,
	} {
		execution.Status = status
		assert.True(t, execution.Terminal(), string(status))
	}
}

func TestExecutionHasVisited(t *testing.T) {
	execution := &models.Execution{Visited: []string{"a", "b"}}

	assert.True(t, execution.HasVisited("a"))
	assert.False(t, execution.HasVisited("c"))
}

func TestExecutionTraceFor(t *testing.T) {
	execution := &models.Execution{
		Trace: []models.TraceEntry{
			{NodeID: "a", Phase: models.TracePhaseStarted},
			{NodeID: "b", Phase: models.TracePhaseStarted},
			{NodeID: "a", Phase: models.TracePhaseCompleted},
		},
	}

	entries := execution.TraceFor("a")
	require.Len(t, entries, 2)
	assert.Equal(t, models.TracePhaseStarted, entries[0].Phase)
	assert.Equal(t, models.TracePhaseCompleted, entries[1].Phase)

	assert.Empty(t, execution.TraceFor("c"))
}

func TestExecutionCloneIsIndependent(t *testing.T) {
	finished := time.Now().UTC()
	execution := &models.Execution{
		ID:         "exec-1",
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusFailed,
		FinishedAt: &finished,
		Context:    map[string]any{"a": "out"},
		Trace:      []models.TraceEntry{{NodeID: "a", Phase: models.TracePhaseFailed}},
		Visited:    []string{"a"},
		Error:      &models.ExecutionError{NodeID: "a", Reason: models.ErrorReasonHandler, Message: "boom"},
	}

	clone := execution.Clone()
	require.Equal(t, execution, clone)

	execution.Context["b"] = "late"
	execution.Trace = append(execution.Trace, models.TraceEntry{NodeID: "b"})
	execution.Visited = append(execution.Visited, "b")
	execution.Error.Message = "changed"

	assert.NotContains(t, clone.Context, "b")
	assert.Len(t, clone.Trace, 1)
	assert.Len(t, clone.Visited, 1)
	assert.Equal(t, "boom", clone.Error.Message)
}

func TestExecutionErrorMessage(t *testing.T) {
	withNode := &models.ExecutionError{NodeID: "a", Reason: models.ErrorReasonHandler, Message: "boom"}
	assert.Equal(t, "node a: boom", withNode.Error())

	bare := &models.ExecutionError{Reason: models.ErrorReasonDeadlineExceeded, Message: "deadline exceeded"}
	assert.Equal(t, "deadline exceeded", bare.Error())
}
