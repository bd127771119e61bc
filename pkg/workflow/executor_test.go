package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/protocol"
	"github.com/calheira/conveyor/pkg/registry"
	"github.com/calheira/conveyor/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAction struct {
	fn func(ctx context.Context, executionCtx models.ExecutionContext) (any, error)
}

func (a stubAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, _ *slog.Logger) (any, error) {
	if a.fn == nil {
		return "ok", nil
	}

	return a.fn(ctx, executionCtx)
}

type stubFactory struct {
	id     string
	fn     func(ctx context.Context, executionCtx models.ExecutionContext) (any, error)
	schema map[string]any
}

func (f stubFactory) Create(_ context.Context, _ string, _ map[string]any) (protocol.Action, error) {
	return stubAction{fn: f.fn}, nil
}

func (f stubFactory) ID() string             { return f.id }
func (f stubFactory) Name() string           { return f.id }
func (f stubFactory) Description() string    { return f.id }
func (f stubFactory) Schema() map[string]any { return f.schema }

// recorder tracks which nodes ran and in which order.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) record(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = append(r.order, nodeID)
}

func (r *recorder) ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string{}, r.order...)
}

func (r *recorder) count(nodeID string) int {
	total := 0

	for _, id := range r.ran() {
		if id == nodeID {
			total++
		}
	}

	return total
}

// recordingFactory runs record on every execution and returns the node id.
func recordingFactory(rec *recorder) stubFactory {
	return stubFactory{
		id: "record",
		fn: func(_ context.Context, executionCtx models.ExecutionContext) (any, error) {
			rec.record(executionCtx.NodeID)

			return executionCtx.NodeID, nil
		},
	}
}

func executorWith(t *testing.T, factories ...protocol.ActionFactory) *Executor {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	for _, factory := range factories {
		reg.RegisterAction(factory)
	}

	return NewExecutor(reg, slog.Default())
}

func node(id, nodeType string, config map[string]any) *models.Node {
	return &models.Node{ID: id, Type: nodeType, Enabled: true, Config: config}
}

func edge(from, to, tag string) *models.Edge {
	return &models.Edge{ID: from + "->" + to, From: from, To: to, Tag: tag}
}

func graph(nodes []*models.Node, edges []*models.Edge) *models.Workflow {
	return &models.Workflow{
		ID:      "wf-test",
		Name:    "test workflow",
		Trigger: &models.Trigger{ID: "trigger", Type: models.TriggerTypeWebhook},
		Nodes:   nodes,
		Edges:   edges,
	}
}

func phases(execution *models.Execution, nodeID string) []models.TracePhase {
	entries := execution.TraceFor(nodeID)
	out := make([]models.TracePhase, 0, len(entries))

	for _, entry := range entries {
		out = append(out, entry.Phase)
	}

	return out
}

func TestExecuteLinearChain(t *testing.T) {
	rec := &recorder{}
	executor := executorWith(t, recordingFactory(rec))

	wf := graph(
		[]*models.Node{node("a", "record", nil), node("b", "record", nil), node("c", "record", nil)},
		[]*models.Edge{edge("trigger", "a", ""), edge("a", "b", ""), edge("b", "c", "")},
	)

	execution := executor.NewRun(wf, map[string]any{"seed": 1}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, []string{"a", "b", "c"}, rec.ran())
	assert.Equal(t, "a", execution.Context["a"])
	assert.NotNil(t, execution.FinishedAt)

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, []models.TracePhase{models.TracePhaseStarted, models.TracePhaseCompleted}, phases(execution, id))
	}
}

func TestExecuteSeedsContextInputWins(t *testing.T) {
	var seen map[string]any

	executor := executorWith(t, stubFactory{
		id: "peek",
		fn: func(_ context.Context, executionCtx models.ExecutionContext) (any, error) {
			seen = executionCtx.Context

			return nil, nil
		},
	})

	wf := graph(
		[]*models.Node{node("a", "peek", nil)},
		[]*models.Edge{edge("trigger", "a", "")},
	)
	wf.Variables = map[string]any{"region": "default", "retries": 3}

	execution := executor.NewRun(wf, map[string]any{"region": "east"}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "east", seen["region"])
	assert.Equal(t, 3, seen["retries"])
}

func TestExecuteDiamondJoinRunsJoinOnce(t *testing.T) {
	rec := &recorder{}

	var joinSeen map[string]any

	var mu sync.Mutex

	executor := executorWith(t,
		recordingFactory(rec),
		stubFactory{
			id: "join",
			fn: func(_ context.Context, executionCtx models.ExecutionContext) (any, error) {
				mu.Lock()
				defer mu.Unlock()

				rec.record(executionCtx.NodeID)
				joinSeen = executionCtx.Context

				return executionCtx.NodeID, nil
			},
		},
	)

	wf := graph(
		[]*models.Node{
			node("split", "record", nil),
			node("left", "record", nil),
			node("right", "record", nil),
			node("join", "join", nil),
		},
		[]*models.Edge{
			edge("trigger", "split", ""),
			edge("split", "left", ""),
			edge("split", "right", ""),
			edge("left", "join", ""),
			edge("right", "join", ""),
		},
	)

	execution := executor.NewRun(wf, nil).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, 1, rec.count("join"))

	ran := rec.ran()
	assert.Equal(t, "join", ran[len(ran)-1])
	assert.ElementsMatch(t, []string{"split", "left", "right", "join"}, execution.Visited)

	// The join starts only after both branches published their outputs.
	assert.Equal(t, "left", joinSeen["left"])
	assert.Equal(t, "right", joinSeen["right"])
}

func TestExecuteUnreachablePredecessorDoesNotStarveSuccessor(t *testing.T) {
	rec := &recorder{}
	executor := executorWith(t, recordingFactory(rec))

	// x has no path from the trigger; its edge into a must not hold a back.
	wf := graph(
		[]*models.Node{node("a", "record", nil), node("x", "record", nil)},
		[]*models.Edge{edge("trigger", "a", ""), edge("x", "a", "")},
	)

	execution := executor.NewRun(wf, nil).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, 1, rec.count("a"))
	assert.Empty(t, execution.TraceFor("x"))
	assert.ElementsMatch(t, []string{"a"}, execution.Visited)
}

func TestExecuteConditionalBranchExclusivity(t *testing.T) {
	rec := &recorder{}
	executor := executorWith(t, recordingFactory(rec))

	wf := graph(
		[]*models.Node{
			node("check", models.NodeTypeConditional, map[string]any{"condition": "{{ .context.flag }}"}),
			node("yes", "record", nil),
			node("no", "record", nil),
			node("after-no", "record", nil),
		},
		[]*models.Edge{
			edge("trigger", "check", ""),
			edge("check", "yes", models.EdgeTagTrue),
			edge("check", "no", models.EdgeTagFalse),
			edge("no", "after-no", ""),
		},
	)

	execution := executor.NewRun(wf, map[string]any{"flag": true}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, []string{"yes"}, rec.ran())

	// The untaken branch is pruned silently, down its whole chain.
	assert.Empty(t, execution.TraceFor("no"))
	assert.Empty(t, execution.TraceFor("after-no"))

	entries := execution.TraceFor("check")
	require.Len(t, entries, 2)
	assert.Equal(t, models.EdgeTagTrue, entries[1].Branch)
}

func TestExecuteConditionalUntaggedSuccessorNeverFires(t *testing.T) {
	rec := &recorder{}
	executor := executorWith(t, recordingFactory(rec))

	wf := graph(
		[]*models.Node{
			node("check", models.NodeTypeConditional, map[string]any{"condition": "{{ .context.flag }}"}),
			node("yes", "record", nil),
			node("always", "record", nil),
		},
		[]*models.Edge{
			edge("trigger", "check", ""),
			edge("check", "yes", models.EdgeTagTrue),
			edge("check", "always", ""),
		},
	)

	execution := executor.NewRun(wf, map[string]any{"flag": false}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)

	// A successor of a conditional runs only through its branch tag.
	assert.Zero(t, rec.count("always"))
	assert.Empty(t, execution.TraceFor("always"))
	assert.Empty(t, execution.TraceFor("yes"))
}

func TestExecuteConditionalNonBooleanFails(t *testing.T) {
	executor := executorWith(t)

	wf := graph(
		[]*models.Node{
			node("check", models.NodeTypeConditional, map[string]any{"condition": "{{ .context.flag }}"}),
		},
		[]*models.Edge{edge("trigger", "check", "")},
	)

	execution := executor.NewRun(wf, map[string]any{"flag": "maybe"}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusFailed, execution.Status)
	require.NotNil(t, execution.Error)
	assert.Equal(t, "check", execution.Error.NodeID)
	assert.Equal(t, models.ErrorReasonHandler, execution.Error.Reason)
}

func TestExecuteLoopOverCollection(t *testing.T) {
	executor := executorWith(t, stubFactory{
		id: "double",
		fn: func(_ context.Context, executionCtx models.ExecutionContext) (any, error) {
			value, _ := executionCtx.Context["item"].(float64)

			return value * 2, nil
		},
	})

	wf := graph(
		[]*models.Node{
			node("each", models.NodeTypeLoop, map[string]any{"items": "{{ json .context.values }}"}),
			node("body", "double", nil),
			node("after", "double", nil),
		},
		[]*models.Edge{
			edge("trigger", "each", ""),
			edge("each", "body", models.EdgeTagBody),
			edge("each", "after", models.EdgeTagDone),
		},
	)

	execution := executor.NewRun(wf, map[string]any{"values": []any{1.0, 2.0, 3.0}}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, []any{2.0, 4.0, 6.0}, execution.Context["each"])

	// One started/completed pair per iteration.
	assert.Len(t, execution.TraceFor("body"), 6)

	// The done edge fires only after the loop finishes.
	assert.Equal(t, []models.TracePhase{models.TracePhaseStarted, models.TracePhaseCompleted}, phases(execution, "after"))
}

func TestExecuteLoopCustomBinding(t *testing.T) {
	var bound []any

	var mu sync.Mutex

	executor := executorWith(t, stubFactory{
		id: "capture",
		fn: func(_ context.Context, executionCtx models.ExecutionContext) (any, error) {
			mu.Lock()
			defer mu.Unlock()

			bound = append(bound, executionCtx.Context["element"])

			return nil, nil
		},
	})

	wf := graph(
		[]*models.Node{
			node("each", models.NodeTypeLoop, map[string]any{
				"items": "{{ json .context.values }}",
				"as":    "element",
			}),
			node("body", "capture", nil),
		},
		[]*models.Edge{
			edge("trigger", "each", ""),
			edge("each", "body", models.EdgeTagBody),
		},
	)

	execution := executor.NewRun(wf, map[string]any{"values": []any{"x", "y"}}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, []any{"x", "y"}, bound)
}

func TestExecuteLoopTruncatesAtIterationBound(t *testing.T) {
	rec := &recorder{}
	executor := executorWith(t, recordingFactory(rec))

	values := make([]any, 10)
	for i := range values {
		values[i] = float64(i)
	}

	wf := graph(
		[]*models.Node{
			node("each", models.NodeTypeLoop, map[string]any{
				"items":          "{{ json .context.values }}",
				"max_iterations": 4.0,
			}),
			node("body", "record", nil),
		},
		[]*models.Edge{
			edge("trigger", "each", ""),
			edge("each", "body", models.EdgeTagBody),
		},
	)

	execution := executor.NewRun(wf, map[string]any{"values": values}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, 4, rec.count("body"))

	collected, ok := execution.Context["each"].([]any)
	require.True(t, ok)
	assert.Len(t, collected, 4)
}

func TestExecuteFailFast(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")

	executor := executorWith(t,
		recordingFactory(rec),
		stubFactory{
			id: "explode",
			fn: func(_ context.Context, _ models.ExecutionContext) (any, error) {
				return nil, boom
			},
		},
	)

	wf := graph(
		[]*models.Node{
			node("a", "record", nil),
			node("bad", "explode", nil),
			node("never", "record", nil),
		},
		[]*models.Edge{
			edge("trigger", "a", ""),
			edge("a", "bad", ""),
			edge("bad", "never", ""),
		},
	)

	execution := executor.NewRun(wf, nil).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusFailed, execution.Status)
	require.NotNil(t, execution.Error)
	assert.Equal(t, "bad", execution.Error.NodeID)
	assert.Equal(t, models.ErrorReasonHandler, execution.Error.Reason)
	assert.Contains(t, execution.Error.Message, "boom")

	assert.Equal(t, []string{"a"}, rec.ran())
	assert.Empty(t, execution.TraceFor("never"))

	entries := execution.TraceFor("bad")
	require.Len(t, entries, 2)
	assert.Equal(t, models.TracePhaseFailed, entries[1].Phase)
	assert.Contains(t, entries[1].Error, "boom")
}

func TestExecuteDisabledNodePassesThrough(t *testing.T) {
	rec := &recorder{}
	executor := executorWith(t, recordingFactory(rec))

	wf := graph(
		[]*models.Node{
			node("a", "record", nil),
			{ID: "off", Type: "record", Enabled: false},
			node("c", "record", nil),
		},
		[]*models.Edge{
			edge("trigger", "a", ""),
			edge("a", "off", ""),
			edge("off", "c", ""),
		},
	)

	execution := executor.NewRun(wf, nil).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, []string{"a", "c"}, rec.ran())
	assert.Equal(t, []models.TracePhase{models.TracePhaseSkipped}, phases(execution, "off"))
}

func TestExecuteCancelStopsScheduling(t *testing.T) {
	rec := &recorder{}
	started := make(chan struct{})
	release := make(chan struct{})

	executor := executorWith(t,
		recordingFactory(rec),
		stubFactory{
			id: "block",
			fn: func(_ context.Context, _ models.ExecutionContext) (any, error) {
				close(started)
				<-release

				return "done", nil
			},
		},
	)

	wf := graph(
		[]*models.Node{node("slow", "block", nil), node("never", "record", nil)},
		[]*models.Edge{edge("trigger", "slow", ""), edge("slow", "never", "")},
	)

	run := executor.NewRun(wf, nil)

	done := make(chan *models.Execution, 1)

	go func() {
		done <- run.Execute(context.Background())
	}()

	<-started
	assert.True(t, run.Cancel())
	close(release)

	execution := <-done

	require.Equal(t, models.ExecutionStatusCancelled, execution.Status)
	assert.Nil(t, execution.Error)
	assert.Empty(t, rec.ran())

	// The in-flight node finished; what follows never started.
	assert.Equal(t, []models.TracePhase{models.TracePhaseStarted, models.TracePhaseCompleted}, phases(execution, "slow"))
	assert.Empty(t, execution.TraceFor("never"))

	// Cancel is idempotent and reports false once terminal.
	assert.False(t, run.Cancel())
}

func TestCancellationClassification(t *testing.T) {
	assert.True(t, isCancellation(errCancelled))
	assert.True(t, isCancellation(context.Canceled))
	assert.Equal(t, models.ErrorReasonCancelled, errCancelled.Reason)

	assert.False(t, isCancellation(&models.ExecutionError{Reason: models.ErrorReasonHandler, Message: "boom"}))
	assert.False(t, isCancellation(errors.New("boom")))
}

func TestExecuteDeadlineExceeded(t *testing.T) {
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterAction(stubFactory{
		id: "sleep",
		fn: func(_ context.Context, _ models.ExecutionContext) (any, error) {
			time.Sleep(50 * time.Millisecond)

			return nil, nil
		},
	})

	executor := NewExecutor(reg, slog.Default(), WithDeadline(10*time.Millisecond))

	wf := graph(
		[]*models.Node{node("slow", "sleep", nil), node("never", "sleep", nil)},
		[]*models.Edge{edge("trigger", "slow", ""), edge("slow", "never", "")},
	)

	execution := executor.NewRun(wf, nil).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusFailed, execution.Status)
	require.NotNil(t, execution.Error)
	assert.Equal(t, models.ErrorReasonDeadlineExceeded, execution.Error.Reason)
	assert.Empty(t, execution.TraceFor("never"))
}

func TestSnapshotWhileRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	executor := executorWith(t, stubFactory{
		id: "block",
		fn: func(_ context.Context, _ models.ExecutionContext) (any, error) {
			close(started)
			<-release

			return nil, nil
		},
	})

	wf := graph(
		[]*models.Node{node("slow", "block", nil)},
		[]*models.Edge{edge("trigger", "slow", "")},
	)

	run := executor.NewRun(wf, nil)

	done := make(chan *models.Execution, 1)

	go func() {
		done <- run.Execute(context.Background())
	}()

	<-started

	snapshot := run.Snapshot()
	assert.Equal(t, models.ExecutionStatusRunning, snapshot.Status)
	assert.Equal(t, []models.TracePhase{models.TracePhaseStarted}, phases(snapshot, "slow"))

	close(release)
	<-done
}

func TestRenderActionConfigAgainstContext(t *testing.T) {
	executor := executorWith(t, stubFactory{
		id: "render",
		fn: func(_ context.Context, executionCtx models.ExecutionContext) (any, error) {
			return template.RenderWithContext("{{ .context.greeting }} world", &executionCtx)
		},
	})

	wf := graph(
		[]*models.Node{node("a", "render", nil)},
		[]*models.Edge{edge("trigger", "a", "")},
	)

	execution := executor.NewRun(wf, map[string]any{"greeting": "hello"}).Execute(context.Background())

	require.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "hello world", execution.Context["a"])
}
