package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/calheira/conveyor/pkg/eventbus"
	"github.com/calheira/conveyor/pkg/events"
	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/otelhelper"
	"github.com/calheira/conveyor/pkg/registry"
	"github.com/calheira/conveyor/pkg/template"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultMaxIterations = 1000

// Executor turns validated workflow definitions into runs. It holds no
// per-run state, so one executor serves any number of concurrent runs.
type Executor struct {
	registry  *registry.Registry
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
	deadline  time.Duration
}

type ExecutorOption func(*Executor)

// WithEventPublisher streams execution and node lifecycle events to the
// given publisher as they occur.
func WithEventPublisher(publisher eventbus.EventPublisher) ExecutorOption {
	return func(e *Executor) {
		e.publisher = publisher
	}
}

// WithTracer opens a span per execution and per node on the given tracer.
func WithTracer(tracer trace.Tracer) ExecutorOption {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

// WithDeadline applies an overall wall-clock limit to every run. Zero means
// no limit.
func WithDeadline(deadline time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.deadline = deadline
	}
}

func NewExecutor(reg *registry.Registry, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		registry: reg,
		tracer:   noop.NewTracerProvider().Tracer("conveyor"),
		logger:   logger.With(slog.String("module", "workflow_executor")),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// NewRun prepares a run of the given workflow. The execution context is
// seeded with the definition's variables and then the trigger event's input;
// on key collision the input wins. Execute starts the run.
func (e *Executor) NewRun(wf *models.Workflow, input map[string]any) *Run {
	execContext := make(map[string]any, len(wf.Variables)+len(input))
	maps.Copy(execContext, wf.Variables)
	maps.Copy(execContext, input)

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: wf.ID,
		Status:     models.ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
		Context:    execContext,
		Trace:      make([]models.TraceEntry, 0),
		Visited:    make([]string, 0),
	}

	return &Run{
		executor:  e,
		workflow:  wf,
		input:     input,
		execution: execution,
		cancel:    make(chan struct{}),
	}
}

// Run is one in-flight execution of a workflow. It is created by
// Executor.NewRun and driven by Execute; Snapshot and Cancel are safe to
// call from other goroutines at any point of the run's life.
type Run struct {
	executor *Executor
	workflow *models.Workflow
	input    map[string]any

	mu        sync.Mutex
	execution *models.Execution

	cancelOnce sync.Once
	cancel     chan struct{}
}

// ID returns the execution id assigned to this run.
func (r *Run) ID() string {
	return r.execution.ID
}

// Snapshot returns a read-consistent copy of the execution record. While
// the run is live the copy reflects some recent state; once terminal it is
// the final record.
func (r *Run) Snapshot() *models.Execution {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.execution.Clone()
}

// Cancel requests cooperative cancellation. It returns true if the request
// was accepted, false if the run already reached a terminal status.
// In-flight node handlers finish; no further nodes start.
func (r *Run) Cancel() bool {
	r.mu.Lock()
	terminal := r.execution.Terminal()
	r.mu.Unlock()

	if terminal {
		return false
	}

	r.cancelOnce.Do(func() {
		close(r.cancel)
	})

	return true
}

// Execute drives the run to a terminal status and returns the final
// execution record. It must be called exactly once per run.
func (r *Run) Execute(ctx context.Context) *models.Execution {
	e := r.executor

	if e.deadline > 0 {
		var cancelCtx context.CancelFunc

		ctx, cancelCtx = context.WithTimeout(ctx, e.deadline)
		defer cancelCtx()
	}

	logger := e.logger.With(
		slog.String("workflow_id", r.workflow.ID),
		slog.String("execution_id", r.execution.ID),
	)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, r.workflow.ID),
		attribute.String(otelhelper.ExecutionIDKey, r.execution.ID),
	)
	defer span.End()

	logger.Info("Starting workflow execution")

	startedEvent := events.ExecutionStarted{
		BaseEvent: events.NewBaseEvent(events.ExecutionStartedEvent, r.workflow.ID, r.execution.ID),
		Input:     r.input,
	}
	r.publish(ctx, startedEvent)

	runner := &graphRunner{
		run:      r,
		workflow: r.workflow,
		logger:   logger,
		nodes:    bodyNodeSet(r.workflow, nil),
	}

	err := runner.execute(ctx)

	r.mu.Lock()

	finished := time.Now().UTC()
	r.execution.FinishedAt = &finished

	switch {
	case err == nil:
		r.execution.Status = models.ExecutionStatusCompleted
	case isCancellation(err):
		r.execution.Status = models.ExecutionStatusCancelled
	default:
		r.execution.Status = models.ExecutionStatusFailed
		r.execution.Error = asExecutionError(err)
	}

	final := r.execution.Clone()
	r.mu.Unlock()

	duration := finished.Sub(final.StartedAt)

	switch final.Status {
	case models.ExecutionStatusCompleted:
		logger.Info("Workflow execution completed", slog.Duration("duration", duration))
		r.publish(ctx, events.ExecutionCompleted{
			BaseEvent: events.NewBaseEvent(events.ExecutionCompletedEvent, r.workflow.ID, r.execution.ID),
			Duration:  duration,
		})
	case models.ExecutionStatusCancelled:
		logger.Info("Workflow execution cancelled", slog.Duration("duration", duration))
		r.publish(ctx, events.ExecutionCancelled{
			BaseEvent: events.NewBaseEvent(events.ExecutionCancelledEvent, r.workflow.ID, r.execution.ID),
			Duration:  duration,
		})
	case models.ExecutionStatusFailed:
		logger.Error("Workflow execution failed",
			slog.String("node_id", final.Error.NodeID),
			slog.String("reason", final.Error.Reason),
			slog.String("error", final.Error.Message),
		)
		otelhelper.SetError(span, final.Error)
		r.publish(ctx, events.ExecutionFailed{
			BaseEvent: events.NewBaseEvent(events.ExecutionFailedEvent, r.workflow.ID, r.execution.ID),
			NodeID:    final.Error.NodeID,
			Reason:    final.Error.Reason,
			Error:     final.Error.Message,
			Duration:  duration,
		})
	case models.ExecutionStatusRunning:
	}

	return final
}

func (r *Run) publish(ctx context.Context, event eventbus.Event) {
	if r.executor.publisher == nil {
		return
	}

	if err := r.executor.publisher.Publish(ctx, r.execution.ID, event); err != nil {
		r.executor.logger.Warn("Failed to publish execution event",
			slog.String("event_type", string(event.GetType())),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Run) cancelled() bool {
	select {
	case <-r.cancel:
		return true
	default:
		return false
	}
}

// errCancelled marks a run stopped by Run.Cancel rather than by a handler
// error or by the deadline. It classifies the outcome; a cancelled record
// still carries no error value.
var errCancelled = &models.ExecutionError{
	Reason:  models.ErrorReasonCancelled,
	Message: "execution cancelled",
}

func isCancellation(err error) bool {
	var execErr *models.ExecutionError
	if errors.As(err, &execErr) && execErr.Reason == models.ErrorReasonCancelled {
		return true
	}

	return errors.Is(err, context.Canceled)
}

func asExecutionError(err error) *models.ExecutionError {
	var execErr *models.ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &models.ExecutionError{
			Reason:  models.ErrorReasonDeadlineExceeded,
			Message: "execution deadline exceeded",
		}
	}

	return &models.ExecutionError{
		Reason:  models.ErrorReasonHandler,
		Message: err.Error(),
	}
}

// edgeState tracks one edge's resolution during scheduling.
type edgeState int

const (
	edgePending edgeState = iota
	edgeFired
	edgeDead
)

// graphRunner schedules one graph (the whole workflow, or a loop body) via
// edge-state propagation. Every edge starts pending; when its source node
// resolves it becomes fired or dead. A node is ready once all of its inbound
// edges are decided and at least one fired. A node whose inbound edges all
// died is pruned without a trace entry, and its outbound edges die in turn.
type graphRunner struct {
	run      *Run
	workflow *models.Workflow
	logger   *slog.Logger

	// nodes restricts scheduling to a subgraph; edges crossing the boundary
	// are ignored. For a top-level run it covers every node.
	nodes map[string]bool

	// itemBinding overlays the loop element onto the context for body nodes.
	itemBinding map[string]any

	// syntheticRoots replaces the trigger's outgoing edges as the graph's
	// activation when running a loop body.
	syntheticRoots []*models.Edge
}

type nodeResult struct {
	nodeID string
	err    error
}

func (g *graphRunner) execute(ctx context.Context) error {
	states := make(map[*models.Edge]edgeState)
	resolved := make(map[string]bool)

	for _, edge := range g.workflow.Edges {
		if !g.inScope(edge) {
			continue
		}

		states[edge] = edgePending
	}

	// Roots fire unconditionally.
	for _, edge := range g.roots() {
		states[edge] = edgeFired
	}

	g.killUnreachable(states)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if g.run.cancelled() {
			return errCancelled
		}

		ready, pruned := g.frontier(states, resolved)

		for _, nodeID := range pruned {
			resolved[nodeID] = true
			g.decideEdges(states, nodeID, nil)
		}

		if len(pruned) > 0 {
			continue
		}

		if len(ready) == 0 {
			return nil
		}

		results := make(chan nodeResult, len(ready))

		for _, nodeID := range ready {
			resolved[nodeID] = true

			go func(id string) {
				firedTags, err := g.runNode(ctx, id)
				if err == nil {
					g.run.mu.Lock()
					g.decideEdges(states, id, firedTags)
					g.run.mu.Unlock()
				}

				results <- nodeResult{nodeID: id, err: err}
			}(nodeID)
		}

		for range ready {
			result := <-results
			if result.err != nil {
				return result.err
			}
		}
	}
}

// killUnreachable marks edges whose source the roots never reach as dead. A
// valid definition may still carry nodes with no path from the trigger; left
// pending, their outbound edges would starve every join they feed into.
func (g *graphRunner) killUnreachable(states map[*models.Edge]edgeState) {
	reachable := make(map[string]bool)

	var queue []string

	for _, edge := range g.roots() {
		if !reachable[edge.To] {
			reachable[edge.To] = true
			queue = append(queue, edge.To)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range g.workflow.EdgesFrom(current) {
			if _, tracked := states[edge]; !tracked {
				continue
			}

			if !reachable[edge.To] {
				reachable[edge.To] = true
				queue = append(queue, edge.To)
			}
		}
	}

	for edge, state := range states {
		if state == edgePending && !reachable[edge.From] {
			states[edge] = edgeDead
		}
	}
}

// roots returns the edges that activate the graph: the trigger's outgoing
// edges for a top-level run, none for a body (the body runner fires its
// entry explicitly through syntheticRoots).
func (g *graphRunner) roots() []*models.Edge {
	if g.syntheticRoots != nil {
		return g.syntheticRoots
	}

	return g.workflow.EdgesFrom(g.workflow.Trigger.ID)
}

func (g *graphRunner) inScope(edge *models.Edge) bool {
	return g.nodes[edge.From] && g.nodes[edge.To]
}

// frontier partitions unresolved nodes into ready (all inbound decided, at
// least one fired) and pruned (all inbound decided, none fired).
func (g *graphRunner) frontier(states map[*models.Edge]edgeState, resolved map[string]bool) (ready, pruned []string) {
	for _, node := range g.workflow.Nodes {
		if !g.nodes[node.ID] || resolved[node.ID] {
			continue
		}

		anyFired := false
		allDecided := true
		hasInbound := false

		for edge, state := range states {
			if edge.To != node.ID {
				continue
			}

			hasInbound = true

			switch state {
			case edgePending:
				allDecided = false
			case edgeFired:
				anyFired = true
			case edgeDead:
			}
		}

		if !hasInbound || !allDecided {
			continue
		}

		if anyFired {
			ready = append(ready, node.ID)
		} else {
			pruned = append(pruned, node.ID)
		}
	}

	return ready, pruned
}

// decideEdges resolves a node's outbound edges. firedTags maps edge tags to
// whether they fire; a nil map kills everything (pruned node), a tag absent
// from a non-nil map fires only if untagged.
func (g *graphRunner) decideEdges(states map[*models.Edge]edgeState, nodeID string, firedTags map[string]bool) {
	for edge, state := range states {
		if edge.From != nodeID || state != edgePending {
			continue
		}

		if firedTags == nil {
			states[edge] = edgeDead

			continue
		}

		fire, tagged := firedTags[edge.Tag]
		if !tagged {
			fire = edge.Tag == ""
		}

		if fire {
			states[edge] = edgeFired
		} else {
			states[edge] = edgeDead
		}
	}
}

// runNode executes one node and returns which outbound edge tags fire.
func (g *graphRunner) runNode(ctx context.Context, nodeID string) (map[string]bool, error) {
	node, ok := g.workflow.NodeByID(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s not found in workflow %s", nodeID, g.workflow.ID)
	}

	run := g.run

	run.mu.Lock()
	visited := run.execution.HasVisited(nodeID)

	if !visited {
		run.execution.Visited = append(run.execution.Visited, nodeID)
	}
	run.mu.Unlock()

	if visited {
		// At-most-once per run. A node reached again through converging
		// paths contributes nothing new.
		return map[string]bool{}, nil
	}

	if !node.Enabled {
		g.logger.Info("Node is disabled, skipping", slog.String("node_id", nodeID))
		g.trace(models.TraceEntry{NodeID: nodeID, Phase: models.TracePhaseSkipped, Timestamp: time.Now().UTC()})
		run.publish(ctx, events.NodeSkipped{
			BaseEvent: events.NewBaseEvent(events.NodeSkippedEvent, g.workflow.ID, run.execution.ID),
			NodeID:    nodeID,
		})

		return allTagsFired(g.workflow.EdgesFrom(nodeID)), nil
	}

	ctx, span := otelhelper.StartSpan(ctx, run.executor.tracer, "workflow.node",
		attribute.String(otelhelper.NodeIDKey, nodeID),
		attribute.String(otelhelper.NodeTypeKey, node.Type),
	)
	defer span.End()

	g.trace(models.TraceEntry{NodeID: nodeID, Phase: models.TracePhaseStarted, Timestamp: time.Now().UTC()})
	run.publish(ctx, events.NodeStarted{
		BaseEvent: events.NewBaseEvent(events.NodeStartedEvent, g.workflow.ID, run.execution.ID),
		NodeID:    nodeID,
		NodeType:  node.Type,
	})

	var (
		output    any
		branch    string
		firedTags map[string]bool
		err       error
	)

	switch node.Type {
	case models.NodeTypeConditional:
		branch, err = g.runConditional(node)
		if err == nil {
			output = map[string]any{"branch": branch}
			// Only the matching branch tag fires; an untagged successor of a
			// conditional dies with the untaken branch.
			firedTags = map[string]bool{
				models.EdgeTagTrue:  branch == models.EdgeTagTrue,
				models.EdgeTagFalse: branch == models.EdgeTagFalse,
				"":                  false,
			}
		}
	case models.NodeTypeLoop:
		output, err = g.runLoop(ctx, node)
		if err == nil {
			firedTags = map[string]bool{
				models.EdgeTagDone: true,
				models.EdgeTagBody: false,
			}
		}
	default:
		output, err = g.runAction(ctx, node)
		if err == nil {
			firedTags = allTagsFired(g.workflow.EdgesFrom(nodeID))
		}
	}

	if err != nil {
		// Cancellation and the deadline surfacing through a loop body are
		// run-level outcomes, not node failures. A body node's failure is
		// already recorded against that node.
		var execErr *models.ExecutionError
		if isCancellation(err) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &execErr) {
			return nil, err
		}

		g.logger.Error("Node failed",
			slog.String("node_id", nodeID),
			slog.String("node_type", node.Type),
			slog.String("error", err.Error()),
		)
		otelhelper.SetError(span, err)
		g.trace(models.TraceEntry{
			NodeID:    nodeID,
			Phase:     models.TracePhaseFailed,
			Timestamp: time.Now().UTC(),
			Error:     err.Error(),
		})
		run.publish(ctx, events.NodeFailed{
			BaseEvent: events.NewBaseEvent(events.NodeFailedEvent, g.workflow.ID, run.execution.ID),
			NodeID:    nodeID,
			NodeType:  node.Type,
			Error:     err.Error(),
		})

		return nil, &models.ExecutionError{
			NodeID:  nodeID,
			Reason:  models.ErrorReasonHandler,
			Message: err.Error(),
		}
	}

	run.mu.Lock()
	run.execution.Context[nodeID] = output
	run.mu.Unlock()

	g.trace(models.TraceEntry{
		NodeID:    nodeID,
		Phase:     models.TracePhaseCompleted,
		Timestamp: time.Now().UTC(),
		Branch:    branch,
	})
	run.publish(ctx, events.NodeCompleted{
		BaseEvent: events.NewBaseEvent(events.NodeCompletedEvent, g.workflow.ID, run.execution.ID),
		NodeID:    nodeID,
		NodeType:  node.Type,
		Branch:    branch,
		Output:    output,
	})

	return firedTags, nil
}

func (g *graphRunner) runAction(ctx context.Context, node *models.Node) (any, error) {
	action, err := g.run.executor.registry.CreateAction(ctx, node.Type, node.ID, node.Config)
	if err != nil {
		return nil, err
	}

	return action.Execute(ctx, g.executionContext(node.ID), g.logger.With(slog.String("node_id", node.ID)))
}

// runConditional renders the condition expression and picks the branch tag.
// Any non-boolean result is an error; untaken branches die silently.
func (g *graphRunner) runConditional(node *models.Node) (string, error) {
	expr, _ := node.Config["condition"].(string)

	executionCtx := g.executionContext(node.ID)

	result, err := template.RenderWithContext(expr, &executionCtx)
	if err != nil {
		return "", fmt.Errorf("condition evaluation: %w", err)
	}

	value, ok := result.(bool)
	if !ok {
		return "", fmt.Errorf("condition %q evaluated to non-boolean %v", expr, result)
	}

	if value {
		return models.EdgeTagTrue, nil
	}

	return models.EdgeTagFalse, nil
}

// runLoop iterates the configured collection, executing the body subgraph
// once per element sequentially. Each iteration sees the shared context plus
// the element bound under the configured name; each iteration's terminal
// outputs are collected into the returned slice in iteration order.
func (g *graphRunner) runLoop(ctx context.Context, node *models.Node) (any, error) {
	expr, _ := node.Config["items"].(string)

	executionCtx := g.executionContext(node.ID)

	rendered, err := template.RenderWithContext(expr, &executionCtx)
	if err != nil {
		return nil, fmt.Errorf("loop items evaluation: %w", err)
	}

	items, ok := rendered.([]any)
	if !ok {
		return nil, fmt.Errorf("loop items %q evaluated to non-collection %T", expr, rendered)
	}

	binding := "item"
	if as, ok := node.Config["as"].(string); ok && as != "" {
		binding = as
	}

	maxIterations := defaultMaxIterations
	if raw, ok := node.Config["max_iterations"].(float64); ok && raw > 0 {
		maxIterations = int(raw)
	}

	if len(items) > maxIterations {
		g.logger.Warn("Loop collection exceeds iteration bound, truncating",
			slog.String("node_id", node.ID),
			slog.Int("items", len(items)),
			slog.Int("max_iterations", maxIterations),
		)

		items = items[:maxIterations]
	}

	entry, bodyNodes, err := g.loopBody(node)
	if err != nil {
		return nil, err
	}

	collected := make([]any, 0, len(items))

	for index, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if g.run.cancelled() {
			return nil, errCancelled
		}

		body := &graphRunner{
			run:            g.run,
			workflow:       g.workflow,
			logger:         g.logger.With(slog.String("loop_id", node.ID), slog.Int("iteration", index)),
			nodes:          bodyNodes,
			itemBinding:    map[string]any{binding: item, "index": index},
			syntheticRoots: []*models.Edge{entry},
		}

		if err := body.execute(ctx); err != nil {
			return nil, err
		}

		collected = append(collected, g.collectBodyOutput(bodyNodes))
		g.resetBody(bodyNodes)
	}

	return collected, nil
}

// loopBody finds the body entry edge and the node set reachable from it
// without leaving through a done edge.
func (g *graphRunner) loopBody(node *models.Node) (*models.Edge, map[string]bool, error) {
	var entry *models.Edge

	for _, edge := range g.workflow.EdgesFrom(node.ID) {
		if edge.Tag == models.EdgeTagBody {
			entry = edge

			break
		}
	}

	if entry == nil {
		return nil, nil, fmt.Errorf("loop node %s has no body edge", node.ID)
	}

	body := map[string]bool{entry.To: true}
	queue := []string{entry.To}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range g.workflow.EdgesFrom(current) {
			if edge.Tag == models.EdgeTagLoop || edge.To == node.ID {
				continue
			}

			if !body[edge.To] {
				body[edge.To] = true
				queue = append(queue, edge.To)
			}
		}
	}

	return entry, body, nil
}

// collectBodyOutput gathers the outputs of body nodes with no in-body
// successors, the iteration's terminal results.
func (g *graphRunner) collectBodyOutput(bodyNodes map[string]bool) any {
	g.run.mu.Lock()
	defer g.run.mu.Unlock()

	terminal := make(map[string]any)

	for nodeID := range bodyNodes {
		hasSuccessor := false

		for _, edge := range g.workflow.EdgesFrom(nodeID) {
			if edge.Tag != models.EdgeTagLoop && bodyNodes[edge.To] {
				hasSuccessor = true

				break
			}
		}

		if !hasSuccessor {
			if output, ok := g.run.execution.Context[nodeID]; ok {
				terminal[nodeID] = output
			}
		}
	}

	if len(terminal) == 1 {
		for _, output := range terminal {
			return output
		}
	}

	return terminal
}

// resetBody clears visited marks for body nodes so the next iteration may
// run them again. The at-most-once guarantee is per iteration inside a body.
func (g *graphRunner) resetBody(bodyNodes map[string]bool) {
	g.run.mu.Lock()
	defer g.run.mu.Unlock()

	kept := g.run.execution.Visited[:0]

	for _, nodeID := range g.run.execution.Visited {
		if !bodyNodes[nodeID] {
			kept = append(kept, nodeID)
		}
	}

	g.run.execution.Visited = kept
}

func (g *graphRunner) executionContext(nodeID string) models.ExecutionContext {
	g.run.mu.Lock()
	defer g.run.mu.Unlock()

	execContext := maps.Clone(g.run.execution.Context)
	maps.Copy(execContext, g.itemBinding)

	return models.ExecutionContext{
		ExecutionID: g.run.execution.ID,
		WorkflowID:  g.workflow.ID,
		NodeID:      nodeID,
		Context:     execContext,
	}
}

func (g *graphRunner) trace(entry models.TraceEntry) {
	g.run.mu.Lock()
	defer g.run.mu.Unlock()

	g.run.execution.Trace = append(g.run.execution.Trace, entry)
}

func allTagsFired(edges []*models.Edge) map[string]bool {
	fired := make(map[string]bool, len(edges))
	for _, edge := range edges {
		fired[edge.Tag] = true
	}

	return fired
}

// bodyNodeSet builds the node scope for a runner. With a nil body it covers
// the whole workflow.
func bodyNodeSet(wf *models.Workflow, body map[string]bool) map[string]bool {
	if body != nil {
		return body
	}

	all := make(map[string]bool, len(wf.Nodes))
	for _, node := range wf.Nodes {
		all[node.ID] = true
	}

	return all
}
