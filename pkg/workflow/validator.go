// Package workflow holds the definition validator and the execution engine.
package workflow

import (
	"fmt"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/registry"
	"github.com/robfig/cron/v3"
)

// Validate checks a workflow definition against the given registry. It is
// pure and deterministic: the same definition and registry always produce
// the same result. Checks run in a fixed order and the first failure wins:
// trigger well-formedness, dangling edges, cycles, unknown node types, node
// config schemas.
func Validate(wf *models.Workflow, reg *registry.Registry) error {
	if err := validateTrigger(wf.Trigger); err != nil {
		return err
	}

	if err := validateEdges(wf); err != nil {
		return err
	}

	if err := validateAcyclic(wf); err != nil {
		return err
	}

	if err := validateNodeTypes(wf, reg); err != nil {
		return err
	}

	return validateNodeConfigs(wf, reg)
}

func validateTrigger(trigger *models.Trigger) error {
	if trigger == nil {
		return &models.InvalidTriggerError{Reason: "workflow has no trigger"}
	}

	if !models.KnownTriggerType(trigger.Type) {
		return &models.InvalidTriggerError{Reason: fmt.Sprintf("unknown trigger type %q", trigger.Type)}
	}

	if trigger.Type == models.TriggerTypeSchedule {
		expr, ok := trigger.Config["cron"].(string)
		if !ok || expr == "" {
			return &models.InvalidTriggerError{Reason: "schedule trigger requires a cron expression"}
		}

		if _, err := cron.ParseStandard(expr); err != nil {
			return &models.InvalidTriggerError{Reason: fmt.Sprintf("invalid cron expression %q: %v", expr, err)}
		}
	}

	return nil
}

func validateEdges(wf *models.Workflow) error {
	for _, edge := range wf.Edges {
		if _, ok := wf.NodeByID(edge.From); !ok && edge.From != wf.Trigger.ID {
			return &models.DanglingEdgeError{NodeID: edge.To, MissingID: edge.From}
		}

		if _, ok := wf.NodeByID(edge.To); !ok {
			return &models.DanglingEdgeError{NodeID: edge.From, MissingID: edge.To}
		}
	}

	return nil
}

// validateAcyclic runs a depth-first search over the part of the graph
// reachable from the trigger. Edges tagged "loop" re-enter a loop node by
// construction, so they are excluded from the search.
func validateAcyclic(wf *models.Workflow) error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[string]int, len(wf.Nodes))

	var visit func(id string, path []string) error

	visit = func(id string, path []string) error {
		switch state[id] {
		case inStack:
			start := 0

			for i, p := range path {
				if p == id {
					start = i

					break
				}
			}

			return &models.CycleError{Path: append(append([]string{}, path[start:]...), id)}
		case done:
			return nil
		}

		state[id] = inStack

		for _, edge := range wf.EdgesFrom(id) {
			if edge.Tag == models.EdgeTagLoop {
				continue
			}

			if err := visit(edge.To, append(path, id)); err != nil {
				return err
			}
		}

		state[id] = done

		return nil
	}

	for _, edge := range wf.EdgesFrom(wf.Trigger.ID) {
		if err := visit(edge.To, nil); err != nil {
			return err
		}
	}

	return nil
}

func validateNodeTypes(wf *models.Workflow, reg *registry.Registry) error {
	for _, node := range wf.Nodes {
		if !node.Enabled {
			continue
		}

		if !reg.Resolves(node.Type) {
			return &models.UnknownNodeTypeError{NodeID: node.ID, Type: node.Type}
		}
	}

	return nil
}

func validateNodeConfigs(wf *models.Workflow, reg *registry.Registry) error {
	for _, node := range wf.Nodes {
		if !node.Enabled {
			continue
		}

		switch node.Type {
		case models.NodeTypeConditional:
			if expr, ok := node.Config["condition"].(string); !ok || expr == "" {
				return &models.NodeConfigError{NodeID: node.ID, Reason: "conditional requires a condition expression"}
			}

			continue
		case models.NodeTypeLoop:
			if expr, ok := node.Config["items"].(string); !ok || expr == "" {
				return &models.NodeConfigError{NodeID: node.ID, Reason: "loop requires an items expression"}
			}

			continue
		}

		if err := reg.ValidateConfig(node.Type, node.Config); err != nil {
			return &models.NodeConfigError{NodeID: node.ID, Reason: err.Error()}
		}
	}

	return nil
}
