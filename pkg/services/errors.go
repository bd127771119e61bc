// Package services provides the public operations over workflows and
// executions: define, run, inspect, cancel and list.
package services

import (
	"errors"
	"fmt"

	"github.com/calheira/conveyor/pkg/persistence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// ErrInvalidDefinition indicates a workflow definition failed
	// structural or graph validation (400 Bad Request).
	ErrInvalidDefinition = errors.New("invalid workflow definition")

	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrExecutionNotFound is returned when an execution is not found.
	ErrExecutionNotFound = persistence.ErrExecutionNotFound
)

// DefinitionError wraps a validation failure with the offending workflow.
type DefinitionError struct {
	WorkflowID string
	Err        error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid definition for workflow %s: %v", e.WorkflowID, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition || errors.Is(e.Err, target)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDefinition)
}

// IsNotFoundError checks if an error should map to HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) || errors.Is(err, ErrExecutionNotFound)
}
