package log

import (
	"context"

	"github.com/calheira/conveyor/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (f *ActionFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Action, error) {
	return NewAction(id, config)
}

func (f *ActionFactory) ID() string {
	return "log"
}

func (f *ActionFactory) Name() string {
	return "Log"
}

func (f *ActionFactory) Description() string {
	return "Logs a message at a configurable level, with template support for dynamic content"
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message to log. Supports templating with execution context data.",
				"examples": []string{
					"Processing order {{.context.fetch_order.id}}",
					"Execution {{.execution.id}} started",
				},
			},
			"level": map[string]any{
				"type":        "string",
				"description": "Log level for the message",
				"enum":        []string{"debug", "info", "warn", "error"},
				"default":     "info",
			},
		},
		"required": []string{"message"},
	}
}
