package transform

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
	return "transform"
}

func (f *ActionFactory) Name() string {
	return "Transform"
}

func (f *ActionFactory) Description() string {
	return "Transforms execution context data using a template expression."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"format":      "code",
				"description": "Template expression evaluated against the execution context.",
				"examples": []string{
					"{{.context.fetch_users.body}}",
					`{"name": "{{.context.user.name}}", "active": true}`,
				},
			},
		},
		"required": []string{"expression"},
	}
}
