package filewrite

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
	return "file_write"
}

func (f *ActionFactory) Name() string {
	return "File Write"
}

func (f *ActionFactory) Description() string {
	return "Writes rendered execution context data to a JSON file on disk."
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_name": map[string]any{
				"type":        "string",
				"description": "Name of the file to write",
			},
			"directory": map[string]any{
				"type":        "string",
				"description": "Target directory, defaults to the system temp directory",
			},
			"overwrite": map[string]any{
				"type":        "boolean",
				"description": "Whether to replace an existing file",
				"default":     false,
			},
			"input": map[string]any{
				"type":        "string",
				"format":      "code",
				"description": "Template expression for the data to write. Defaults to the full execution context.",
			},
		},
		"required": []string{"file_name"},
	}
}
