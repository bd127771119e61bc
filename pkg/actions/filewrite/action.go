// Package filewrite provides an action handler that writes rendered data to
// a file on the local filesystem.
package filewrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/template"
)

const dirPermissions = 0o755

type Action struct {
	id        string
	fileName  string
	directory string
	overwrite bool
	input     string
}

func NewAction(id string, config map[string]any) (*Action, error) {
	fileName, ok := config["file_name"].(string)
	if !ok || fileName == "" {
		return nil, errors.New("missing required field 'file_name'")
	}

	directory, _ := config["directory"].(string)
	if directory == "" {
		directory = os.TempDir()
	}

	overwrite, _ := config["overwrite"].(bool)
	input, _ := config["input"].(string)

	return &Action{
		id:        id,
		fileName:  fileName,
		directory: directory,
		overwrite: overwrite,
		input:     input,
	}, nil
}

// Execute renders the configured input (or dumps the whole context when
// unset) and writes it as indented JSON.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("module", "file_write_action", "node_id", a.id)

	var (
		data any
		err  error
	)

	if a.input == "" {
		data = executionCtx.Context
	} else {
		data, err = template.RenderWithContext(a.input, &executionCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to render input template: %w", err)
		}
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	fullPath := filepath.Join(a.directory, a.fileName)

	if !a.overwrite {
		if _, err := os.Stat(fullPath); err == nil {
			return nil, fmt.Errorf("file '%s' already exists and overwrite is false", fullPath)
		}
	}

	if err := os.MkdirAll(a.directory, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create directory '%s': %w", a.directory, err)
	}

	if err := os.WriteFile(fullPath, encoded, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write file '%s': %w", fullPath, err)
	}

	logger.InfoContext(ctx, "Wrote file", "path", fullPath, "bytes", len(encoded))

	return map[string]any{
		"path":  fullPath,
		"bytes": len(encoded),
	}, nil
}
