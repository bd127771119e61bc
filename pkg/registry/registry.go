// Package registry maps node types to the action factories that implement
// them. It is populated once at process start and read-only afterwards, so a
// single registry is safe to share across concurrently running executions.
package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"

	"github.com/calheira/conveyor/pkg/models"
	"github.com/calheira/conveyor/pkg/protocol"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

// RegisterAction adds a factory for its node type. Registration is only
// legal during process startup; handlers cannot be added mid-execution.
func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

// Resolves reports whether a node type is executable: either a registered
// factory or one of the engine's reserved traversal behaviors.
func (r *Registry) Resolves(nodeType string) bool {
	if nodeType == models.NodeTypeConditional || nodeType == models.NodeTypeLoop {
		return true
	}

	_, ok := r.actionFactories[nodeType]

	return ok
}

// Factory returns the registered factory for a node type.
func (r *Registry) Factory(nodeType string) (protocol.ActionFactory, bool) {
	factory, ok := r.actionFactories[nodeType]

	return factory, ok
}

// CreateAction instantiates the handler for a node.
func (r *Registry) CreateAction(ctx context.Context, nodeType, nodeID string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[nodeType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", nodeType)
	}

	return factory.Create(ctx, nodeID, config)
}

// ActionTypes returns the registered node type keys.
func (r *Registry) ActionTypes() []string {
	types := make([]string, 0, len(r.actionFactories))
	for t := range r.actionFactories {
		types = append(types, t)
	}

	return types
}

// LoadActionPlugins loads ActionFactory symbols from .so files found under
// pluginsPath/actions. Plugin loading is a startup-only surface.
func (r *Registry) LoadActionPlugins(pluginsPath string) ([]protocol.ActionFactory, error) {
	rootPath := pluginsPath + "/actions"

	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return nil, nil
	}

	root := os.DirFS(rootPath)

	pluginPathList, err := fs.Glob(root, "**/*.so")
	if err != nil {
		return nil, err
	}

	l := r.logger.With(slog.String("path", rootPath))
	l.Info("Loading action plugins")

	pluginList := make([]protocol.ActionFactory, 0, len(pluginPathList))

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", p, err)
		}

		v, err := plg.Lookup("Action")
		if err != nil {
			return nil, fmt.Errorf("plugin %s has no Action symbol: %w", p, err)
		}

		factory, ok := v.(protocol.ActionFactory)
		if !ok {
			return nil, fmt.Errorf("plugin %s Action symbol is not an ActionFactory", p)
		}

		pluginList = append(pluginList, factory)

		l.Info("Loaded action plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
