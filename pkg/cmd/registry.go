// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/calheira/conveyor/pkg/registry"
)

// NewRegistry builds the action registry with the built-in actions and any
// plugins found under pluginsPath.
func NewRegistry(logger *slog.Logger, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultActions()

	plugins, err := reg.LoadActionPlugins(pluginsPath)
	if err != nil {
		panic(err)
	}

	for _, plugin := range plugins {
		reg.RegisterAction(plugin)
	}

	return reg
}
