// Package registry provides built-in action factory registration.
package registry

import (
	"github.com/calheira/conveyor/pkg/actions/filewrite"
	"github.com/calheira/conveyor/pkg/actions/httprequest"
	logaction "github.com/calheira/conveyor/pkg/actions/log"
	"github.com/calheira/conveyor/pkg/actions/transform"
)

// RegisterDefaultActions registers all built-in action factories.
func (r *Registry) RegisterDefaultActions() {
	r.RegisterAction(httprequest.NewActionFactory())
	r.RegisterAction(transform.NewActionFactory())
	r.RegisterAction(logaction.NewActionFactory())
	r.RegisterAction(filewrite.NewActionFactory())
}
