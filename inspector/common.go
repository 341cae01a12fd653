package inspector

import (
	"github.com/google/wire"
)

var (
	// InspectorInjector sets up the task status inspector
	InspectorInjector = wire.NewSet(NewTaskStatusInspector)
)
