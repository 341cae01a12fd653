package scheduler

import (
	"github.com/google/wire"
)

var (
	// SchedulerInjector is the injector for the FixtureScheduler module
	SchedulerInjector = wire.NewSet(NewSchedulerConfiguration, NewFixtureScheduler)
)
