//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/leaguehq/matchops/archive"
	"github.com/leaguehq/matchops/config"
	"github.com/leaguehq/matchops/controllers"
	"github.com/leaguehq/matchops/health"
	"github.com/leaguehq/matchops/inspector"
	"github.com/leaguehq/matchops/notifier"
	"github.com/leaguehq/matchops/queue"
	"github.com/leaguehq/matchops/scheduler"
	"github.com/leaguehq/matchops/storage"
)

// GetServiceContainer sets up the whole application object graph
func GetServiceContainer(cliConfig *config.CLIConfig) (*ServiceContainer, error) {
	wire.Build(config.ConfigInjector, storage.StorageInjector, queue.QueueInjector,
		scheduler.SchedulerInjector, inspector.InspectorInjector, health.HealthInjector,
		notifier.NewBotClient, archive.NewSnapshotExportService, provideExporter,
		NewServerLifecycleListener,
		wire.Bind(new(controllers.ServerLifecycleListener), new(*ServerLifecycleListenerImpl)),
		controllers.ControllerInjector,
		wire.Struct(new(ServiceContainer), "Configuration", "Server", "HealthService", "ExportService", "Listener"))
	return nil, nil
}
