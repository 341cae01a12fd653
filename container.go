package main

import (
	"net/http"

	"github.com/leaguehq/matchops/archive"
	"github.com/leaguehq/matchops/config"
	"github.com/leaguehq/matchops/health"
)

// ServiceContainer holds the wired application services main interacts with
type ServiceContainer struct {
	Configuration *config.Config
	Server        *http.Server
	HealthService *health.CheckService
	ExportService *archive.SnapshotExportService
	Listener      *ServerLifecycleListenerImpl
}

// ServerLifecycleListenerImpl is the implementation of ServerLifecycleListener
type ServerLifecycleListenerImpl struct {
	shutdownListener chan bool
}

// NewServerLifecycleListener creates the lifecycle listener main waits on
func NewServerLifecycleListener() *ServerLifecycleListenerImpl {
	return &ServerLifecycleListenerImpl{shutdownListener: make(chan bool)}
}

// StartingServer is called just before the server starts listening
func (impl *ServerLifecycleListenerImpl) StartingServer() {}

// ServerStartFailed is called when the server stops listening with an error
func (impl *ServerLifecycleListenerImpl) ServerStartFailed(err error) {}

// ServerShutdownCompleted is called once graceful shutdown finishes
func (impl *ServerLifecycleListenerImpl) ServerShutdownCompleted() {
	go func() {
		impl.shutdownListener <- true
	}()
}

// provideExporter adapts the optional export service into the health Exporter seam;
// a disabled archive must yield an untyped nil so the check service skips exporting
func provideExporter(exportService *archive.SnapshotExportService) health.Exporter {
	if exportService == nil {
		return nil
	}
	return exportService
}
