package health

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/config"
)

const checkTimeout = 30 * time.Second

// Exporter moves aging snapshots into the archive before the store TTL reclaims them
type Exporter interface {
	Export(ctx context.Context) error
}

// CheckService drives periodic health checks on a cron schedule
type CheckService struct {
	monitor     QueueHealthMonitor
	exporter    Exporter
	cronSpec    string
	cronRunner  *cron.Cron
	checkEntry  cron.EntryID
	exportEntry cron.EntryID
}

// exportCronSpec runs the snapshot archive export at a lower frequency than checks
const exportCronSpec = "@hourly"

// NewCheckService creates the periodic health check service; exporter may be nil when
// no archive is configured
func NewCheckService(monitor QueueHealthMonitor, exporter Exporter, healthConfig config.HealthCheckConfig) *CheckService {
	if monitor == nil || healthConfig == nil {
		panic(panicString)
	}
	return &CheckService{
		monitor:    monitor,
		exporter:   exporter,
		cronSpec:   healthConfig.GetHealthCheckCronSpec(),
		cronRunner: cron.New(),
	}
}

// Start schedules the check and export jobs and begins the cron loop
func (service *CheckService) Start() error {
	entry, err := service.cronRunner.AddFunc(service.cronSpec, service.runCheck)
	if err != nil {
		return err
	}
	service.checkEntry = entry
	if service.exporter != nil {
		exportEntry, err := service.cronRunner.AddFunc(exportCronSpec, service.runExport)
		if err != nil {
			return err
		}
		service.exportEntry = exportEntry
	}
	service.cronRunner.Start()
	log.Info().Str("cronSpec", service.cronSpec).Msg("queue health check service started")
	return nil
}

// Stop halts the cron loop, waiting for a running check to finish
func (service *CheckService) Stop() {
	stopCtx := service.cronRunner.Stop()
	<-stopCtx.Done()
	log.Info().Msg("queue health check service stopped")
}

func (service *CheckService) runCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	report := service.monitor.Check(ctx)
	log.Info().Int("score", report.Score).Str("status", string(report.Status)).
		Int("alerts", len(report.Alerts)).Bool("success", report.Success).Msg("queue health check completed")
}

func (service *CheckService) runExport() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	if err := service.exporter.Export(ctx); err != nil {
		log.Error().Err(err).Msg("snapshot archive export failed")
	}
}
