package jobs

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/notifier"
	"github.com/leaguehq/matchops/scheduler"
	"github.com/leaguehq/matchops/storage"
	"github.com/leaguehq/matchops/storage/data"
)

const (
	panicString = "parameters null"

	updateTypeThreadCreation     = "thread_creation"
	updateTypeLiveReportingStart = "live_reporting_start"
	updateTypeLiveReportingStop  = "live_reporting_stop"
)

// JobHandler executes one fixture job. The fleet worker resolves a handler by the
// submitted job name and hands it the job id plus the fixture id payload.
type JobHandler interface {
	JobType() data.JobType
	Handle(ctx context.Context, jobID string, payload []byte) error
}

// HandlerRegistry maps job names onto their handlers
type HandlerRegistry struct {
	handlers map[data.JobType]JobHandler
}

// NewHandlerRegistry creates a registry over the supplied handlers
func NewHandlerRegistry(handlers ...JobHandler) *HandlerRegistry {
	registry := &HandlerRegistry{handlers: make(map[data.JobType]JobHandler)}
	for _, handler := range handlers {
		registry.handlers[handler.JobType()] = handler
	}
	return registry
}

// Dispatch runs the handler registered for jobName
func (registry *HandlerRegistry) Dispatch(ctx context.Context, jobName string, jobID string, payload []byte) error {
	jobType, err := data.ParseJobType(jobName)
	if err != nil {
		return err
	}
	handler, ok := registry.handlers[jobType]
	if !ok {
		return data.ErrUnknownJobType
	}
	return handler.Handle(ctx, jobID, payload)
}

type fixtureUpdateHandler struct {
	jobType    data.JobType
	updateType string
	markerRepo storage.ScheduleMarkerRepository
	botClient  notifier.BotClient
	// clearMarkerOnDone releases the dedup marker after a successful run so the
	// fixture can be rescheduled without waiting out the TTL
	clearMarkerOnDone bool
}

func newFixtureUpdateHandler(jobType data.JobType, updateType string, markerRepo storage.ScheduleMarkerRepository, botClient notifier.BotClient, clearMarkerOnDone bool) JobHandler {
	if markerRepo == nil || botClient == nil {
		panic(panicString)
	}
	return &fixtureUpdateHandler{
		jobType:           jobType,
		updateType:        updateType,
		markerRepo:        markerRepo,
		botClient:         botClient,
		clearMarkerOnDone: clearMarkerOnDone,
	}
}

// NewThreadCreationHandler creates the handler that asks the bot to open a match thread
func NewThreadCreationHandler(markerRepo storage.ScheduleMarkerRepository, botClient notifier.BotClient) JobHandler {
	return newFixtureUpdateHandler(data.JobTypeThreadCreation, updateTypeThreadCreation, markerRepo, botClient, false)
}

// NewLiveReportingStartHandler creates the handler that starts live reporting for a fixture
func NewLiveReportingStartHandler(markerRepo storage.ScheduleMarkerRepository, botClient notifier.BotClient) JobHandler {
	return newFixtureUpdateHandler(data.JobTypeLiveReportingStart, updateTypeLiveReportingStart, markerRepo, botClient, false)
}

// NewLiveReportingStopHandler creates the handler that stops live reporting; it clears
// its marker on success since stop jobs are submitted ad hoc rather than per event
func NewLiveReportingStopHandler(markerRepo storage.ScheduleMarkerRepository, botClient notifier.BotClient) JobHandler {
	return newFixtureUpdateHandler(data.JobTypeLiveReportingStop, updateTypeLiveReportingStop, markerRepo, botClient, true)
}

func (handler *fixtureUpdateHandler) JobType() data.JobType {
	return handler.jobType
}

// Handle posts the fixture update, gated on the job still being the canonical one for
// its dedup marker
func (handler *fixtureUpdateHandler) Handle(ctx context.Context, jobID string, payload []byte) error {
	fixtureID := string(payload)
	return scheduler.RunIfCanonical(ctx, handler.markerRepo, fixtureID, handler.jobType, jobID, func(ctx context.Context) error {
		update := &notifier.BotUpdate{
			EntityID:   fixtureID,
			UpdateType: handler.updateType,
			Payload:    json.RawMessage(`{"source":"scheduled"}`),
		}
		if err := handler.botClient.PostUpdate(ctx, update); err != nil {
			log.Error().Err(err).Str("fixtureId", fixtureID).Str("jobType", string(handler.jobType)).
				Msg("fixture update delivery failed")
			return err
		}
		if handler.clearMarkerOnDone {
			if err := handler.markerRepo.Clear(ctx, fixtureID, handler.jobType); err != nil {
				log.Warn().Err(err).Str("fixtureId", fixtureID).Str("jobType", string(handler.jobType)).
					Msg("could not clear marker after completion")
			}
		}
		return nil
	})
}
