package controllers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/leaguehq/matchops/breaker"
	"github.com/leaguehq/matchops/notifier"
)

const (
	statusPath  = "/_status"
	metricsPath = "/metrics"
)

// AppData to serialize in status endpoint
type AppData struct {
	AppName  string             `json:"app_name"`
	Breakers []breaker.Snapshot `json:"circuit_breakers"`
}

// NewStatusController Factory for new StatusController
func NewStatusController(botClient notifier.BotClient) *StatusController {
	return &StatusController{botClient: botClient}
}

// StatusController is the controller for `/_status` endpoint
type StatusController struct {
	botClient notifier.BotClient
}

// GetPath returns the endpoint path
func (cont *StatusController) GetPath() string {
	return statusPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *StatusController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return statusPath
}

// Get is the GET /_status endpoint controller
func (cont *StatusController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data := AppData{
		AppName:  "matchops",
		Breakers: []breaker.Snapshot{cont.botClient.Breaker().GetSnapshot()},
	}
	writeJSON(w, data)
}

// NewMetricsController Factory for new MetricsController
func NewMetricsController(promHandler http.Handler) *MetricsController {
	return &MetricsController{promHandler: promHandler}
}

// MetricsController exposes the prometheus scrape endpoint through the shared router
type MetricsController struct {
	promHandler http.Handler
}

// GetPath returns the endpoint path
func (cont *MetricsController) GetPath() string {
	return metricsPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *MetricsController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return metricsPath
}

// Get is the GET /metrics endpoint controller
func (cont *MetricsController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cont.promHandler.ServeHTTP(w, r)
}
