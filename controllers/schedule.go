package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/leaguehq/matchops/scheduler"
)

const (
	schedulePath        = "/fixtures/:fixtureId/schedule"
	fixtureIDParamName  = "fixtureId"
)

// ScheduleRequest is the POST body for scheduling a fixture
type ScheduleRequest struct {
	EventTime string `json:"event_time"`
	Force     bool   `json:"force,omitempty"`
}

// NewScheduleController Factory for new ScheduleController
func NewScheduleController(fixtureScheduler scheduler.FixtureScheduler) *ScheduleController {
	return &ScheduleController{fixtureScheduler: fixtureScheduler}
}

// ScheduleController is the controller for the fixture schedule endpoint
type ScheduleController struct {
	fixtureScheduler scheduler.FixtureScheduler
}

// GetPath returns the endpoint path
func (cont *ScheduleController) GetPath() string {
	return schedulePath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *ScheduleController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return formatURL(params, schedulePath, fixtureIDParamName)
}

// Post is the POST /fixtures/:fixtureId/schedule endpoint controller
func (cont *ScheduleController) Post(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	contentType := r.Header.Get(headerContentType)
	if !strings.Contains(contentType, jsonContentTypeHeaderValue) {
		writeUnsupportedMediaType(w)
		return
	}
	fixtureID := findParam(params, fixtureIDParamName)
	var request ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeBadRequest(w)
		return
	}
	eventTime, err := time.Parse(time.RFC3339, request.EventTime)
	if err != nil {
		writeBadRequest(w)
		return
	}
	result := cont.fixtureScheduler.Schedule(r.Context(), fixtureID, eventTime, request.Force)
	writeJSON(w, result)
}

// Delete is the DELETE /fixtures/:fixtureId/schedule endpoint controller
func (cont *ScheduleController) Delete(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	fixtureID := findParam(params, fixtureIDParamName)
	result := cont.fixtureScheduler.Unschedule(r.Context(), fixtureID)
	writeJSON(w, result)
}
