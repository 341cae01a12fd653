package controllers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/leaguehq/matchops/inspector"
)

const (
	taskPath         = "/tasks/:taskId"
	tasksPath        = "/tasks"
	fixtureTasksPath = "/fixtures/:fixtureId/tasks"
	taskIDParamName  = "taskId"
)

// NewTaskController Factory for new TaskController
func NewTaskController(statusInspector inspector.TaskStatusInspector) *TaskController {
	return &TaskController{statusInspector: statusInspector}
}

// TaskController is the controller for a single task status endpoint
type TaskController struct {
	statusInspector inspector.TaskStatusInspector
}

// GetPath returns the endpoint path
func (cont *TaskController) GetPath() string {
	return taskPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *TaskController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return formatURL(params, taskPath, taskIDParamName)
}

// Get is the GET /tasks/:taskId endpoint controller
func (cont *TaskController) Get(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	taskID := findParam(params, taskIDParamName)
	status := cont.statusInspector.Status(r.Context(), taskID)
	writeJSON(w, status)
}

// NewTasksController Factory for new TasksController
func NewTasksController(statusInspector inspector.TaskStatusInspector) *TasksController {
	return &TasksController{statusInspector: statusInspector}
}

// TasksController is the controller for the fleet wide scheduled task listing
type TasksController struct {
	statusInspector inspector.TaskStatusInspector
}

// GetPath returns the endpoint path
func (cont *TasksController) GetPath() string {
	return tasksPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *TasksController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return tasksPath
}

// MonitorData is the response shape of the fleet wide listing
type MonitorData struct {
	Fixtures []*inspector.FixtureReport `json:"fixtures"`
	Count    int                        `json:"count"`
}

// Get is the GET /tasks endpoint controller
func (cont *TasksController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	reports, err := cont.statusInspector.MonitorAll(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, &MonitorData{Fixtures: reports, Count: len(reports)})
}

// NewFixtureTasksController Factory for new FixtureTasksController
func NewFixtureTasksController(statusInspector inspector.TaskStatusInspector) *FixtureTasksController {
	return &FixtureTasksController{statusInspector: statusInspector}
}

// FixtureTasksController is the controller for one fixture's task verification
type FixtureTasksController struct {
	statusInspector inspector.TaskStatusInspector
}

// GetPath returns the endpoint path
func (cont *FixtureTasksController) GetPath() string {
	return fixtureTasksPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *FixtureTasksController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return formatURL(params, fixtureTasksPath, fixtureIDParamName)
}

// Get is the GET /fixtures/:fixtureId/tasks endpoint controller
func (cont *FixtureTasksController) Get(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	fixtureID := findParam(params, fixtureIDParamName)
	report, err := cont.statusInspector.Verify(r.Context(), fixtureID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if len(report.Tasks) < 1 {
		writeNotFound(w)
		return
	}
	writeJSON(w, report)
}
