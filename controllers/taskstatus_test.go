package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/leaguehq/matchops/inspector"
	"github.com/leaguehq/matchops/storage/data"
)

// TaskStatusInspectorMockImpl is the mock implementation for the task status inspector
type TaskStatusInspectorMockImpl struct {
	mock.Mock
}

// Status mocks a single job status lookup
func (m *TaskStatusInspectorMockImpl) Status(ctx context.Context, jobID string) *data.JobStatus {
	args := m.Called(ctx, jobID)
	return args.Get(0).(*data.JobStatus)
}

// Verify mocks the per fixture task verification
func (m *TaskStatusInspectorMockImpl) Verify(ctx context.Context, fixtureID string) (*inspector.FixtureReport, error) {
	args := m.Called(ctx, fixtureID)
	report, _ := args.Get(0).(*inspector.FixtureReport)
	return report, args.Error(1)
}

// MonitorAll mocks the fleet wide task listing
func (m *TaskStatusInspectorMockImpl) MonitorAll(ctx context.Context) ([]*inspector.FixtureReport, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]*inspector.FixtureReport)
	return reports, args.Error(1)
}

func TestTaskControllerGet(t *testing.T) {
	mInspector := new(TaskStatusInspectorMockImpl)
	testRouter := httprouter.New()
	setupAPIRoutes(testRouter, NewTaskController(mInspector))
	expected := &data.JobStatus{ID: "job-1", State: data.JobStatePending}
	mInspector.On("Status", mock.Anything, "job-1").Return(expected)
	req, _ := http.NewRequest("GET", "/tasks/job-1", nil)
	rr := httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	outStatus := &data.JobStatus{}
	json.NewDecoder(strings.NewReader(rr.Body.String())).Decode(outStatus)
	assert.Equal(t, expected.ID, outStatus.ID)
	assert.Equal(t, expected.State, outStatus.State)
	mInspector.AssertExpectations(t)
}

func TestTasksControllerGet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mInspector := new(TaskStatusInspectorMockImpl)
		testRouter := httprouter.New()
		setupAPIRoutes(testRouter, NewTasksController(mInspector))
		reports := []*inspector.FixtureReport{
			{FixtureID: "42", Tasks: map[data.JobType]*inspector.TaskReport{}},
			{FixtureID: "43", Tasks: map[data.JobType]*inspector.TaskReport{}},
		}
		mInspector.On("MonitorAll", mock.Anything).Return(reports, nil)
		req, _ := http.NewRequest("GET", "/tasks", nil)
		rr := httptest.NewRecorder()
		testRouter.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		outData := &MonitorData{}
		json.NewDecoder(strings.NewReader(rr.Body.String())).Decode(outData)
		assert.Equal(t, 2, outData.Count)
		assert.Len(t, outData.Fixtures, 2)
		mInspector.AssertExpectations(t)
	})
	t.Run("Error", func(t *testing.T) {
		mInspector := new(TaskStatusInspectorMockImpl)
		testRouter := httprouter.New()
		setupAPIRoutes(testRouter, NewTasksController(mInspector))
		err := errors.New("marker listing failed")
		mInspector.On("MonitorAll", mock.Anything).Return(nil, err)
		req, _ := http.NewRequest("GET", "/tasks", nil)
		rr := httptest.NewRecorder()
		testRouter.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, err.Error(), rr.Body.String())
		mInspector.AssertExpectations(t)
	})
}

func TestFixtureTasksControllerGet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mInspector := new(TaskStatusInspectorMockImpl)
		testRouter := httprouter.New()
		setupAPIRoutes(testRouter, NewFixtureTasksController(mInspector))
		report := &inspector.FixtureReport{
			FixtureID: "42",
			Tasks: map[data.JobType]*inspector.TaskReport{
				data.JobTypeThreadCreation: {JobType: data.JobTypeThreadCreation},
			},
		}
		mInspector.On("Verify", mock.Anything, "42").Return(report, nil)
		req, _ := http.NewRequest("GET", "/fixtures/42/tasks", nil)
		rr := httptest.NewRecorder()
		testRouter.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		outReport := &inspector.FixtureReport{}
		json.NewDecoder(strings.NewReader(rr.Body.String())).Decode(outReport)
		assert.Equal(t, "42", outReport.FixtureID)
		assert.Len(t, outReport.Tasks, 1)
		mInspector.AssertExpectations(t)
	})
	t.Run("NothingScheduled", func(t *testing.T) {
		mInspector := new(TaskStatusInspectorMockImpl)
		testRouter := httprouter.New()
		setupAPIRoutes(testRouter, NewFixtureTasksController(mInspector))
		report := &inspector.FixtureReport{FixtureID: "42", Tasks: map[data.JobType]*inspector.TaskReport{}}
		mInspector.On("Verify", mock.Anything, "42").Return(report, nil)
		req, _ := http.NewRequest("GET", "/fixtures/42/tasks", nil)
		rr := httptest.NewRecorder()
		testRouter.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		mInspector.AssertExpectations(t)
	})
	t.Run("Error", func(t *testing.T) {
		mInspector := new(TaskStatusInspectorMockImpl)
		testRouter := httprouter.New()
		setupAPIRoutes(testRouter, NewFixtureTasksController(mInspector))
		err := errors.New("marker read failed")
		mInspector.On("Verify", mock.Anything, "42").Return(nil, err)
		req, _ := http.NewRequest("GET", "/fixtures/42/tasks", nil)
		rr := httptest.NewRecorder()
		testRouter.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mInspector.AssertExpectations(t)
	})
}

func TestTaskControllersFormatAsRelativeLink(t *testing.T) {
	mInspector := new(TaskStatusInspectorMockImpl)
	assert.Equal(t, "/tasks/job-1", NewTaskController(mInspector).FormatAsRelativeLink(httprouter.Param{Key: taskIDParamName, Value: "job-1"}))
	assert.Equal(t, tasksPath, NewTasksController(mInspector).FormatAsRelativeLink())
	assert.Equal(t, "/fixtures/42/tasks", NewFixtureTasksController(mInspector).FormatAsRelativeLink(httprouter.Param{Key: fixtureIDParamName, Value: "42"}))
}
