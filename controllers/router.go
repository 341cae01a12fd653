package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"net/http/pprof"

	"github.com/google/wire"
	"github.com/julienschmidt/httprouter"

	"github.com/leaguehq/matchops/config"
)

var (
	listener ServerLifecycleListener
	server   *http.Server
	// ControllerInjector for binding controllers
	ControllerInjector = wire.NewSet(ConfigureAPI, NewRouter, NewStatusController, NewScheduleController, NewFixtureTasksController, NewTaskController, NewTasksController, NewQueueHealthController, NewMetricsController, wire.Struct(new(Controllers), "StatusController", "ScheduleController", "FixtureTasksController", "TaskController", "TasksController", "QueueHealthController", "MetricsController"))
	// ErrUnsupportedMediaType is returned when client does not provide appropriate `Content-Type` header
	ErrUnsupportedMediaType = errors.New("Media type not supported")
	// ErrNotFound is returned when resource is not found
	ErrNotFound = errors.New("Request resource not found")
	// ErrBadRequest is returned when protocol for a PUT/POST/DELETE request is not met
	ErrBadRequest = errors.New("Bad Request")
)

const (
	jsonContentTypeHeaderValue = "application/json"
	headerContentType          = "Content-Type"
	headerRequestID            = "X-Request-ID"
	requestIDLogFieldKey       = "requestId"
)

type (
	// Controllers represents factory object containing all the controllers
	Controllers struct {
		StatusController       *StatusController
		ScheduleController     *ScheduleController
		FixtureTasksController *FixtureTasksController
		TaskController         *TaskController
		TasksController        *TasksController
		QueueHealthController  *QueueHealthController
		MetricsController      *MetricsController
	}

	// ServerLifecycleListener listens to key server lifecycle error
	ServerLifecycleListener interface {
		StartingServer()
		ServerStartFailed(err error)
		ServerShutdownCompleted()
	}

	// EndpointController represents very basic functionality of an endpoint
	EndpointController interface {
		GetPath() string
		FormatAsRelativeLink(params ...httprouter.Param) string
	}

	// Get represents GET Method Call to a resource
	Get interface {
		Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params)
	}

	// Post represents POST Method Call to a resource
	Post interface {
		Post(w http.ResponseWriter, r *http.Request, ps httprouter.Params)
	}

	// Delete represents DELETE Method Call to a resource
	Delete interface {
		Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params)
	}

	idKey struct{}
)

var getJSON = func(buf *bytes.Buffer, data interface{}) error {
	return json.NewEncoder(buf).Encode(data)
}

// NotifyOnInterrupt registers channel to get notified when interrupt is captured
var NotifyOnInterrupt = func(stop *chan os.Signal) {
	signal.Notify(*stop, os.Interrupt, os.Kill, syscall.SIGTERM)
}

func getRequestID(r *http.Request) (requestID string) {
	ctx := r.Context()
	requestID, ok := ctx.Value(idKey{}).(string)
	if !ok {
		requestID = r.Header.Get(headerRequestID)
		if len(requestID) < 1 {
			requestID = xid.New().String()
		}
		ctx = context.WithValue(ctx, idKey{}, requestID)
		r = r.WithContext(ctx)
	}
	return requestID
}

// getRequestIDHandler is similar to hlog.RequestIDHandler just the twist is it expects string as request id and not xid.ID
func getRequestIDHandler(fieldKey, headerName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := getRequestID(r)
			ctx := r.Context()
			log := zerolog.Ctx(ctx)
			if len(fieldKey) > 0 {
				log.UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str(fieldKey, requestID)
				})
			}
			if len(headerName) > 0 {
				w.Header().Set(headerName, requestID)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func logAccess(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("")
}

func getHandler(apiRouter *httprouter.Router) http.Handler {
	// Chain handlers - logger attaching handler, request id handler and access log handler ending with our routes
	return hlog.NewHandler(log.Logger)(getRequestIDHandler(requestIDLogFieldKey, headerRequestID)(hlog.AccessHandler(logAccess)(apiRouter)))
}

// ConfigureAPI configures API Server with interrupt handling
func ConfigureAPI(httpConfig config.HTTPConfig, iListener ServerLifecycleListener, apiRouter *httprouter.Router) *http.Server {
	listener = iListener
	handler := getHandler(apiRouter)
	server = &http.Server{
		Handler:      handler,
		Addr:         httpConfig.GetHTTPListeningAddr(),
		ReadTimeout:  httpConfig.GetHTTPReadTimeout(),
		WriteTimeout: httpConfig.GetHTTPWriteTimeout(),
	}
	go func() {
		log.Print("Listening to http at -", httpConfig.GetHTTPListeningAddr())
		iListener.StartingServer()
		if serverListenErr := server.ListenAndServe(); serverListenErr != nil {
			iListener.ServerStartFailed(serverListenErr)
			log.Print(serverListenErr)
		}
	}()
	stop := make(chan os.Signal, 1)
	NotifyOnInterrupt(&stop)
	go func() {
		<-stop
		handleExit()
	}()
	return server
}

func handleExit() {
	log.Print("Shutting down the server...")
	serverShutdownContext, shutdownTimeoutCancelFunc := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownTimeoutCancelFunc()
	server.Shutdown(serverShutdownContext)
	log.Print("Server gracefully stopped!")
	listener.ServerShutdownCompleted()
}

// NewRouter returns a new instance of the router
func NewRouter(controllers *Controllers) *httprouter.Router {
	apiRouter := httprouter.New()
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/", pprof.Index)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/cmdline", pprof.Cmdline)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/profile", pprof.Profile)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/symbol", pprof.Symbol)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/trace", pprof.Trace)
	apiRouter.Handler(http.MethodGet, "/debug/pprof/goroutine", pprof.Handler("goroutine"))
	apiRouter.Handler(http.MethodGet, "/debug/pprof/mutex", pprof.Handler("mutex"))
	apiRouter.Handler(http.MethodGet, "/debug/pprof/heap", pprof.Handler("heap"))
	apiRouter.Handler(http.MethodGet, "/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	apiRouter.Handler(http.MethodGet, "/debug/pprof/block", pprof.Handler("block"))
	setupAPIRoutes(apiRouter, controllers.StatusController, controllers.ScheduleController, controllers.FixtureTasksController,
		controllers.TaskController, controllers.TasksController, controllers.QueueHealthController, controllers.MetricsController)
	return apiRouter
}

func setupAPIRoutes(apiRouter *httprouter.Router, endpoints ...EndpointController) {
	for _, endpoint := range endpoints {
		getEndpoint, ok := endpoint.(Get)
		if ok {
			apiRouter.GET(endpoint.GetPath(), getEndpoint.Get)
		}
		postEndpoint, ok := endpoint.(Post)
		if ok {
			apiRouter.POST(endpoint.GetPath(), postEndpoint.Post)
		}
		deleteEndpoint, ok := endpoint.(Delete)
		if ok {
			apiRouter.DELETE(endpoint.GetPath(), deleteEndpoint.Delete)
		}
	}
}

func writeErr(w http.ResponseWriter, err error) {
	writeStatus(w, http.StatusInternalServerError, err)
}

func writeNotFound(w http.ResponseWriter) {
	writeStatus(w, http.StatusNotFound, ErrNotFound)
}

func writeBadRequest(w http.ResponseWriter) {
	writeStatus(w, http.StatusBadRequest, ErrBadRequest)
}

func writeUnsupportedMediaType(w http.ResponseWriter) {
	writeStatus(w, http.StatusUnsupportedMediaType, ErrUnsupportedMediaType)
}

func writeStatus(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	if err != nil {
		w.Write([]byte(err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Write JSON
	var buf bytes.Buffer
	err := getJSON(&buf, data)
	if err != nil {
		// return error
		writeErr(w, err)
		return
	}
	w.WriteHeader(200)
	w.Header().Add(headerContentType, jsonContentTypeHeaderValue)
	w.Write(buf.Bytes())
}

func formatURL(params []httprouter.Param, urlTemplate string, urlParamNames ...string) (result string) {
	paramValues := make(map[string]string)
	for _, paramName := range urlParamNames {
		if val := findParam(params, paramName); len(val) > 0 {
			paramValues[paramName] = val
		}
	}
	result = urlTemplate
	for key, value := range paramValues {
		result = strings.ReplaceAll(result, ":"+key, value)
	}
	return result
}

func findParam(params httprouter.Params, name string) string {
	return params.ByName(name)
}
