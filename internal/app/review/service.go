package review

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/metrics"
	"github.com/airenas/listreview/internal/pkg/review"
)

// ServiceData keeps data required for service work
type ServiceData struct {
	Jobs          JobRegistry
	Locks         LockManager
	Notifications Notifications
	Transcriber   Transcriber
	Listener      JobListener
	Hub           *Hub

	Port    int
	health  healthcheck.Handler
	metrics *metrics.Service
}

const metricsNamespace = "review_service"

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

//StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)

	portStr := strconv.Itoa(data.Port)
	srv := http.Server{
		Addr:              ":" + portStr,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		Handler:           r,
	}

	w := cmdapp.Log.Writer()
	defer w.Close()
	l := log.New(w, "", 0)
	gracehttp.SetLogger(l)

	return gracehttp.Serve(&srv)
}

//NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	if data.metrics == nil {
		data.metrics = metrics.NewService(metricsNamespace)
	}
	if data.health == nil {
		data.health = healthcheck.NewHandler()
	}
	router := mux.NewRouter().StrictSlash(true)
	handle := func(method, path, name string, h http.Handler) {
		router.Methods(method).Path(path).Handler(promhttp.InstrumentHandlerDuration(
			data.metrics.ResponseDur.MustCurryWith(prometheus.Labels{"handler": name}), h))
	}
	handle("GET", "/jobs", "jobs", listJobsHandler{data: data})
	handle("POST", "/jobs", "jobs", createJobHandler{data: data})
	handle("GET", "/jobs/{id}", "job", getJobHandler{data: data})
	handle("PATCH", "/jobs/{id}", "job", updateJobHandler{data: data})
	handle("DELETE", "/jobs/{id}", "job", deleteJobHandler{data: data})
	handle("POST", "/jobs/{id}/review", "review", requestReviewHandler{data: data})
	handle("GET", "/reviews", "reviews", queueHandler{data: data})
	handle("GET", "/locks", "locks", getLocksHandler{data: data})
	handle("POST", "/locks", "locks", lockHandler{data: data})
	handle("POST", "/verify", "verify", verifyHandler{data: data})
	handle("GET", "/notifications", "notifications", listNotificationsHandler{data: data})
	handle("PATCH", "/notifications", "notifications", markReadHandler{data: data})
	handle("POST", "/transcribe", "transcribe", submitHandler{data: data})
	handle("GET", "/transcribe/{id}", "transcribe", syncHandler{data: data})
	if data.Hub != nil {
		router.Handle("/subscribe", websocketHandler{hub: data.Hub})
	}
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
	router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	return router
}

func writeOK(w http.ResponseWriter, code int, data interface{}) {
	writeJSON(w, code, &response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, &response{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, r *response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(r); err != nil {
		cmdapp.Log.Error(errors.Wrap(err, "Can't write response"))
	}
}

// writeCoreError maps core errors to the HTTP codes
func writeCoreError(w http.ResponseWriter, err error, msg string) {
	switch errors.Cause(err) {
	case review.ErrNotFound:
		writeError(w, http.StatusNotFound, "Job not found")
	case review.ErrLocked:
		writeError(w, http.StatusConflict, "Task is already locked by another editor")
	case review.ErrNotReviewable:
		writeError(w, http.StatusBadRequest, "Job is not in a reviewable state")
	case review.ErrWrongTransition, review.ErrImmutable:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		cmdapp.Log.Error(errors.Wrap(err, msg))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("No body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

