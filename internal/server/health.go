package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker provides liveness and readiness endpoints for the HTTP
// transports.
type HealthChecker struct {
	serverCtx *ServerContext
	ready     atomic.Bool
	startTime time.Time
}

// HealthResponse is the JSON body returned by the health endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// NewHealthChecker creates a health checker bound to the server context.
func NewHealthChecker(serverCtx *ServerContext) *HealthChecker {
	return &HealthChecker{
		serverCtx: serverCtx,
		startTime: time.Now(),
	}
}

// SetReady marks the server as ready (or not ready) to serve traffic.
func (hc *HealthChecker) SetReady(ready bool) {
	hc.ready.Store(ready)
}

// LivenessHandler reports whether the process is alive.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	if hc.serverCtx.IsShutdown() {
		hc.writeResponse(w, http.StatusServiceUnavailable, HealthResponse{Status: "shutting down"})
		return
	}
	hc.writeResponse(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ReadinessHandler reports whether the server is ready to accept requests.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	checks := hc.runChecks()

	status := http.StatusOK
	overall := "ready"
	for _, result := range checks {
		if result != "ok" {
			status = http.StatusServiceUnavailable
			overall = "not ready"
			break
		}
	}

	hc.writeResponse(w, status, HealthResponse{
		Status: overall,
		Checks: checks,
	})
}

// DetailedHealthHandler reports readiness plus version, uptime, and fleet
// status.
func (hc *HealthChecker) DetailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := hc.runChecks()

	status := http.StatusOK
	overall := "ready"
	for _, result := range checks {
		if result != "ok" {
			status = http.StatusServiceUnavailable
			overall = "not ready"
			break
		}
	}

	hc.writeResponse(w, status, HealthResponse{
		Status:  overall,
		Version: hc.serverCtx.Config().Version,
		Uptime:  time.Since(hc.startTime).Truncate(time.Second).String(),
		Checks:  checks,
	})
}

func (hc *HealthChecker) runChecks() map[string]string {
	checks := map[string]string{}

	if hc.serverCtx.IsShutdown() {
		checks["server"] = "shutting down"
	} else {
		checks["server"] = "ok"
	}

	if !hc.ready.Load() {
		checks["transport"] = "not ready"
	} else {
		checks["transport"] = "ok"
	}

	if hc.serverCtx.Clusters().Len() == 0 {
		checks["fleet"] = "no clusters registered"
	} else {
		checks["fleet"] = "ok"
	}

	return checks
}

func (hc *HealthChecker) writeResponse(w http.ResponseWriter, status int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RegisterHealthEndpoints attaches the health handlers to a mux.
func (hc *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", hc.LivenessHandler)
	mux.HandleFunc("/readyz", hc.ReadinessHandler)
	mux.HandleFunc("/healthz/detailed", hc.DetailedHealthHandler)
}
