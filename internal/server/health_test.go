package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
)

func newHealthTestContext(t *testing.T) *ServerContext {
	t.Helper()

	clusters, tools, set, engine := newTestDeps(t)
	require.NoError(t, clusters.Register(cluster.Context{Name: "alpha", KubeContext: "alpha"}))

	sc, err := NewServerContext(context.Background(),
		WithClusterRegistry(clusters),
		WithToolRegistry(tools),
		WithHandlerSet(set),
		WithEngine(engine),
	)
	require.NoError(t, err)
	return sc
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestLivenessHandler(t *testing.T) {
	sc := newHealthTestContext(t)
	hc := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	hc.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeHealth(t, rec).Status)
}

func TestLivenessHandlerAfterShutdown(t *testing.T) {
	sc := newHealthTestContext(t)
	hc := NewHealthChecker(sc)
	require.NoError(t, sc.Shutdown())

	rec := httptest.NewRecorder()
	hc.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadinessHandler(t *testing.T) {
	sc := newHealthTestContext(t)
	hc := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	hc.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", decodeHealth(t, rec).Checks["transport"])

	hc.SetReady(true)

	rec = httptest.NewRecorder()
	hc.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeHealth(t, rec)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["fleet"])
}

func TestReadinessHandlerEmptyFleet(t *testing.T) {
	clusters, tools, set, engine := newTestDeps(t)
	sc, err := NewServerContext(context.Background(),
		WithClusterRegistry(clusters),
		WithToolRegistry(tools),
		WithHandlerSet(set),
		WithEngine(engine),
	)
	require.NoError(t, err)

	hc := NewHealthChecker(sc)
	hc.SetReady(true)

	rec := httptest.NewRecorder()
	hc.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "no clusters registered", decodeHealth(t, rec).Checks["fleet"])
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newHealthTestContext(t)
	hc := NewHealthChecker(sc)
	hc.SetReady(true)

	rec := httptest.NewRecorder()
	hc.DetailedHealthHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeHealth(t, rec)
	assert.Equal(t, sc.Config().Version, body.Version)
	assert.NotEmpty(t, body.Uptime)
}

func TestRegisterHealthEndpoints(t *testing.T) {
	sc := newHealthTestContext(t)
	hc := NewHealthChecker(sc)
	hc.SetReady(true)

	mux := http.NewServeMux()
	hc.RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
