package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubefleet/mcp-fleet/internal/instrumentation"
)

// MetricsServer exposes the Prometheus scrape endpoint on a dedicated
// HTTP listener, separate from the MCP transport.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// MetricsServerConfig configures the metrics listener.
type MetricsServerConfig struct {
	// Addr is the listen address, for example ":9090".
	Addr string

	// Path is the scrape path, defaulting to "/metrics".
	Path string
}

// NewMetricsServer builds a metrics server for an instrumentation provider
// that uses the Prometheus exporter. Returns an error when the provider has
// no Prometheus registry to expose.
func NewMetricsServer(cfg MetricsServerConfig, provider *instrumentation.Provider, logger *slog.Logger) (*MetricsServer, error) {
	if provider == nil || provider.PrometheusRegistry() == nil {
		return nil, fmt.Errorf("metrics server requires a prometheus-backed instrumentation provider")
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(provider.PrometheusRegistry(), promhttp.HandlerOpts{}))

	return &MetricsServer{
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

// Start serves the metrics endpoint until the listener is closed. It blocks,
// so run it on its own goroutine.
func (ms *MetricsServer) Start() error {
	ms.logger.Info("starting metrics server", slog.String("addr", ms.server.Addr))
	if err := ms.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}

// Shutdown stops the metrics listener gracefully.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}
