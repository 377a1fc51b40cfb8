package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/dispatch"
	"github.com/kubefleet/mcp-fleet/internal/handlers"
	"github.com/kubefleet/mcp-fleet/internal/instrumentation"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle
// management.
type ServerContext struct {
	// Core dependencies
	clusters *cluster.Registry
	tools    *toolreg.Registry
	handlers *handlers.Set
	engine   *dispatch.Engine
	logger   *slog.Logger
	config   *Config

	// Observability
	instrumentationProvider *instrumentation.Provider

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// validate checks that required dependencies are present.
func (sc *ServerContext) validate() error {
	if sc.clusters == nil {
		return ErrMissingClusterRegistry
	}
	if sc.tools == nil {
		return ErrMissingToolRegistry
	}
	if sc.engine == nil {
		return ErrMissingEngine
	}
	return nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Clusters returns the cluster registry.
func (sc *ServerContext) Clusters() *cluster.Registry {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.clusters
}

// Tools returns the tool registry.
func (sc *ServerContext) Tools() *toolreg.Registry {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.tools
}

// Handlers returns the resource handler set.
func (sc *ServerContext) Handlers() *handlers.Set {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.handlers
}

// Engine returns the dispatch engine.
func (sc *ServerContext) Engine() *dispatch.Engine {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.engine
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// InstrumentationProvider returns the instrumentation provider, or nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and releases resources. Safe to call
// more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()

	sc.logger.Info("server context shut down")
	return nil
}
