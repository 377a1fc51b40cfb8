package server

import (
	"errors"
	"log/slog"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/dispatch"
	"github.com/kubefleet/mcp-fleet/internal/handlers"
	"github.com/kubefleet/mcp-fleet/internal/instrumentation"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

var (
	// ErrMissingClusterRegistry is returned when no cluster registry was provided.
	ErrMissingClusterRegistry = errors.New("cluster registry is required")

	// ErrMissingToolRegistry is returned when no tool registry was provided.
	ErrMissingToolRegistry = errors.New("tool registry is required")

	// ErrMissingEngine is returned when no dispatch engine was provided.
	ErrMissingEngine = errors.New("dispatch engine is required")

	// ErrNilOption is returned when a nil value is passed to an option.
	ErrNilOption = errors.New("option value must not be nil")
)

// Option configures a ServerContext during construction.
type Option func(*ServerContext) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrNilOption
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the server configuration.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrNilOption
		}
		sc.config = config
		return nil
	}
}

// WithClusterRegistry sets the cluster registry.
func WithClusterRegistry(reg *cluster.Registry) Option {
	return func(sc *ServerContext) error {
		if reg == nil {
			return ErrNilOption
		}
		sc.clusters = reg
		return nil
	}
}

// WithToolRegistry sets the tool registry.
func WithToolRegistry(reg *toolreg.Registry) Option {
	return func(sc *ServerContext) error {
		if reg == nil {
			return ErrNilOption
		}
		sc.tools = reg
		return nil
	}
}

// WithHandlerSet sets the resource handler set.
func WithHandlerSet(set *handlers.Set) Option {
	return func(sc *ServerContext) error {
		if set == nil {
			return ErrNilOption
		}
		sc.handlers = set
		return nil
	}
}

// WithEngine sets the dispatch engine.
func WithEngine(engine *dispatch.Engine) Option {
	return func(sc *ServerContext) error {
		if engine == nil {
			return ErrNilOption
		}
		sc.engine = engine
		return nil
	}
}

// WithInstrumentationProvider sets the instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}
