package cluster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kubefleet/mcp-fleet/internal/logging"
)

// CapabilityMetricsRecorder receives capability cache events. This decouples
// the registry from the concrete instrumentation implementation.
type CapabilityMetricsRecorder interface {
	// RecordCapabilityHit records a cache hit for a cluster.
	RecordCapabilityHit(ctx context.Context, clusterName string)

	// RecordCapabilityMiss records a cache miss for a cluster.
	RecordCapabilityMiss(ctx context.Context, clusterName string)

	// RecordCapabilityBuild records a completed capability construction.
	RecordCapabilityBuild(ctx context.Context, clusterName string, duration time.Duration, success bool)
}

// Registry holds the named cluster contexts a dispatch can target. Contexts
// are registered at startup; capabilities are built lazily on first use and
// cached for the process lifetime. All methods are safe for concurrent use.
type Registry struct {
	creds   CredentialSource
	logger  *slog.Logger
	metrics CapabilityMetricsRecorder

	mu       sync.RWMutex
	contexts map[string]Context
	order    []string
	caps     map[string]Capability

	// connectGroup collapses concurrent capability builds for the same
	// cluster into a single construction.
	connectGroup singleflight.Group
}

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger for the registry.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics recorder for capability cache events.
func WithMetrics(metrics CapabilityMetricsRecorder) RegistryOption {
	return func(r *Registry) {
		r.metrics = metrics
	}
}

// NewRegistry creates a registry backed by the given credential source.
func NewRegistry(creds CredentialSource, opts ...RegistryOption) *Registry {
	r := &Registry{
		creds:    creds,
		logger:   slog.Default(),
		contexts: make(map[string]Context),
		caps:     make(map[string]Capability),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a cluster context under its name. Names are permanent for the
// life of the registry; registering a taken name fails with
// ErrDuplicateCluster.
func (r *Registry) Register(cc Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contexts[cc.Name]; exists {
		return &DuplicateClusterError{Name: cc.Name}
	}
	r.contexts[cc.Name] = cc
	r.order = append(r.order, cc.Name)

	r.logger.Debug("registered cluster context",
		logging.Cluster(cc.Name),
		slog.String("kube_context", cc.KubeContext),
	)
	return nil
}

// Len returns the number of registered clusters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contexts)
}

// List returns all registered contexts in registration order.
func (r *Registry) List() []Context {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Context, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.contexts[name])
	}
	return out
}

// Get returns the context registered under name.
func (r *Registry) Get(name string) (Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cc, ok := r.contexts[name]
	if !ok {
		return Context{}, &UnknownClusterError{Name: name}
	}
	return cc, nil
}

// Resolve expands a selector into concrete contexts. An all-fleet selector
// yields contexts in registration order. Resolution is all-or-nothing: the
// first unknown or repeated name fails the whole call, and an all-fleet
// selector over an empty registry resolves to an empty slice rather than an
// error.
func (r *Registry) Resolve(sel Selector) ([]Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sel.IsAll() {
		out := make([]Context, 0, len(r.order))
		for _, name := range r.order {
			out = append(out, r.contexts[name])
		}
		return out, nil
	}

	names := sel.List()
	out := make([]Context, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		cc, ok := r.contexts[name]
		if !ok {
			return nil, &UnknownClusterError{Name: name}
		}
		if seen[name] {
			return nil, &DuplicateClusterError{Name: name}
		}
		seen[name] = true
		out = append(out, cc)
	}
	return out, nil
}

// Capability returns the authenticated handle for a registered cluster,
// building it on first use. Concurrent calls for the same name share one
// construction; only successful builds are cached, so a failed cluster is
// retried on the next call.
func (r *Registry) Capability(ctx context.Context, name string) (Capability, error) {
	r.mu.RLock()
	cc, registered := r.contexts[name]
	cached, ok := r.caps[name]
	r.mu.RUnlock()

	if !registered {
		return nil, &UnknownClusterError{Name: name}
	}
	if ok {
		if r.metrics != nil {
			r.metrics.RecordCapabilityHit(ctx, name)
		}
		return cached, nil
	}

	if r.metrics != nil {
		r.metrics.RecordCapabilityMiss(ctx, name)
	}

	result, err, _ := r.connectGroup.Do(name, func() (interface{}, error) {
		// Double-check cache inside singleflight
		r.mu.RLock()
		cached, ok := r.caps[name]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		// The construction is shared by every waiter, so it must not
		// inherit any single caller's cancellation or deadline.
		buildCtx := context.WithoutCancel(ctx)

		start := time.Now()
		handle, err := r.creds.Connect(buildCtx, cc)
		if r.metrics != nil {
			r.metrics.RecordCapabilityBuild(ctx, name, time.Since(start), err == nil)
		}
		if err != nil {
			r.logger.Warn("capability construction failed",
				logging.Cluster(name),
				logging.SanitizedErr(err),
			)
			return nil, err
		}

		r.mu.Lock()
		r.caps[name] = handle
		r.mu.Unlock()

		r.logger.Debug("capability established",
			logging.Cluster(name),
			logging.Duration(time.Since(start)),
		)
		return handle, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Capability), nil
}
