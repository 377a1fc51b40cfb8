package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// Filters narrows list operations server-side.
type Filters struct {
	LabelSelector string
	FieldSelector string
}

// Request carries the per-cluster arguments of one operation. Not every
// field applies to every verb; handlers read what their verb needs.
type Request struct {
	Namespace string
	Name      string
	Filters   Filters

	// Manifest is the decoded resource body for create and update.
	Manifest map[string]any

	// Replicas is the desired count for scale.
	Replicas int64

	// Container and TailLines drive pod log retrieval.
	Container string
	TailLines int64
}

// Handler implements the standard verb set for one resource kind against a
// single cluster capability. Handlers are stateless; all per-call state
// travels in the Request.
type Handler interface {
	Kind() string
	List(ctx context.Context, cap cluster.Capability, req Request) (any, error)
	Get(ctx context.Context, cap cluster.Capability, req Request) (any, error)
	Create(ctx context.Context, cap cluster.Capability, req Request) (any, error)
	Update(ctx context.Context, cap cluster.Capability, req Request) (any, error)
	Delete(ctx context.Context, cap cluster.Capability, req Request) (any, error)
}

// Scaler is implemented by handlers whose kind supports a replica count.
type Scaler interface {
	Scale(ctx context.Context, cap cluster.Capability, req Request) (any, error)
}

// LogSource is implemented by handlers whose kind exposes container logs.
type LogSource interface {
	Logs(ctx context.Context, cap cluster.Capability, req Request) (any, error)
}

// unsupported provides UnsupportedOperationError for every standard verb.
// Read-only handlers embed it and override what they support.
type unsupported struct {
	kind string
}

func (u unsupported) List(context.Context, cluster.Capability, Request) (any, error) {
	return nil, &UnsupportedOperationError{Kind: u.kind, Verb: string(toolreg.VerbList)}
}

func (u unsupported) Get(context.Context, cluster.Capability, Request) (any, error) {
	return nil, &UnsupportedOperationError{Kind: u.kind, Verb: string(toolreg.VerbGet)}
}

func (u unsupported) Create(context.Context, cluster.Capability, Request) (any, error) {
	return nil, &UnsupportedOperationError{Kind: u.kind, Verb: string(toolreg.VerbCreate)}
}

func (u unsupported) Update(context.Context, cluster.Capability, Request) (any, error) {
	return nil, &UnsupportedOperationError{Kind: u.kind, Verb: string(toolreg.VerbUpdate)}
}

func (u unsupported) Delete(context.Context, cluster.Capability, Request) (any, error) {
	return nil, &UnsupportedOperationError{Kind: u.kind, Verb: string(toolreg.VerbDelete)}
}

// Set maps resource kinds to their handlers.
type Set struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewSet creates an empty handler set.
func NewSet() *Set {
	return &Set{handlers: make(map[string]Handler)}
}

// DefaultSet returns a set with every built-in resource kind registered.
func DefaultSet() *Set {
	s := NewSet()
	for _, h := range []Handler{
		NewPodHandler(),
		NewDeploymentHandler(),
		NewServiceHandler(),
		NewReplicaSetHandler(),
		NewConfigMapHandler(),
		NewEventHandler(),
		NewNamespaceHandler(),
		NewNodeHandler(),
	} {
		s.Register(h)
	}
	return s
}

// Register adds a handler under its kind, replacing any previous one.
func (s *Set) Register(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[h.Kind()] = h
}

// Get returns the handler for a resource kind.
func (s *Set) Get(kind string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[kind]
	return h, ok
}

// Execute routes one verb to the kind's handler. Extension verbs (scale,
// logs) resolve through the optional interfaces; a kind that does not
// implement the verb yields an UnsupportedOperationError.
func (s *Set) Execute(ctx context.Context, cap cluster.Capability, kind string, verb toolreg.Verb, req Request) (any, error) {
	h, ok := s.Get(kind)
	if !ok {
		return nil, fmt.Errorf("no handler registered for resource kind %q", kind)
	}

	switch verb {
	case toolreg.VerbList:
		return h.List(ctx, cap, req)
	case toolreg.VerbGet:
		return h.Get(ctx, cap, req)
	case toolreg.VerbCreate:
		return h.Create(ctx, cap, req)
	case toolreg.VerbUpdate:
		return h.Update(ctx, cap, req)
	case toolreg.VerbDelete:
		return h.Delete(ctx, cap, req)
	case toolreg.VerbScale:
		if scaler, ok := h.(Scaler); ok {
			return scaler.Scale(ctx, cap, req)
		}
		return nil, &UnsupportedOperationError{Kind: kind, Verb: string(verb)}
	case toolreg.VerbLogs:
		if source, ok := h.(LogSource); ok {
			return source.Logs(ctx, cap, req)
		}
		return nil, &UnsupportedOperationError{Kind: kind, Verb: string(verb)}
	default:
		return nil, &UnsupportedOperationError{Kind: kind, Verb: string(verb)}
	}
}
