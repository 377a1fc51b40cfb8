package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/handlers"
	"github.com/kubefleet/mcp-fleet/internal/instrumentation"
	"github.com/kubefleet/mcp-fleet/internal/logging"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// DefaultMaxInFlight bounds concurrent per-cluster operations when no limit
// is configured.
const DefaultMaxInFlight = 8

// MetricsRecorder receives dispatch events. This decouples the engine from
// the concrete instrumentation implementation.
type MetricsRecorder interface {
	// RecordDispatch records one completed dispatch with its overall
	// status string.
	RecordDispatch(ctx context.Context, tool, status string, duration time.Duration)

	// RecordClusterOperation records one per-cluster operation outcome.
	RecordClusterOperation(ctx context.Context, clusterName, tool string, ok bool, duration time.Duration)
}

// Engine validates invocations, resolves their target clusters, and fans the
// operation out with bounded concurrency. Results come back in resolution
// order regardless of completion order.
type Engine struct {
	tools    *toolreg.Registry
	clusters *cluster.Registry
	handlers *handlers.Set

	maxInFlight int
	timeout     time.Duration
	retry       handlers.RetryPolicy

	logger  *slog.Logger
	metrics MetricsRecorder
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithMaxInFlight bounds the number of clusters contacted concurrently.
func WithMaxInFlight(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxInFlight = n
		}
	}
}

// WithTimeout sets the per-dispatch deadline. Zero disables it; clusters
// that miss the deadline yield a Timeout result instead of being dropped.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithRetryPolicy sets the per-cluster retry policy.
func WithRetryPolicy(p handlers.RetryPolicy) Option {
	return func(e *Engine) {
		e.retry = p
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEngineMetrics sets the metrics recorder.
func WithEngineMetrics(metrics MetricsRecorder) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// NewEngine creates a dispatch engine over the given registries and handler
// set.
func NewEngine(tools *toolreg.Registry, clusters *cluster.Registry, set *handlers.Set, opts ...Option) *Engine {
	e := &Engine{
		tools:       tools,
		clusters:    clusters,
		handlers:    set,
		maxInFlight: DefaultMaxInFlight,
		retry:       handlers.DefaultRetryPolicy(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch runs one invocation. Validation and resolution failures return an
// error before any cluster is contacted; afterwards every failure is scoped
// to its cluster's slot in the response. The response always carries exactly
// one result per resolved cluster, in resolution order.
func (e *Engine) Dispatch(ctx context.Context, inv Invocation) (*AggregatedResponse, error) {
	start := time.Now()

	descriptor, args, err := e.tools.Validate(inv.Tool, inv.Args)
	if err != nil {
		return nil, err
	}

	targets, err := e.clusters.Resolve(inv.Selector)
	if err != nil {
		return nil, err
	}

	logger := logging.WithTool(e.logger, inv.Tool)
	if len(targets) == 0 {
		logger.Debug("dispatch resolved no clusters")
		return &AggregatedResponse{
			Tool:    inv.Tool,
			Status:  StatusSuccess,
			Results: []OperationResult{},
		}, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	results := make([]OperationResult, len(targets))

	g := &errgroup.Group{}
	g.SetLimit(e.maxInFlight)
	for slot, target := range targets {
		g.Go(func() error {
			results[slot] = e.runOne(ctx, descriptor, args, target, start)
			return nil
		})
	}
	// Workers never return errors; failures live in their slots.
	_ = g.Wait()

	response := &AggregatedResponse{
		Tool:    inv.Tool,
		Status:  overallStatus(results),
		Results: results,
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordDispatch(ctx, inv.Tool, string(response.Status), elapsed)
	}

	attrs := []slog.Attr{
		logging.Status(string(response.Status)),
		slog.Int("clusters", len(results)),
		slog.Int("succeeded", response.Succeeded()),
		logging.Duration(elapsed),
	}
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "dispatch complete", attrs...)
	return response, nil
}

// runOne executes the operation against a single target cluster and captures
// the outcome in result form. A deadline that expires before or during the
// operation becomes a Timeout result.
func (e *Engine) runOne(ctx context.Context, d toolreg.Descriptor, args map[string]any, cc cluster.Context, dispatchStart time.Time) OperationResult {
	opStart := time.Now()

	req := buildRequest(args, cc)
	ctx, span := instrumentation.StartClusterSpan(ctx, string(d.Verb), cc.Name,
		attribute.String(instrumentation.SpanAttrTool, d.Name),
		attribute.String(instrumentation.SpanAttrResourceKind, d.Kind),
		attribute.String(instrumentation.SpanAttrNamespace, req.Namespace),
		attribute.String(instrumentation.SpanAttrResourceName, req.Name),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		return e.finishOne(ctx, cc, d, opStart, nil, e.timeoutOrInternal(ctx, cc, dispatchStart, err))
	}

	capability, err := e.clusters.Capability(ctx, cc.Name)
	if err != nil {
		return e.finishOne(ctx, cc, d, opStart, nil, err)
	}

	payload, err := handlers.ExecuteWithRetry(ctx, e.handlers, e.retry, capability, d.Kind, d.Verb, req)
	if err != nil {
		err = e.timeoutOrInternal(ctx, cc, dispatchStart, err)
	}
	return e.finishOne(ctx, cc, d, opStart, payload, err)
}

// timeoutOrInternal converts errors caused by the dispatch deadline into a
// TimeoutError attributed to the cluster; other errors pass through.
func (e *Engine) timeoutOrInternal(ctx context.Context, cc cluster.Context, dispatchStart time.Time, err error) error {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Cluster: cc.Name, Elapsed: time.Since(dispatchStart)}
	}
	return err
}

func (e *Engine) finishOne(ctx context.Context, cc cluster.Context, d toolreg.Descriptor, opStart time.Time, payload any, err error) OperationResult {
	elapsed := time.Since(opStart)
	if e.metrics != nil {
		e.metrics.RecordClusterOperation(ctx, cc.Name, d.Name, err == nil, elapsed)
	}

	span := trace.SpanFromContext(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		e.logger.Warn("cluster operation failed",
			logging.Cluster(cc.Name),
			logging.Tool(d.Name),
			logging.SanitizedErr(err),
			logging.Duration(elapsed),
		)
		return OperationResult{Cluster: cc.Name, OK: false, Error: detailOf(err)}
	}

	instrumentation.SetSpanSuccess(span)
	return OperationResult{Cluster: cc.Name, OK: true, Payload: payload}
}
