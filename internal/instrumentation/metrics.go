package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency.
const (
	attrTool    = "tool"
	attrStatus  = "status"
	attrCluster = "cluster"
	attrResult  = "result"
)

// Status values for metric labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics provides methods for recording observability metrics. It satisfies
// the recorder interfaces of the dispatch engine and the cluster registry.
type Metrics struct {
	// Dispatch metrics
	dispatchesTotal  metric.Int64Counter
	dispatchDuration metric.Float64Histogram

	// Per-cluster operation metrics
	clusterOperationsTotal   metric.Int64Counter
	clusterOperationDuration metric.Float64Histogram

	// Capability cache metrics
	capabilityCacheHits   metric.Int64Counter
	capabilityCacheMisses metric.Int64Counter
	capabilityBuildTotal  metric.Int64Counter
	capabilityBuildTime   metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels (cluster,
	// tool) are included in per-operation metrics.
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.dispatchesTotal, err = meter.Int64Counter(
		"fleet_dispatches_total",
		metric.WithDescription("Total number of fleet dispatches"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_dispatches_total counter: %w", err)
	}

	m.dispatchDuration, err = meter.Float64Histogram(
		"fleet_dispatch_duration_seconds",
		metric.WithDescription("Fleet dispatch duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_dispatch_duration_seconds histogram: %w", err)
	}

	m.clusterOperationsTotal, err = meter.Int64Counter(
		"fleet_cluster_operations_total",
		metric.WithDescription("Total number of per-cluster operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_cluster_operations_total counter: %w", err)
	}

	m.clusterOperationDuration, err = meter.Float64Histogram(
		"fleet_cluster_operation_duration_seconds",
		metric.WithDescription("Per-cluster operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_cluster_operation_duration_seconds histogram: %w", err)
	}

	m.capabilityCacheHits, err = meter.Int64Counter(
		"fleet_capability_cache_hits_total",
		metric.WithDescription("Total number of capability cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_capability_cache_hits_total counter: %w", err)
	}

	m.capabilityCacheMisses, err = meter.Int64Counter(
		"fleet_capability_cache_misses_total",
		metric.WithDescription("Total number of capability cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_capability_cache_misses_total counter: %w", err)
	}

	m.capabilityBuildTotal, err = meter.Int64Counter(
		"fleet_capability_builds_total",
		metric.WithDescription("Total number of capability constructions"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_capability_builds_total counter: %w", err)
	}

	m.capabilityBuildTime, err = meter.Float64Histogram(
		"fleet_capability_build_duration_seconds",
		metric.WithDescription("Capability construction duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleet_capability_build_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordDispatch records one completed dispatch with its overall status
// (success, partial_failure, or failure).
func (m *Metrics) RecordDispatch(ctx context.Context, tool, status string, duration time.Duration) {
	if m.dispatchesTotal == nil || m.dispatchDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrTool, tool))
	}

	m.dispatchesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordClusterOperation records one per-cluster operation outcome.
//
// CARDINALITY NOTE: when detailedLabels is false (default), only the status
// label is recorded. Cluster and tool labels are added only when explicitly
// enabled; with large fleets keep them off and use traces instead.
func (m *Metrics) RecordClusterOperation(ctx context.Context, clusterName, tool string, ok bool, duration time.Duration) {
	if m.clusterOperationsTotal == nil || m.clusterOperationDuration == nil {
		return // Instrumentation not initialized
	}

	status := StatusSuccess
	if !ok {
		status = StatusError
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		attrs = append(attrs,
			attribute.String(attrCluster, clusterName),
			attribute.String(attrTool, tool),
		)
	}

	m.clusterOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.clusterOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCapabilityHit records a capability cache hit.
func (m *Metrics) RecordCapabilityHit(ctx context.Context, clusterName string) {
	if m.capabilityCacheHits == nil {
		return
	}
	m.capabilityCacheHits.Add(ctx, 1, m.clusterAttrs(clusterName))
}

// RecordCapabilityMiss records a capability cache miss.
func (m *Metrics) RecordCapabilityMiss(ctx context.Context, clusterName string) {
	if m.capabilityCacheMisses == nil {
		return
	}
	m.capabilityCacheMisses.Add(ctx, 1, m.clusterAttrs(clusterName))
}

// RecordCapabilityBuild records a completed capability construction.
func (m *Metrics) RecordCapabilityBuild(ctx context.Context, clusterName string, duration time.Duration, success bool) {
	if m.capabilityBuildTotal == nil || m.capabilityBuildTime == nil {
		return
	}

	result := StatusSuccess
	if !success {
		result = StatusError
	}

	attrs := []attribute.KeyValue{attribute.String(attrResult, result)}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrCluster, clusterName))
	}

	m.capabilityBuildTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.capabilityBuildTime.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

func (m *Metrics) clusterAttrs(clusterName string) metric.AddOption {
	if m.detailedLabels {
		return metric.WithAttributes(attribute.String(attrCluster, clusterName))
	}
	return metric.WithAttributes()
}
