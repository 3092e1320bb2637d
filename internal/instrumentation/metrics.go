package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrTool      = "tool"
	attrOperation = "operation"
	attrVersion   = "version_class"
	attrReason    = "reason"
	attrSeverity  = "severity"
	attrDistro    = "distro"
	attrBacking   = "backing_store"
	attrSource    = "source"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
	resolutionsTotal     metric.Int64Counter
	validationIssues     metric.Int64Counter
	generatedConfigs     metric.Int64Counter

	// Remote metrics
	remoteRequestsTotal   metric.Int64Counter
	remoteRequestDuration metric.Float64Histogram

	// Remote response cache metrics
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheEvictions metric.Int64Counter
	cacheEntries   metric.Int64Gauge

	// detailedLabels adds the classified version to remote request metrics
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	if m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	if m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	if m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_vcluster_tool_invocations_total",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{invocation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_tool_invocations_total counter: %w", err)
	}

	if m.toolDuration, err = meter.Float64Histogram(
		"mcp_vcluster_tool_duration_seconds",
		metric.WithDescription("Tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_tool_duration_seconds histogram: %w", err)
	}

	if m.resolutionsTotal, err = meter.Int64Counter(
		"mcp_vcluster_content_resolutions_total",
		metric.WithDescription("Total number of configuration documents resolved, by source"),
		metric.WithUnit("{resolution}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_content_resolutions_total counter: %w", err)
	}

	if m.validationIssues, err = meter.Int64Counter(
		"mcp_vcluster_validation_issues_total",
		metric.WithDescription("Total number of validation issues reported, by severity"),
		metric.WithUnit("{issue}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_validation_issues_total counter: %w", err)
	}

	if m.generatedConfigs, err = meter.Int64Counter(
		"mcp_vcluster_generated_configs_total",
		metric.WithDescription("Total number of generated vcluster configurations"),
		metric.WithUnit("{config}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_generated_configs_total counter: %w", err)
	}

	if m.remoteRequestsTotal, err = meter.Int64Counter(
		"mcp_vcluster_remote_requests_total",
		metric.WithDescription("Total number of remote repository requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_remote_requests_total counter: %w", err)
	}

	if m.remoteRequestDuration, err = meter.Float64Histogram(
		"mcp_vcluster_remote_request_duration_seconds",
		metric.WithDescription("Remote repository request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_remote_request_duration_seconds histogram: %w", err)
	}

	if m.cacheHits, err = meter.Int64Counter(
		"mcp_vcluster_remote_cache_hits_total",
		metric.WithDescription("Total number of remote response cache hits"),
		metric.WithUnit("{hit}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_remote_cache_hits_total counter: %w", err)
	}

	if m.cacheMisses, err = meter.Int64Counter(
		"mcp_vcluster_remote_cache_misses_total",
		metric.WithDescription("Total number of remote response cache misses"),
		metric.WithUnit("{miss}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_remote_cache_misses_total counter: %w", err)
	}

	if m.cacheEvictions, err = meter.Int64Counter(
		"mcp_vcluster_remote_cache_evictions_total",
		metric.WithDescription("Total number of remote response cache evictions"),
		metric.WithUnit("{eviction}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_remote_cache_evictions_total counter: %w", err)
	}

	if m.cacheEntries, err = meter.Int64Gauge(
		"mcp_vcluster_remote_cache_entries",
		metric.WithDescription("Current number of cached remote responses"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mcp_vcluster_remote_cache_entries gauge: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records one tool call. Tool names must already be
// reduced with ToolLabel.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordResolution records where a tool's configuration document came from.
func (m *Metrics) RecordResolution(ctx context.Context, tool, source string) {
	if m == nil || m.resolutionsTotal == nil {
		return
	}
	m.resolutionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrSource, source),
	))
}

// RecordValidationIssues records the issues of one validation run.
func (m *Metrics) RecordValidationIssues(ctx context.Context, errors, warnings int) {
	if m == nil || m.validationIssues == nil {
		return
	}
	if errors > 0 {
		m.validationIssues.Add(ctx, int64(errors), metric.WithAttributes(attribute.String(attrSeverity, "error")))
	}
	if warnings > 0 {
		m.validationIssues.Add(ctx, int64(warnings), metric.WithAttributes(attribute.String(attrSeverity, "warning")))
	}
}

// RecordGeneratedConfig records a configuration produced by create-vcluster-config.
func (m *Metrics) RecordGeneratedConfig(ctx context.Context, distro, backingStore string) {
	if m == nil || m.generatedConfigs == nil {
		return
	}
	m.generatedConfigs.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrDistro, distro),
		attribute.String(attrBacking, backingStore),
	))
}

// RecordRemoteRequest records a remote repository operation.
//
// CARDINALITY NOTE: the version is only recorded when detailedLabels is
// enabled, and then only as its class (see ClassifyVersion).
func (m *Metrics) RecordRemoteRequest(ctx context.Context, operation, version, status string, duration time.Duration) {
	if m == nil || m.remoteRequestsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrVersion, ClassifyVersion(version)))
	}

	m.remoteRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if duration > 0 {
		m.remoteRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
}

// ObserveRemoteRequest lets Metrics observe the remote client directly.
func (m *Metrics) ObserveRemoteRequest(ctx context.Context, operation, status string, duration time.Duration) {
	m.RecordRemoteRequest(ctx, operation, "", status, duration)
}

// OnCacheHit records a remote response cache hit.
func (m *Metrics) OnCacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.Add(context.Background(), 1)
}

// OnCacheMiss records a remote response cache miss.
func (m *Metrics) OnCacheMiss() {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.Add(context.Background(), 1)
}

// OnCacheEviction records a remote response cache eviction.
func (m *Metrics) OnCacheEviction(reason string) {
	if m == nil || m.cacheEvictions == nil {
		return
	}
	m.cacheEvictions.Add(context.Background(), 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// OnCacheSizeChange records the current number of cached responses.
func (m *Metrics) OnCacheSizeChange(size int) {
	if m == nil || m.cacheEntries == nil {
		return
	}
	m.cacheEntries.Record(context.Background(), int64(size))
}
