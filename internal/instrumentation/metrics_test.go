package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter("test"), detailed)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt64(t *testing.T, data metricdata.Aggregation, match func(attribute.Set) bool) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if match == nil || match(dp.Attributes) {
			total += dp.Value
		}
	}
	return total
}

func hasAttr(key, value string) func(attribute.Set) bool {
	return func(set attribute.Set) bool {
		v, ok := set.Value(attribute.Key(key))
		return ok && v.AsString() == value
	}
}

func TestNewMetrics(t *testing.T) {
	metrics, _ := newTestMetrics(t, false)

	if metrics.httpRequestsTotal == nil {
		t.Error("httpRequestsTotal should not be nil")
	}
	if metrics.toolInvocationsTotal == nil {
		t.Error("toolInvocationsTotal should not be nil")
	}
	if metrics.toolDuration == nil {
		t.Error("toolDuration should not be nil")
	}
	if metrics.remoteRequestsTotal == nil {
		t.Error("remoteRequestsTotal should not be nil")
	}
	if metrics.cacheEntries == nil {
		t.Error("cacheEntries should not be nil")
	}
}

func TestRecordToolInvocation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordToolInvocation(ctx, "validate-config", StatusSuccess, 10*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "validate-config", StatusSuccess, 20*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "smart-query", StatusError, time.Millisecond)

	data := collect(t, reader)

	got := sumInt64(t, data["mcp_vcluster_tool_invocations_total"], hasAttr(attrTool, "validate-config"))
	if got != 2 {
		t.Errorf("validate-config invocations = %d, want 2", got)
	}
	got = sumInt64(t, data["mcp_vcluster_tool_invocations_total"], hasAttr(attrStatus, StatusError))
	if got != 1 {
		t.Errorf("error invocations = %d, want 1", got)
	}

	hist, ok := data["mcp_vcluster_tool_duration_seconds"].(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", data["mcp_vcluster_tool_duration_seconds"])
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("histogram count = %d, want 3", count)
	}
}

func TestRecordValidationIssues(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordValidationIssues(ctx, 3, 1)
	metrics.RecordValidationIssues(ctx, 0, 0)

	data := collect(t, reader)
	if got := sumInt64(t, data["mcp_vcluster_validation_issues_total"], hasAttr(attrSeverity, "error")); got != 3 {
		t.Errorf("error issues = %d, want 3", got)
	}
	if got := sumInt64(t, data["mcp_vcluster_validation_issues_total"], hasAttr(attrSeverity, "warning")); got != 1 {
		t.Errorf("warning issues = %d, want 1", got)
	}
}

func TestRecordResolutionAndGeneratedConfig(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordResolution(ctx, "smart-query", "remote")
	metrics.RecordResolution(ctx, "validate-config", "inline")
	metrics.RecordGeneratedConfig(ctx, "k3s", "embedded-etcd")

	data := collect(t, reader)
	if got := sumInt64(t, data["mcp_vcluster_content_resolutions_total"], hasAttr(attrSource, "remote")); got != 1 {
		t.Errorf("remote resolutions = %d, want 1", got)
	}
	if got := sumInt64(t, data["mcp_vcluster_generated_configs_total"], hasAttr(attrDistro, "k3s")); got != 1 {
		t.Errorf("k3s configs = %d, want 1", got)
	}
}

func TestRecordRemoteRequestDetailedLabels(t *testing.T) {
	tests := []struct {
		name         string
		detailed     bool
		wantVersions bool
	}{
		{name: "default labels omit version", detailed: false, wantVersions: false},
		{name: "detailed labels include version class", detailed: true, wantVersions: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, reader := newTestMetrics(t, tt.detailed)
			metrics.RecordRemoteRequest(context.Background(), OperationGetContent, "v0.20.0", StatusSuccess, 5*time.Millisecond)

			data := collect(t, reader)
			sum, ok := data["mcp_vcluster_remote_requests_total"].(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) != 1 {
				t.Fatalf("expected one remote request data point, got %#v", data["mcp_vcluster_remote_requests_total"])
			}
			v, found := sum.DataPoints[0].Attributes.Value(attribute.Key(attrVersion))
			if found != tt.wantVersions {
				t.Errorf("version_class present = %v, want %v", found, tt.wantVersions)
			}
			if found && v.AsString() != string(VersionClassRelease) {
				t.Errorf("version_class = %q, want %q", v.AsString(), VersionClassRelease)
			}
		})
	}
}

func TestCacheCallbacks(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.OnCacheHit()
	metrics.OnCacheHit()
	metrics.OnCacheMiss()
	metrics.OnCacheEviction(EvictionLRU)
	metrics.OnCacheSizeChange(7)

	data := collect(t, reader)
	if got := sumInt64(t, data["mcp_vcluster_remote_cache_hits_total"], nil); got != 2 {
		t.Errorf("cache hits = %d, want 2", got)
	}
	if got := sumInt64(t, data["mcp_vcluster_remote_cache_misses_total"], nil); got != 1 {
		t.Errorf("cache misses = %d, want 1", got)
	}
	if got := sumInt64(t, data["mcp_vcluster_remote_cache_evictions_total"], hasAttr(attrReason, EvictionLRU)); got != 1 {
		t.Errorf("lru evictions = %d, want 1", got)
	}

	gauge, ok := data["mcp_vcluster_remote_cache_entries"].(metricdata.Gauge[int64])
	if !ok || len(gauge.DataPoints) != 1 {
		t.Fatalf("expected one cache entries data point, got %#v", data["mcp_vcluster_remote_cache_entries"])
	}
	if gauge.DataPoints[0].Value != 7 {
		t.Errorf("cache entries = %d, want 7", gauge.DataPoints[0].Value)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()

	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, time.Millisecond)
	metrics.RecordToolInvocation(ctx, "list-versions", StatusSuccess, time.Millisecond)
	metrics.RecordResolution(ctx, "smart-query", "inline")
	metrics.RecordValidationIssues(ctx, 1, 1)
	metrics.RecordGeneratedConfig(ctx, "k8s", "database")
	metrics.ObserveRemoteRequest(ctx, OperationGetTags, StatusSuccess, time.Millisecond)
	metrics.OnCacheHit()
	metrics.OnCacheMiss()
	metrics.OnCacheEviction(EvictionExpired)
	metrics.OnCacheSizeChange(1)
}
