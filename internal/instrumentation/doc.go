// Package instrumentation provides OpenTelemetry instrumentation for the
// mcp-vcluster server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Tool Metrics:
//   - mcp_vcluster_tool_invocations_total: Counter of tool calls by tool and status
//   - mcp_vcluster_tool_duration_seconds: Histogram of tool call durations
//   - mcp_vcluster_content_resolutions_total: Counter of resolved documents by tool and source
//   - mcp_vcluster_validation_issues_total: Counter of validation issues by severity
//   - mcp_vcluster_generated_configs_total: Counter of generated configurations by distro and backing store
//
// Remote Repository Metrics:
//   - mcp_vcluster_remote_requests_total: Counter of GitHub requests by operation and status
//   - mcp_vcluster_remote_request_duration_seconds: Histogram of GitHub request durations
//   - mcp_vcluster_remote_cache_{hits,misses,evictions}_total, mcp_vcluster_remote_cache_entries
//
// Tool names that are not registered are recorded as "unknown", and remote
// versions only ever appear as a class (default, release, prerelease,
// other), so callers cannot grow label cardinality.
//
// # Tracing
//
// Spans are created for tool invocations ("tool.<name>") and remote
// repository operations ("remote.<operation>").
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_EXPORTER_OTLP_INSECURE: Use plain HTTP for OTLP export
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-vcluster)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "validate-config", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
