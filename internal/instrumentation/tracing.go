package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mcp-vcluster package.
const TracerName = "github.com/giantswarm/mcp-vcluster"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrInvocationID correlates a span with the tool's log lines.
	SpanAttrInvocationID = "mcp.invocation_id"

	// SpanAttrVersion is the remote vcluster version (tag or branch).
	SpanAttrVersion = "vcluster.version"

	// SpanAttrVersionClass is the classified remote version (lower cardinality).
	SpanAttrVersionClass = "vcluster.version_class"

	// SpanAttrFile is the file path within the remote repository.
	SpanAttrFile = "vcluster.file"

	// SpanAttrSource is where the configuration came from (inline or remote).
	SpanAttrSource = "vcluster.source"

	// SpanAttrSchemaVersion is the schema version used for validation.
	SpanAttrSchemaVersion = "vcluster.schema_version"

	// SpanAttrQueryMode is the smart-query mode (path, smart, pattern).
	SpanAttrQueryMode = "vcluster.query_mode"

	// SpanAttrOperation is the remote operation (get_tags, get_content).
	SpanAttrOperation = "remote.operation"

	// SpanAttrRepository is the remote repository slug.
	SpanAttrRepository = "remote.repository"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new attribute builder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithTool adds the tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	if tool != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	}
	return b
}

// WithInvocationID adds the invocation ID attribute.
func (b *SpanAttributeBuilder) WithInvocationID(id string) *SpanAttributeBuilder {
	if id != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrInvocationID, id))
	}
	return b
}

// WithVersion adds the remote version and its class.
func (b *SpanAttributeBuilder) WithVersion(version string) *SpanAttributeBuilder {
	if version != "" {
		b.attrs = append(b.attrs,
			attribute.String(SpanAttrVersion, version),
			attribute.String(SpanAttrVersionClass, ClassifyVersion(version)),
		)
	}
	return b
}

// WithFile adds the remote file attribute.
func (b *SpanAttributeBuilder) WithFile(file string) *SpanAttributeBuilder {
	if file != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrFile, file))
	}
	return b
}

// WithSource adds the resolution source attribute.
func (b *SpanAttributeBuilder) WithSource(source string) *SpanAttributeBuilder {
	if source != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrSource, source))
	}
	return b
}

// WithSchemaVersion adds the schema version attribute.
func (b *SpanAttributeBuilder) WithSchemaVersion(version string) *SpanAttributeBuilder {
	if version != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrSchemaVersion, version))
	}
	return b
}

// WithQueryMode adds the query mode attribute.
func (b *SpanAttributeBuilder) WithQueryMode(mode string) *SpanAttributeBuilder {
	if mode != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrQueryMode, mode))
	}
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartRemoteSpan starts a client span for a remote repository operation.
func StartRemoteSpan(ctx context.Context, operation, repository string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs, attribute.String(SpanAttrOperation, operation))
	if repository != "" {
		allAttrs = append(allAttrs, attribute.String(SpanAttrRepository, repository))
	}
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "remote."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}
