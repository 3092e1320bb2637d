package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures one tool call for audit logging.
type ToolInvocation struct {
	Tool         string
	InvocationID string

	// Source describes where the configuration came from (inline or remote).
	Source        string
	Version       string
	File          string
	SchemaVersion string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a call to tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithInvocationID sets the invocation ID.
func (ti *ToolInvocation) WithInvocationID(id string) *ToolInvocation {
	ti.InvocationID = id
	return ti
}

// WithRemote records the remote version and file the tool asked for.
func (ti *ToolInvocation) WithRemote(version, file string) *ToolInvocation {
	ti.Version = version
	ti.File = file
	return ti
}

// WithSource records the resolution source.
func (ti *ToolInvocation) WithSource(source string) *ToolInvocation {
	ti.Source = source
	return ti
}

// WithSchemaVersion records the requested schema version.
func (ti *ToolInvocation) WithSchemaVersion(version string) *ToolInvocation {
	ti.SchemaVersion = version
	return ti
}

// WithSpanContext copies trace and span IDs from ctx, if it carries a span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete stops timing and records the outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError marks the invocation as failed with err.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// VersionClass returns the classified remote version.
func (ti *ToolInvocation) VersionClass() string {
	return ClassifyVersion(ti.Version)
}

// LogAttrs returns low-cardinality attributes suitable for aggregation.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("version_class", ti.VersionClass()),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Source != "" {
		attrs = append(attrs, slog.String("source", ti.Source))
	}
	return attrs
}

// LogAuditAttrs returns the full audit record, including the exact remote
// reference and trace context.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := ti.LogAttrs()
	if ti.InvocationID != "" {
		attrs = append(attrs, slog.String("invocation_id", ti.InvocationID))
	}
	if ti.Version != "" {
		attrs = append(attrs, slog.String("version", ti.Version))
	}
	if ti.File != "" {
		attrs = append(attrs, slog.String("file", ti.File))
	}
	if ti.SchemaVersion != "" {
		attrs = append(attrs, slog.String("schema_version", ti.SchemaVersion))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

// AuditLogger writes one structured record per tool invocation.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an audit logger. A nil logger uses slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes the audit record for ti. Failed invocations are
// logged at warn level.
func (a *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if a == nil || ti == nil {
		return
	}
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "tool_invocation", ti.LogAuditAttrs()...)
}

// TraceIDFromContext returns the trace ID of the span in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	return GetTraceID(ctx)
}
