package vcluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/logging"
	"github.com/giantswarm/mcp-vcluster/internal/remote"
	"github.com/giantswarm/mcp-vcluster/internal/resolver"
	"github.com/giantswarm/mcp-vcluster/internal/server"
	"github.com/giantswarm/mcp-vcluster/internal/tools"
	"github.com/giantswarm/mcp-vcluster/internal/tools/output"
)

// Registered tool names.
const (
	ToolCreateConfig   = "create-vcluster-config"
	ToolListVersions   = "list-versions"
	ToolSmartQuery     = "smart-query"
	ToolExtractRules   = "extract-validation-rules"
	ToolValidateConfig = "validate-config"
)

// Stable prefixes of error envelope texts.
const (
	unknownToolPrefix   = "Unknown tool: "
	executeErrorPattern = "Error executing %s: %s"
)

// ErrGeneratedConfigInvalid means create-vcluster-config produced a document
// its own schema rejects. It signals a generator defect, not bad input.
var ErrGeneratedConfigInvalid = errors.New("generated configuration failed validation")

// UnknownToolError is returned for tool names that are not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return unknownToolPrefix + e.Name
}

type handlerFunc func(ctx context.Context, d *Dispatcher, args tools.Args) (*tools.Envelope, error)

// handlers is the dispatch table.
var handlers = map[string]handlerFunc{
	ToolCreateConfig:   handleCreateConfig,
	ToolListVersions:   handleListVersions,
	ToolSmartQuery:     handleSmartQuery,
	ToolExtractRules:   handleExtractRules,
	ToolValidateConfig: handleValidateConfig,
}

// toolNames is the registration order.
var toolNames = []string{
	ToolCreateConfig,
	ToolListVersions,
	ToolSmartQuery,
	ToolExtractRules,
	ToolValidateConfig,
}

// ToolNames returns the registered tool names.
func ToolNames() []string {
	out := make([]string, len(toolNames))
	copy(out, toolNames)
	return out
}

// Dispatcher runs tools against a remote client with shared defaults.
type Dispatcher struct {
	client               remote.Client
	renderer             *output.Renderer
	masker               *output.Masker
	defaultVersion       string
	defaultFile          string
	defaultSchemaVersion string
	logger               *slog.Logger
	metrics              *instrumentation.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutputConfig sets output limits and secret masking.
func WithOutputConfig(cfg *output.Config) Option {
	return func(d *Dispatcher) {
		d.renderer = output.NewRenderer(cfg)
		d.masker = nil
		if c := d.renderer.Config(); c.MaskSecrets {
			d.masker = output.NewMasker(c.SensitiveKeys)
		}
	}
}

// WithDefaults sets the remote version, remote file and schema version used
// when a call does not name them. Empty values keep the current default.
func WithDefaults(version, file, schemaVersion string) Option {
	return func(d *Dispatcher) {
		if version != "" {
			d.defaultVersion = version
		}
		if file != "" {
			d.defaultFile = file
		}
		if schemaVersion != "" {
			d.defaultSchemaVersion = schemaVersion
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a Dispatcher. client may be nil when only inline
// content is used.
func NewDispatcher(client remote.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:         client,
		defaultVersion: remote.DefaultVersion,
		defaultFile:    remote.DefaultFile,
		logger:         slog.Default(),
	}
	WithOutputConfig(output.DefaultConfig())(d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDispatcherForServer creates a Dispatcher from the server context's
// remote client, configuration, logger and metrics.
func NewDispatcherForServer(sc *server.ServerContext) *Dispatcher {
	cfg := sc.Config()
	opts := []Option{
		WithOutputConfig(cfg.Output),
		WithDefaults(cfg.DefaultVersion, cfg.DefaultFile, cfg.DefaultSchemaVersion),
		WithMetrics(sc.InstrumentationProvider().Metrics()),
	}
	if adapter, ok := sc.Logger().(*logging.SlogAdapter); ok {
		opts = append(opts, WithLogger(adapter.Logger()))
	}
	return NewDispatcher(sc.RemoteClient(), opts...)
}

// ExecuteToolHandler runs the tool name with args using default settings.
// It always returns an envelope.
func ExecuteToolHandler(ctx context.Context, name string, args map[string]any, client remote.Client) *tools.Envelope {
	return NewDispatcher(client).Execute(ctx, name, args)
}

// Execute runs the tool name with args. It never panics and always returns
// an envelope; failures are reported with isError set.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) (env *tools.Envelope) {
	start := time.Now()
	label := instrumentation.ToolLabel(name, toolNames)

	id := tools.InvocationIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	logger := logging.WithTool(d.logger, label).With(logging.InvocationID(id))

	h, ok := handlers[name]
	if !ok {
		err := &UnknownToolError{Name: name}
		logger.Warn("unknown tool requested", slog.String("requested", name))
		d.metrics.RecordToolInvocation(ctx, label, instrumentation.StatusError, time.Since(start))
		return tools.ErrorEnvelope(err.Error())
	}

	ctx, span := instrumentation.StartToolSpan(ctx, name,
		instrumentation.NewSpanAttributeBuilder().
			WithInvocationID(id).
			WithVersion(tools.Args(args).String(tools.ArgVersion)).
			WithFile(tools.Args(args).String(tools.ArgFile)).
			WithSchemaVersion(tools.Args(args).String(tools.ArgSchemaVersion)).
			Build()...)
	defer span.End()

	logger.Debug("tool invocation started")

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("internal error: %v", r)
				logger.Error("tool handler panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
		}()
		env, err = h(ctx, d, tools.Args(args))
	}()
	if err == nil && env == nil {
		err = errors.New("tool returned no result")
	}

	duration := time.Since(start)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		env = tools.ErrorEnvelopef(executeErrorPattern, name, err.Error())
		logger.Warn("tool invocation failed",
			logging.Err(err),
			slog.Duration(logging.KeyDuration, duration))
	} else {
		instrumentation.SetSpanSuccess(span)
		logger.Info("tool invocation completed",
			slog.Duration(logging.KeyDuration, duration))
	}
	d.metrics.RecordToolInvocation(ctx, label, status, duration)
	return env
}

// resolve produces the document for a call. Remote references fall back to
// the dispatcher defaults.
func (d *Dispatcher) resolve(ctx context.Context, tool string, src resolver.Source) (*resolver.Resolution, error) {
	if !src.HasInline() && src.HasRemote() && src.File == "" {
		src.File = d.defaultFile
	}
	if !src.HasInline() && src.HasRemote() && src.Version == "" {
		src.Version = d.defaultVersion
	}

	ctx, span := instrumentation.StartSpan(ctx, "resolve",
		instrumentation.NewSpanAttributeBuilder().
			WithTool(tool).
			WithVersion(src.Version).
			WithFile(src.File).
			Build()...)
	defer span.End()

	res, err := resolver.Resolve(ctx, src, d.client)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithSource(res.Source).Build()...)
	instrumentation.SetSpanSuccess(span)
	d.metrics.RecordResolution(ctx, tool, res.Source)
	return res, nil
}

// render encodes v in the format named by args and appends a truncation
// notice when the response had to be cut.
func (d *Dispatcher) render(args tools.Args, v any) (*tools.Envelope, error) {
	format, err := output.ParseFormat(args.String(tools.ArgFormat))
	if err != nil {
		return nil, err
	}
	text, warning, err := d.renderer.Render(v, format)
	if err != nil {
		return nil, err
	}
	env := tools.TextEnvelope(text)
	if warning != nil {
		env.Append(warning.Message)
	}
	return env, nil
}

func sourceFromArgs(args tools.Args) resolver.Source {
	return resolver.Source{
		Version: args.String(tools.ArgVersion),
		File:    args.String(tools.ArgFile),
		Content: args.RawString(tools.ArgContent),
	}
}
