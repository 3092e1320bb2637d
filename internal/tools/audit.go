package tools

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

type invocationIDKey struct{}

// WithInvocationID stores id in ctx so handlers can correlate their logs
// with the audit record.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationIDFromContext returns the invocation ID stored by
// WrapWithAuditLogging, or "".
func InvocationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey{}).(string)
	return id
}

// WrapWithAuditLogging wraps a tool handler so every call is counted in the
// server statistics and, when an instrumentation provider is configured,
// written to the audit log together with the requested remote reference and
// the trace context.
func WrapWithAuditLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := InvocationIDFromContext(ctx)
		if id == "" {
			id = uuid.NewString()
			ctx = WithInvocationID(ctx, id)
		}

		invocation := instrumentation.NewToolInvocation(toolName).
			WithInvocationID(id).
			WithSpanContext(ctx)
		extractAuditInfoFromArgs(invocation, Args(request.GetArguments()))

		result, err := handler(ctx, request, sc)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
		case result != nil && result.IsError:
			// Tool failures travel in the result, not as Go errors.
			invocation.CompleteWithError(errors.New(resultText(result)))
		default:
			invocation.CompleteSuccess()
		}

		if sc != nil {
			sc.Stats().RecordInvocation(toolName, invocation.Success)
			if provider := sc.InstrumentationProvider(); provider != nil {
				provider.AuditLogger().LogToolInvocation(invocation)
			}
		}

		return result, err
	}
}

// extractAuditInfoFromArgs copies the remote reference and schema version
// from the request arguments. Inline content is never recorded.
func extractAuditInfoFromArgs(invocation *instrumentation.ToolInvocation, args Args) {
	version := args.String(ArgVersion)
	file := args.String(ArgFile)
	if version != "" || file != "" {
		invocation.WithRemote(version, file)
	}
	if args.String(ArgContent) != "" {
		invocation.WithSource("inline")
	} else if version != "" || file != "" {
		invocation.WithSource("remote")
	}
	if sv := args.String(ArgSchemaVersion); sv != "" {
		invocation.WithSchemaVersion(sv)
	}
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return "tool returned an error"
}
