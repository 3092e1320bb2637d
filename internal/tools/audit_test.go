package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/server"
)

type nopRemote struct{}

func (nopRemote) GetTags(context.Context) ([]string, error) { return nil, nil }

func (nopRemote) GetYAMLContent(context.Context, string, string) (string, error) { return "", nil }

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{Enabled: false})
	require.NoError(t, err)

	sc, err := server.NewServerContext(context.Background(),
		server.WithRemoteClient(nopRemote{}),
		server.WithInstrumentationProvider(provider),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestWrapWithAuditLoggingRecordsStats(t *testing.T) {
	sc := newServerContext(t)

	ok := WrapWithAuditLogging("smart-query", func(ctx context.Context, _ mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
		assert.NotEmpty(t, InvocationIDFromContext(ctx))
		return TextEnvelope("done").ToCallToolResult(), nil
	}, sc)
	failed := WrapWithAuditLogging("validate-config", func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error) {
		return ErrorEnvelope("Error executing validate-config: No content to validate").ToCallToolResult(), nil
	}, sc)
	broken := WrapWithAuditLogging("validate-config", func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error) {
		return nil, errors.New("transport failure")
	}, sc)

	result, err := ok(context.Background(), callRequest(map[string]any{"query": "distro", "version": "v0.20.0"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = failed(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	_, err = broken(context.Background(), callRequest(nil))
	assert.EqualError(t, err, "transport failure")

	stats := sc.Stats().Snapshot()
	assert.Equal(t, server.ToolStats{Invocations: 1}, stats["smart-query"])
	assert.Equal(t, server.ToolStats{Invocations: 2, Failures: 2}, stats["validate-config"])
}

func TestWrapWithAuditLoggingKeepsInvocationID(t *testing.T) {
	sc := newServerContext(t)

	var seen string
	handler := WrapWithAuditLogging("list-versions", func(ctx context.Context, _ mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
		seen = InvocationIDFromContext(ctx)
		return TextEnvelope("[]").ToCallToolResult(), nil
	}, sc)

	_, err := handler(WithInvocationID(context.Background(), "fixed-id"), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", seen)
}

func TestExtractAuditInfoFromArgs(t *testing.T) {
	tests := []struct {
		name          string
		args          Args
		wantSource    string
		wantVersion   string
		wantFile      string
		wantSchemaVer string
	}{
		{
			name:       "inline content",
			args:       Args{"content": "a: 1", "version": "v0.20.0"},
			wantSource: "inline", wantVersion: "v0.20.0",
		},
		{
			name:       "remote reference",
			args:       Args{"version": "v0.19.0", "file": "chart/values.yaml", "schema-version": "v0.19"},
			wantSource: "remote", wantVersion: "v0.19.0", wantFile: "chart/values.yaml", wantSchemaVer: "v0.19",
		},
		{
			name: "no source",
			args: Args{"query": "distro"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := instrumentation.NewToolInvocation("smart-query")
			extractAuditInfoFromArgs(inv, tt.args)
			assert.Equal(t, tt.wantSource, inv.Source)
			assert.Equal(t, tt.wantVersion, inv.Version)
			assert.Equal(t, tt.wantFile, inv.File)
			assert.Equal(t, tt.wantSchemaVer, inv.SchemaVersion)
		})
	}
}
