package vcluster

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-vcluster/internal/server"
	"github.com/giantswarm/mcp-vcluster/internal/tools/vcluster/testdata"
)

func TestToolsDefinitions(t *testing.T) {
	defs, err := Tools()
	require.NoError(t, err)
	require.Len(t, defs, len(ToolNames()))

	for i, def := range defs {
		assert.Equal(t, ToolNames()[i], def.Name)
	}

	smartQuery := defs[2]
	assert.Contains(t, smartQuery.InputSchema.Required, "query")
	assert.Contains(t, smartQuery.InputSchema.Properties, "content")
	assert.Contains(t, smartQuery.InputSchema.Properties, "limit")
}

func TestCreateConfigInputSchema(t *testing.T) {
	raw, err := createConfigInputSchema()
	require.NoError(t, err)

	var schema struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
		Version    string                    `json:"$schema"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))

	assert.Equal(t, "object", schema.Type)
	assert.Empty(t, schema.Version)
	for _, name := range []string{"distro", "backingStore", "highAvailability", "replicas", "format", "schema-version"} {
		assert.Contains(t, schema.Properties, name)
	}
	assert.Equal(t, []any{"embedded-database", "external-database", "embedded-etcd", "deployed-etcd"},
		schema.Properties["backingStore"]["enum"])
}

func TestRegisterTools(t *testing.T) {
	client := &testdata.SpyClient{Tags: []string{"v0.20.0"}}
	sc, err := server.NewServerContext(context.Background(), server.WithRemoteClient(client))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("mcp-vcluster-test", "test", mcpserver.WithToolCapabilities(false))
	require.NoError(t, RegisterTools(s, sc))

	registered := s.ListTools()
	require.Len(t, registered, len(ToolNames()))
	for _, name := range ToolNames() {
		require.Contains(t, registered, name)
	}

	var req mcp.CallToolRequest
	req.Params.Name = ToolListVersions
	result, err := registered[ToolListVersions].Handler(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "v0.20.0")

	req.Params.Name = ToolValidateConfig
	result, err = registered[ToolValidateConfig].Handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	stats := sc.Stats().Snapshot()
	assert.Equal(t, int64(1), stats[ToolListVersions].Invocations)
	assert.Equal(t, int64(1), stats[ToolValidateConfig].Failures)
}
