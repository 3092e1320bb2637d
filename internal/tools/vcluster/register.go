package vcluster

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-vcluster/internal/server"
	"github.com/giantswarm/mcp-vcluster/internal/tools"
)

// Tools returns the MCP definitions of all registered tools.
func Tools() ([]mcp.Tool, error) {
	formatOption := mcp.WithString(tools.ArgFormat,
		mcp.Description("Output format: json (default), yaml or table"),
		mcp.Enum("json", "yaml", "table"),
	)
	versionOption := mcp.WithString(tools.ArgVersion,
		mcp.Description("vcluster version (tag or branch) to read the configuration from, such as v0.20.0 (default: main)"),
	)
	fileOption := mcp.WithString(tools.ArgFile,
		mcp.Description("Path of the configuration file in the vcluster repository (default: chart/values.yaml)"),
	)
	contentOption := mcp.WithString(tools.ArgContent,
		mcp.Description("Inline YAML or JSON configuration. Takes precedence over version and file"),
	)
	schemaVersionOption := mcp.WithString(tools.ArgSchemaVersion,
		mcp.Description("Schema version to apply, such as v0.20 (default: declared by the document, else latest)"),
	)

	createSchema, err := createConfigInputSchema()
	if err != nil {
		return nil, err
	}

	return []mcp.Tool{
		mcp.NewToolWithRawSchema(ToolCreateConfig,
			"Generate a vcluster configuration from high-level choices such as distribution and backing store. "+
				"The result is validated against the schema before it is returned.",
			createSchema,
		),
		mcp.NewTool(ToolListVersions,
			mcp.WithDescription("List the vcluster versions available in the remote repository, default branch first"),
			formatOption,
		),
		mcp.NewTool(ToolSmartQuery,
			mcp.WithDescription("Search a vcluster configuration by path (controlPlane.distro), wildcard pattern (sync.*.ingresses) or free text (distro)"),
			mcp.WithString(tools.ArgQuery,
				mcp.Required(),
				mcp.Description("Path, pattern or free-text search term"),
			),
			mcp.WithString(tools.ArgMode,
				mcp.Description("Query mode: auto (default), path, smart or pattern"),
				mcp.Enum("auto", "path", "smart", "pattern"),
			),
			mcp.WithBoolean(tools.ArgKeysOnly,
				mcp.Description("Match free-text searches against field names only (default: false)"),
			),
			mcp.WithNumber(tools.ArgLimit,
				mcp.Description("Maximum number of matches to return (default: 100, max: 1000)"),
			),
			versionOption,
			fileOption,
			contentOption,
			formatOption,
		),
		mcp.NewTool(ToolExtractRules,
			mcp.WithDescription("Extract the validation rules of a vcluster configuration schema as a flat list of field paths"),
			schemaVersionOption,
			formatOption,
		),
		mcp.NewTool(ToolValidateConfig,
			mcp.WithDescription("Validate a vcluster configuration given inline or by version and file"),
			versionOption,
			fileOption,
			contentOption,
			schemaVersionOption,
			formatOption,
		),
	}, nil
}

// RegisterTools registers all vcluster tools with the MCP server. Every
// handler is wrapped with audit logging.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	definitions, err := Tools()
	if err != nil {
		return fmt.Errorf("failed to build tool definitions: %w", err)
	}

	d := NewDispatcherForServer(sc)
	for _, tool := range definitions {
		s.AddTool(tool, tools.WrapWithAuditLogging(tool.Name, handlerFor(d, tool.Name), sc))
	}
	return nil
}

func handlerFor(d *Dispatcher, name string) tools.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
		return d.Execute(ctx, name, request.GetArguments()).ToCallToolResult(), nil
	}
}
