// Package cmd provides the command-line interface for mcp-vcluster.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version and the embedded schema versions
//   - self-update: Updates the binary to the latest version from GitHub releases
//
// Command Structure:
//
//	mcp-vcluster [flags]                 # Starts the MCP server (default)
//	mcp-vcluster serve [flags]           # Explicitly starts the MCP server
//	mcp-vcluster version                 # Shows version and schema versions
//	mcp-vcluster self-update             # Updates to latest release
//	mcp-vcluster help [command]          # Shows help information
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Transport Configuration Examples:
//
//	mcp-vcluster serve --transport stdio           # Default STDIO transport
//	mcp-vcluster serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-vcluster serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// Remote configuration files are read from the vcluster GitHub repository.
// The repository, API endpoints, token, cache and the default version, file
// and schema version are configurable through flags or environment variables
// (VCLUSTER_REPOSITORY, GITHUB_TOKEN, GITHUB_API_URL, GITHUB_RAW_URL,
// REMOTE_CACHE_TTL, REMOTE_CACHE_MAX_ENTRIES).
//
// Response limits are set with --max-items and --max-response-bytes, and
// --mask-secrets=false returns sensitive values such as database data
// sources unredacted.
package cmd
