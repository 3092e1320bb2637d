package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// runStdioServer runs the server with STDIO transport until stdin closes or
// ctx is cancelled. Nothing but protocol messages may be written to stdout.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	stdioServer := mcpserver.NewStdioServer(mcpSrv)
	stdioServer.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	err := stdioServer.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
