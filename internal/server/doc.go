// Package server provides the ServerContext pattern and related infrastructure
// for the mcp-vcluster server.
//
// This package implements the core server architecture patterns including:
//
//   - ServerContext: Encapsulates all server dependencies and lifecycle management
//   - Functional Options: Clean dependency injection and configuration
//   - Health checks: Liveness, readiness and detailed status endpoints
//   - Metrics server: A dedicated Prometheus scrape endpoint
//
// All dependencies are injected using functional options, which keeps the
// tool handlers testable with a fake remote client.
//
// Example usage:
//
//	serverCtx, err := server.NewServerContext(ctx,
//		server.WithRemoteClient(client),
//		server.WithLogger(logging.NewSlogAdapter(logger)),
//		server.WithDefaultFile("chart/values.yaml"),
//		server.WithInstrumentationProvider(provider),
//	)
//	if err != nil {
//		return err
//	}
//	defer serverCtx.Shutdown()
//
// Configuration Management:
//
// The Config struct carries the server identity, the remote repository
// defaults (repository, version, file), the default schema version and the
// output limits. Each field has its own functional option.
package server
