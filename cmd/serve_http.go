package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/server"
	"github.com/giantswarm/mcp-vcluster/internal/server/middleware"
)

// newHTTPHandler builds the handler chain for the streamable HTTP transport:
// the MCP endpoint and health checks, wrapped in request size limits, CORS,
// security headers and HTTP metrics.
func newHTTPHandler(mcpSrv *mcpserver.MCPServer, endpoint string, provider *instrumentation.Provider, healthChecker *server.HealthChecker) (http.Handler, error) {
	mux := http.NewServeMux()

	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	)
	mux.Handle(endpoint, mcpHandler)

	// Metrics are served on a separate metrics server, see startMetricsServer.

	healthChecker.RegisterHealthEndpoints(mux)

	allowedOrigins, err := middleware.ValidateAllowedOrigins(os.Getenv("ALLOWED_ORIGINS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALLOWED_ORIGINS: %w", err)
	}

	var handler http.Handler = mux
	handler = middleware.MaxRequestSize(middleware.DefaultMaxRequestBytes)(handler)
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = middleware.SecurityHeaders(os.Getenv("ENABLE_HSTS") == envValueTrue)(handler)
	handler = middleware.HTTPMetrics(provider)(handler)
	return handler, nil
}

// runStreamableHTTPServer runs the server with Streamable HTTP transport
func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, addr, endpoint string, ctx context.Context, provider *instrumentation.Provider, sc *server.ServerContext, metricsConfig MetricsServeConfig) error {
	healthChecker := server.NewHealthChecker(sc)
	handler, err := newHTTPHandler(mcpSrv, endpoint, provider, healthChecker)
	if err != nil {
		return err
	}

	slog.Info("streamable HTTP server starting",
		"addr", addr,
		"endpoint", endpoint,
		"health_endpoints", []string{"/healthz", "/readyz"})

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider != nil && provider.Enabled() {
		metricsServer, err = startMetricsServer(metricsConfig, provider)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// Create HTTP server with security timeouts
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: server.DefaultReadHeaderTimeout,
		WriteTimeout:      server.DefaultWriteTimeout,
		IdleTimeout:       server.DefaultIdleTimeout,
	}

	// Start server in goroutine
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	// Wait for either shutdown signal or server completion
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		// Fail readiness first so load balancers stop routing new sessions here.
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		// Shutdown metrics server first
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error shutting down metrics server", "error", err)
			}
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
				slog.Error("error shutting down metrics server", "error", shutdownErr)
			}
		}
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		slog.Info("HTTP server stopped normally")
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}

// startMetricsServer starts the dedicated metrics server on a separate port.
// This isolates Prometheus metrics from the main application traffic.
func startMetricsServer(config MetricsServeConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 config.Enabled,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Start metrics server in background
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()

	slog.Info("metrics server started", "addr", metricsServer.Addr(), "endpoint", "/metrics")
	return metricsServer, nil
}
