package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/logging"
	"github.com/giantswarm/mcp-vcluster/internal/remote"
	"github.com/giantswarm/mcp-vcluster/internal/server"
	"github.com/giantswarm/mcp-vcluster/internal/tools/vcluster"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP vcluster server",
		Long: `Start the MCP vcluster server to provide tools for generating, querying
and validating vcluster configuration files via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Configuration files are read inline from tool arguments or fetched from the
vcluster GitHub repository. Set GITHUB_TOKEN to raise the GitHub API rate limit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load env vars only for flags not explicitly set by user
			loadRemoteEnvVars(cmd, &config.Remote)
			loadMetricsEnvVars(cmd, &config.Metrics)

			if cmd.Flags().Changed("github-token") {
				slog.Warn("GitHub token provided via CLI flag, it may be visible in process listings; prefer the GITHUB_TOKEN environment variable")
			}

			if err := config.Validate(); err != nil {
				return err
			}
			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging (default: false)")

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	// Remote repository flags
	cmd.Flags().StringVar(&config.Remote.Repository, "repository", remote.DefaultRepository, "GitHub repository holding vcluster releases (can also be set via VCLUSTER_REPOSITORY env var)")
	cmd.Flags().StringVar(&config.Remote.Token, "github-token", "", "GitHub token for API requests (can also be set via GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&config.Remote.APIURL, "github-api-url", "", "GitHub API base URL (can also be set via GITHUB_API_URL env var)")
	cmd.Flags().StringVar(&config.Remote.RawURL, "github-raw-url", "", "GitHub raw content base URL (can also be set via GITHUB_RAW_URL env var)")
	cmd.Flags().StringVar(&config.Remote.DefaultVersion, "default-version", remote.DefaultVersion, "Version fetched when a tool call names a file but no version")
	cmd.Flags().StringVar(&config.Remote.DefaultFile, "default-file", remote.DefaultFile, "File fetched when a tool call names a version but no file")
	cmd.Flags().StringVar(&config.Remote.DefaultSchemaVersion, "default-schema-version", "", "Schema version used when neither the call nor the document names one (default: latest)")
	cmd.Flags().DurationVar(&config.Remote.Timeout, "remote-timeout", 0, "Timeout for a single GitHub request (default: 30s)")
	cmd.Flags().IntVar(&config.Remote.RetryMax, "remote-retries", 0, "Retries for failed GitHub requests (default: 3)")
	cmd.Flags().DurationVar(&config.Remote.CacheTTL, "cache-ttl", remote.DefaultCacheTTL, "Time-to-live of cached GitHub responses (can also be set via REMOTE_CACHE_TTL env var)")
	cmd.Flags().IntVar(&config.Remote.CacheMaxEntries, "cache-max-entries", 0, "Maximum cached GitHub responses, 0 for the built-in default (can also be set via REMOTE_CACHE_MAX_ENTRIES env var)")

	// Output flags
	cmd.Flags().IntVar(&config.Output.MaxItems, "max-items", 0, "Maximum matches returned by a query, 0 for the built-in default of 100 (capped at 1000)")
	cmd.Flags().IntVar(&config.Output.MaxResponseBytes, "max-response-bytes", 0, "Maximum size of a rendered response, 0 for the built-in default of 512KiB (capped at 2MiB)")
	cmd.Flags().BoolVar(&config.Output.MaskSecrets, "mask-secrets", true, "Redact values stored under sensitive keys such as passwords and tokens")

	// Metrics flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated port when instrumentation is enabled (can also be set via METRICS_ENABLED env var)")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address (can also be set via METRICS_ADDR env var)")

	return cmd
}

// loadRemoteEnvVars loads remote repository settings from environment variables.
// Environment variables only override flag values when the flag was not explicitly set.
func loadRemoteEnvVars(cmd *cobra.Command, config *RemoteServeConfig) {
	if !cmd.Flags().Changed("repository") {
		if repo := os.Getenv("VCLUSTER_REPOSITORY"); repo != "" {
			config.Repository = repo
		}
	}
	if !cmd.Flags().Changed("github-token") {
		loadEnvIfEmpty(&config.Token, "GITHUB_TOKEN")
	}
	if !cmd.Flags().Changed("github-api-url") {
		loadEnvIfEmpty(&config.APIURL, "GITHUB_API_URL")
	}
	if !cmd.Flags().Changed("github-raw-url") {
		loadEnvIfEmpty(&config.RawURL, "GITHUB_RAW_URL")
	}
	if !cmd.Flags().Changed("cache-ttl") {
		if ttl, ok := parseDurationEnv(os.Getenv("REMOTE_CACHE_TTL"), "REMOTE_CACHE_TTL"); ok {
			config.CacheTTL = ttl
		}
	}
	if !cmd.Flags().Changed("cache-max-entries") {
		if n, ok := parseIntEnv(os.Getenv("REMOTE_CACHE_MAX_ENTRIES"), "REMOTE_CACHE_MAX_ENTRIES"); ok {
			config.CacheMaxEntries = n
		}
	}
}

// loadMetricsEnvVars loads metrics server settings from environment variables.
// This properly handles the case where user explicitly sets --metrics-enabled=false.
func loadMetricsEnvVars(cmd *cobra.Command, config *MetricsServeConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			config.Enabled = v == envValueTrue
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Addr = addr
		}
	}
}

// runServe contains the main server logic with support for multiple transports
func runServe(config ServeConfig) error {
	logger := logging.Setup(config.DebugMode, os.Stderr)

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize OpenTelemetry instrumentation provider
	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	instrumentationProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if shutdownErr := instrumentationProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(shutdownErr))
		}
	}()

	if instrumentationProvider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			"metrics_exporter", instrumentationConfig.MetricsExporter,
			"tracing_exporter", instrumentationConfig.TracingExporter)
	}

	remoteConfig := config.Remote.remoteConfig(logger.With(slog.String("component", "remote")))
	if instrumentationProvider.Enabled() {
		remoteConfig.Observer = instrumentationProvider.Metrics()
		remoteConfig.Cache.Metrics = instrumentationProvider.Metrics()
	}
	remoteClient, err := remote.NewGitHubClient(remoteConfig)
	if err != nil {
		return fmt.Errorf("failed to create remote client: %w", err)
	}

	logger.Info("remote repository configured",
		logging.Repository(remoteClient.Repository()),
		slog.Bool("authenticated", config.Remote.Token != ""),
		slog.Duration("cache_ttl", config.Remote.CacheTTL))

	serverContextOptions := []server.Option{
		server.WithRemoteClient(remoteClient),
		server.WithLogger(logging.NewSlogAdapter(logger)),
		server.WithServerName(serverName),
		server.WithVersion(rootCmd.Version),
		server.WithRepository(remoteClient.Repository()),
		server.WithOutputConfig(config.Output.outputConfig()),
		server.WithInstrumentationProvider(instrumentationProvider),
	}
	serverContextOptions = append(serverContextOptions, config.Remote.serverOptions()...)

	serverContext, err := server.NewServerContext(shutdownCtx, serverContextOptions...)
	if err != nil {
		remoteClient.Close()
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer(serverContext.Config().ServerName, rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := vcluster.RegisterTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register vcluster tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch config.Transport {
	case transportStdio:
		// Logs go to stderr, stdout carries the MCP protocol
		return runStdioServer(shutdownCtx, mcpSrv)
	case transportSSE:
		logger.Info("starting MCP vcluster server", "transport", config.Transport)
		return runSSEServer(mcpSrv, config.HTTPAddr, config.SSEEndpoint, config.MessageEndpoint, shutdownCtx, config.DebugMode)
	case transportStreamableHTTP:
		logger.Info("starting MCP vcluster server", "transport", config.Transport)
		return runStreamableHTTPServer(mcpSrv, config.HTTPAddr, config.HTTPEndpoint, shutdownCtx, instrumentationProvider, serverContext, config.Metrics)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", config.Transport)
	}
}
