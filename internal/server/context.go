package server

import (
	"context"
	"sync"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/logging"
	"github.com/giantswarm/mcp-vcluster/internal/remote"
	"github.com/giantswarm/mcp-vcluster/internal/tools/output"
)

// Logger is the logging interface used throughout the server.
type Logger = logging.Logger

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle management.
type ServerContext struct {
	// Core dependencies
	remoteClient remote.Client
	logger       Logger
	config       *Config

	instrumentationProvider *instrumentation.Provider

	// In-process invocation counters for the detailed health endpoint
	stats *Stats

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool
}

// ToolStats counts the invocations of one tool.
type ToolStats struct {
	Invocations int64 `json:"invocations"`
	Failures    int64 `json:"failures"`
}

// Stats tracks tool invocations since the server started.
type Stats struct {
	mu    sync.RWMutex
	tools map[string]ToolStats
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{tools: make(map[string]ToolStats)}
}

// RecordInvocation counts one call to tool.
func (s *Stats) RecordInvocation(tool string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.tools[tool]
	ts.Invocations++
	if !success {
		ts.Failures++
	}
	s.tools[tool] = ts
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() map[string]ToolStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ToolStats, len(s.tools))
	for k, v := range s.tools {
		out[k] = v
	}
	return out
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: logging.DefaultLogger(),
		stats:  NewStats(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// RemoteClient returns the client used to fetch versions and remote
// configuration files.
func (sc *ServerContext) RemoteClient() remote.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.remoteClient
}

// Logger returns the logger interface.
func (sc *ServerContext) Logger() Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// InstrumentationProvider returns the OpenTelemetry provider, or nil when
// none was configured.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// Stats returns the invocation counters.
func (sc *ServerContext) Stats() *Stats {
	return sc.stats
}

// Shutdown gracefully shuts down the server context.
// This cancels the context and releases the remote client's resources.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")

	if closer, ok := sc.remoteClient.(interface{ Close() }); ok {
		closer.Close()
	}

	if sc.cancel != nil {
		sc.cancel()
	}

	sc.shutdown = true

	sc.logger.Info("Server context shutdown complete")
	return nil
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.remoteClient == nil {
		return ErrMissingRemoteClient
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Config holds the server configuration.
type Config struct {
	// Server settings
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// Remote repository settings
	Repository     string `json:"repository"`
	DefaultVersion string `json:"defaultVersion"`
	DefaultFile    string `json:"defaultFile"`

	// DefaultSchemaVersion is used when neither the request nor the document
	// names a schema version. Empty means the latest embedded schema.
	DefaultSchemaVersion string `json:"defaultSchemaVersion,omitempty"`

	// Output limits and masking
	Output *output.Config `json:"output"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:     "mcp-vcluster",
		Version:        "0.1.0",
		Repository:     remote.DefaultRepository,
		DefaultVersion: remote.DefaultVersion,
		DefaultFile:    remote.DefaultFile,
		Output:         output.DefaultConfig(),
	}
}
