package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
)

// Timeouts shared by the MCP HTTP transports and the metrics server.
const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout is the default timeout for writing responses
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is the default idle timeout for keepalive connections
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMetricsAddr is the default listen address of the metrics server
	DefaultMetricsAddr = ":9090"
)

// ErrMetricsDisabled is returned by NewMetricsServer when metrics are turned off.
var ErrMetricsDisabled = errors.New("metrics server is disabled")

// MetricsServerConfig configures the dedicated metrics server.
type MetricsServerConfig struct {
	Addr                    string
	Enabled                 bool
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves Prometheus metrics on a port separate from MCP traffic.
type MetricsServer struct {
	httpServer *http.Server
	endpoint   string
}

// NewMetricsServer creates a metrics server. It requires an enabled
// instrumentation provider.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if !config.Enabled {
		return nil, ErrMetricsDisabled
	}
	if config.InstrumentationProvider == nil || !config.InstrumentationProvider.Enabled() {
		return nil, errors.New("metrics server requires an enabled instrumentation provider")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	endpoint := config.InstrumentationProvider.Config().PrometheusEndpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}

	s := &MetricsServer{endpoint: endpoint}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s, nil
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.endpoint, promhttp.Handler())
	return mux
}

// Addr returns the listen address.
func (s *MetricsServer) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving metrics until Shutdown is called.
func (s *MetricsServer) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
