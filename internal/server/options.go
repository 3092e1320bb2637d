package server

import (
	"errors"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/remote"
	"github.com/giantswarm/mcp-vcluster/internal/tools/output"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithRemoteClient sets the remote repository client.
func WithRemoteClient(client remote.Client) Option {
	return func(sc *ServerContext) error {
		if client == nil {
			return ErrMissingRemoteClient
		}
		sc.remoteClient = client
		return nil
	}
}

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithServerName sets the server name in the configuration.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		sc.ensureConfig().ServerName = name
		return nil
	}
}

// WithVersion sets the server version reported by health endpoints.
func WithVersion(version string) Option {
	return func(sc *ServerContext) error {
		sc.ensureConfig().Version = version
		return nil
	}
}

// WithRepository records the remote repository slug.
func WithRepository(repository string) Option {
	return func(sc *ServerContext) error {
		sc.ensureConfig().Repository = repository
		return nil
	}
}

// WithDefaultFile sets the file fetched when a request names a version
// but no file.
func WithDefaultFile(file string) Option {
	return func(sc *ServerContext) error {
		if file != "" {
			sc.ensureConfig().DefaultFile = file
		}
		return nil
	}
}

// WithDefaultVersion sets the version fetched when a request names a file
// but no version.
func WithDefaultVersion(version string) Option {
	return func(sc *ServerContext) error {
		if version != "" {
			sc.ensureConfig().DefaultVersion = version
		}
		return nil
	}
}

// WithDefaultSchemaVersion sets the schema version used when a request
// does not name one and the document does not declare one.
func WithDefaultSchemaVersion(version string) Option {
	return func(sc *ServerContext) error {
		sc.ensureConfig().DefaultSchemaVersion = version
		return nil
	}
}

// WithOutputConfig sets the output limits and masking configuration.
func WithOutputConfig(config *output.Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.ensureConfig().Output = config.Clone().Validate()
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

func (sc *ServerContext) ensureConfig() *Config {
	if sc.config == nil {
		sc.config = NewDefaultConfig()
	}
	return sc.config
}

// Error definitions for ServerContext validation and operations.
var (
	ErrMissingRemoteClient = errors.New("remote client is required")
	ErrMissingLogger       = errors.New("logger is required")
	ErrMissingConfig       = errors.New("configuration is required")
	ErrServerShutdown      = errors.New("server context has been shutdown")
)
