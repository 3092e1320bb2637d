package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/mcp-vcluster/internal/remote"
	"github.com/giantswarm/mcp-vcluster/internal/schema"
	"github.com/giantswarm/mcp-vcluster/internal/server"
	"github.com/giantswarm/mcp-vcluster/internal/tools/output"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// envValueTrue is the string value used to enable boolean environment variables.
const envValueTrue = "true"

// serverName identifies the server to MCP clients and in health responses.
const serverName = "mcp-vcluster"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	DebugMode bool

	// Remote repository configuration
	Remote RemoteServeConfig

	// Metrics server configuration
	Metrics MetricsServeConfig

	// Response limits and secret masking
	Output OutputServeConfig
}

// RemoteServeConfig holds the settings for reading the vcluster repository.
type RemoteServeConfig struct {
	Repository string
	Token      string
	APIURL     string
	RawURL     string

	// Defaults applied when a tool call does not name a version, file or schema.
	DefaultVersion       string
	DefaultFile          string
	DefaultSchemaVersion string

	Timeout         time.Duration
	RetryMax        int
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// MetricsServeConfig holds configuration for the dedicated metrics server.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// OutputServeConfig holds the response limits applied to every tool.
// Zero limits select the built-in defaults.
type OutputServeConfig struct {
	MaxItems         int
	MaxResponseBytes int
	MaskSecrets      bool
}

// Validate checks the configuration before any server is started.
func (c *ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			c.Transport, transportStdio, transportSSE, transportStreamableHTTP)
	}

	if c.Transport != transportStdio {
		for name, path := range map[string]string{
			"sse-endpoint":     c.SSEEndpoint,
			"message-endpoint": c.MessageEndpoint,
			"http-endpoint":    c.HTTPEndpoint,
		} {
			if !strings.HasPrefix(path, "/") {
				return fmt.Errorf("%s must start with '/', got %q", name, path)
			}
		}
	}

	if err := validateRepository(c.Remote.Repository); err != nil {
		return err
	}
	if c.Remote.APIURL != "" {
		if err := validateEndpointURL(c.Remote.APIURL, "GitHub API URL"); err != nil {
			return err
		}
	}
	if c.Remote.RawURL != "" {
		if err := validateEndpointURL(c.Remote.RawURL, "GitHub raw content URL"); err != nil {
			return err
		}
	}
	if c.Remote.DefaultSchemaVersion != "" {
		if _, err := schema.Resolve(c.Remote.DefaultSchemaVersion); err != nil {
			return fmt.Errorf("invalid default schema version: %w", err)
		}
	}
	if c.Remote.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.Remote.CacheTTL)
	}
	if c.Remote.CacheMaxEntries < 0 {
		return fmt.Errorf("cache max entries must not be negative, got %d", c.Remote.CacheMaxEntries)
	}
	if c.Output.MaxItems < 0 {
		return fmt.Errorf("max items must not be negative, got %d", c.Output.MaxItems)
	}
	if c.Output.MaxResponseBytes < 0 {
		return fmt.Errorf("max response bytes must not be negative, got %d", c.Output.MaxResponseBytes)
	}
	return nil
}

// remoteConfig converts the serve settings into a remote client configuration.
func (c RemoteServeConfig) remoteConfig(logger *slog.Logger) remote.Config {
	return remote.Config{
		Repository: c.Repository,
		APIURL:     c.APIURL,
		RawURL:     c.RawURL,
		Token:      c.Token,
		Timeout:    c.Timeout,
		RetryMax:   c.RetryMax,
		Cache: remote.CacheConfig{
			TTL:        c.CacheTTL,
			MaxEntries: c.CacheMaxEntries,
		},
		Logger: logger,
	}
}

// serverOptions returns the server context options carrying the defaults.
func (c RemoteServeConfig) serverOptions() []server.Option {
	var opts []server.Option
	if c.DefaultVersion != "" {
		opts = append(opts, server.WithDefaultVersion(c.DefaultVersion))
	}
	if c.DefaultFile != "" {
		opts = append(opts, server.WithDefaultFile(c.DefaultFile))
	}
	if c.DefaultSchemaVersion != "" {
		opts = append(opts, server.WithDefaultSchemaVersion(c.DefaultSchemaVersion))
	}
	return opts
}

// outputConfig converts the serve settings into output limits. Values above
// the absolute limits are capped when the config is validated.
func (c OutputServeConfig) outputConfig() *output.Config {
	cfg := output.DefaultConfig()
	if c.MaxItems > 0 {
		cfg.MaxItems = c.MaxItems
	}
	if c.MaxResponseBytes > 0 {
		cfg.MaxResponseBytes = c.MaxResponseBytes
	}
	cfg.MaskSecrets = c.MaskSecrets
	return cfg
}

// validateRepository checks an "owner/name" GitHub slug.
func validateRepository(slug string) error {
	if slug == "" {
		return nil
	}
	owner, name, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("repository must be in owner/name form, got %q", slug)
	}
	return nil
}

// loadEnvIfEmpty loads an environment variable into a string pointer if it's empty.
func loadEnvIfEmpty(target *string, envKey string) {
	if *target == "" {
		*target = os.Getenv(envKey)
	}
}

// parseDurationEnv parses a duration from an environment variable value.
// Returns the parsed duration and true if successful, or zero and false if parsing fails.
// Logs a warning if the value is present but invalid.
func parseDurationEnv(value, envName string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment", "env", envName, "value", value, "error", err)
		return 0, false
	}
	return d, true
}

// parseIntEnv parses an integer from an environment variable value.
// Returns the parsed int and true if successful, or zero and false if parsing fails.
// Logs a warning if the value is present but invalid.
func parseIntEnv(value, envName string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment", "env", envName, "value", value, "error", err)
		return 0, false
	}
	return n, true
}

// validateEndpointURL validates a remote endpoint override. HTTPS is
// required unless the host is a loopback address, which keeps local test
// servers usable without allowing plain HTTP to the internet.
func validateEndpointURL(urlStr string, fieldName string) error {
	if urlStr == "" {
		return fmt.Errorf("%s must be a valid URL: empty URL provided", fieldName)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%s must be a valid URL: %w", fieldName, err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("%s must be a valid URL with HTTPS scheme", fieldName)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("%s must have a valid hostname", fieldName)
	}

	switch parsedURL.Scheme {
	case "https":
		return nil
	case "http":
		if isLoopbackHost(hostname) {
			return nil
		}
		return fmt.Errorf("%s must use HTTPS for non-loopback hosts (got: %s)", fieldName, parsedURL.Scheme)
	}
	return fmt.Errorf("%s must use HTTPS (got: %s)", fieldName, parsedURL.Scheme)
}

// isLoopbackHost reports whether hostname is localhost or a loopback IP.
// No DNS lookup is performed.
func isLoopbackHost(hostname string) bool {
	if strings.EqualFold(hostname, "localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}
