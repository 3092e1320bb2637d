// Package logging provides structured logging utilities for the mcp-vcluster application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog, JSON on stderr
//   - Consistent attribute naming across the codebase
//   - Host and token sanitization for the GitHub client
//   - SlogAdapter for components that expect a leveled key/value logger
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "validate-config")
//	logger.Info("configuration validated",
//	    logging.SchemaVersion("v0.20"),
//	    logging.Source("inline"))
//
// # Security Considerations
//
//   - GitHub tokens are never logged, only their length via SanitizeToken
//   - API URLs have IP addresses redacted via SanitizeHost
package logging
