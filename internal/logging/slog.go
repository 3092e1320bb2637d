package logging

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation     = "operation"
	KeyTool          = "tool"
	KeyInvocationID  = "invocation_id"
	KeyVersion       = "version"
	KeySchemaVersion = "schema_version"
	KeyFile          = "file"
	KeySource        = "source"
	KeyDuration      = "duration"
	KeyStatus        = "status"
	KeyError         = "error"
	KeyHost          = "host"
	KeyRepository    = "repository"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ipv4Regex matches IPv4 addresses for sanitization.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ipv6Regex matches common IPv6 forms, including the bracketed form used in URLs.
var ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// InvocationID returns a slog attribute for a tool invocation ID.
func InvocationID(id string) slog.Attr {
	return slog.String(KeyInvocationID, id)
}

// Version returns a slog attribute for a remote version (tag or branch).
func Version(v string) slog.Attr {
	return slog.String(KeyVersion, v)
}

// SchemaVersion returns a slog attribute for a schema version.
func SchemaVersion(v string) slog.Attr {
	return slog.String(KeySchemaVersion, v)
}

// File returns a slog attribute for a file path inside the remote repository.
func File(path string) slog.Attr {
	return slog.String(KeyFile, path)
}

// Source returns a slog attribute for the content source (inline or remote).
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// Repository returns a slog attribute for the remote repository slug.
func Repository(slug string) slog.Attr {
	return slog.String(KeyRepository, slug)
}

// Duration returns a slog attribute for an elapsed duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Host returns a slog attribute for a host with IP addresses sanitized.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// SanitizeHost returns a sanitized version of the host for logging purposes.
// IP addresses (IPv4 and IPv6) are redacted, hostnames are kept.
//
// Examples:
//   - "https://192.168.1.100:8443" -> "https://<redacted-ip>:8443"
//   - "https://api.github.com" -> "https://api.github.com"
//   - "2001:db8::1" -> "<redacted-ip>"
//   - "" -> "<empty>"
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}

	redactIPs := func(s string) string {
		result := ipv4Regex.ReplaceAllString(s, "<redacted-ip>")
		return ipv6Regex.ReplaceAllString(result, "<redacted-ip>")
	}

	if !strings.Contains(host, "://") {
		return redactIPs(host)
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}

	if ipv4Regex.MatchString(parsed.Host) || ipv6Regex.MatchString(parsed.Host) {
		parsed.Host = redactIPs(parsed.Host)
		return parsed.String()
	}

	return host
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
