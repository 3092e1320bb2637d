// Package middleware provides HTTP middleware for the mcp-vcluster HTTP
// transports: request metrics, security headers, CORS and request size limits.
package middleware
