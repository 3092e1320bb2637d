// Package tools provides the types shared by MCP tool implementations: the
// uniform response Envelope, typed access to tool arguments, and the audit
// wrapper applied to every registered handler.
package tools
