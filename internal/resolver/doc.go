// Package resolver turns tool arguments into a parsed configuration document.
//
// Inline content always takes precedence; a remote client is consulted only
// when no inline content is present. Every failure, including parse errors,
// is reported as a *ContentResolutionError carrying the cause's message.
package resolver
