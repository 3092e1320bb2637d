// Package vcluster implements the vcluster configuration tools and the
// dispatch table that maps tool names to them.
//
// Every tool returns a tools.Envelope. Handlers return plain Go errors and
// Dispatcher.Execute is the single place where those errors, unknown tool
// names and panics become error envelopes:
//
//	Unknown tool: <name>
//	Error executing <name>: <message>
//
// Tools are stateless. A configuration document is resolved once per call,
// either from inline content or from the remote repository, and discarded
// when the envelope is produced.
package vcluster
