// Package query searches vcluster configuration documents.
//
// Three modes are supported:
//
//   - path: direct lookup such as controlPlane.distro or env[0].name.
//     A missing key yields no matches rather than an error.
//   - smart: case-insensitive free-text search over field names and scalar
//     values of the whole tree.
//   - pattern: glob over node paths using doublestar, for example
//     sync.*.ingresses or **.enabled.
//
// In auto mode an expression that only looks like a path, such as ghcr.io
// or 10.96, is searched as text when it does not resolve.
//
// Matches are returned in pre-order traversal order and never repeat a path.
package query
