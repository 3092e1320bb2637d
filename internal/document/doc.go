// Package document holds the in-memory model of a vcluster configuration.
//
// A Document wraps a yaml.v3 node tree rather than decoded maps so that
// key order and line numbers are preserved for query results, validation
// messages and re-serialization. Nothing in this package mutates a parsed
// Document.
package document
