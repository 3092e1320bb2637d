// Package validation checks vcluster configuration documents against the
// versioned schemas in package schema.
//
// Violations are data, not failures: Validate returns a Result whose Errors
// list the problems found, ordered by pass and then by document order.
// Unknown fields are only reported when the schema object is strict.
// Deprecated fields produce warnings and never make a document invalid.
package validation
