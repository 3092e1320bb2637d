// Package schema provides the versioned vcluster configuration schemas.
//
// Schemas are JSON Schema documents embedded under schemas/, one file per
// schema version. Each is loaded into an ordered Field tree (used by the
// validation walker and the rule extractor) and compiled with
// santhosh-tekuri/jsonschema for keyword checks such as format, pattern and
// numeric bounds. Cross-field rules live under the x-constraints extension
// and are compiled with expr-lang/expr.
//
// Schema versions are independent of vcluster release tags. Resolve maps a
// release-like version onto the newest schema that does not exceed it.
package schema
