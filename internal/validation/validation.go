package validation

import (
	"github.com/giantswarm/mcp-vcluster/internal/document"
	"github.com/giantswarm/mcp-vcluster/internal/schema"
)

// Severity levels of an Issue.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Messages used for structural violations.
const (
	MsgRequiredMissing = "required field missing"
	MsgDeprecated      = "field is deprecated"
)

// Issue is a single validation finding.
type Issue struct {
	Path     string `json:"path" yaml:"path"`
	Message  string `json:"message" yaml:"message"`
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string `json:"actual,omitempty" yaml:"actual,omitempty"`
	Severity string `json:"severity" yaml:"severity"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Result is the outcome of validating a document. A failed validation is a
// normal Result with Valid set to false.
type Result struct {
	Valid         bool    `json:"valid" yaml:"valid"`
	SchemaVersion string  `json:"schemaVersion" yaml:"schemaVersion"`
	Errors        []Issue `json:"errors" yaml:"errors"`
	Warnings      []Issue `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Options tune Validate.
type Options struct {
	// SchemaVersion selects the schema explicitly. When empty the version
	// declared by the document is used, then the latest schema.
	SchemaVersion string
}

// Validate checks doc against the applicable schema. The only error
// returned is for a schema version that cannot be resolved; violations are
// reported in the Result.
func Validate(doc *document.Document, opts Options) (*Result, error) {
	s, err := schema.ForDocument(doc, opts.SchemaVersion)
	if err != nil {
		return nil, err
	}
	return Against(doc, s), nil
}

// Against validates doc against s in three passes: the structural walk
// (required fields, types, enums, unknown fields, deprecations), the JSON
// Schema keyword pass (formats, patterns, bounds) and the cross-field
// constraints. doc is never modified.
func Against(doc *document.Document, s *schema.Schema) *Result {
	res := &Result{
		SchemaVersion: s.Version,
		Errors:        []Issue{},
	}

	structural, warnings := walk(doc, s)
	res.Errors = append(res.Errors, structural...)
	res.Warnings = warnings

	res.Errors = appendUnique(res.Errors, keywords(doc, s)...)
	res.Errors = append(res.Errors, crossField(doc, s)...)

	res.Valid = len(res.Errors) == 0
	return res
}

func appendUnique(dst []Issue, issues ...Issue) []Issue {
	type key struct{ path, message string }
	seen := make(map[key]bool, len(dst))
	for _, i := range dst {
		seen[key{i.Path, i.Message}] = true
	}
	for _, i := range issues {
		k := key{i.Path, i.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		dst = append(dst, i)
	}
	return dst
}
