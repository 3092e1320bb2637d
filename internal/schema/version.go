package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
)

// ErrUnknownSchemaVersion is returned when no embedded schema can serve a
// requested schema version.
var ErrUnknownSchemaVersion = errors.New("unknown schema version")

// VersionKey is the top-level document key that names the schema version
// a configuration targets.
const VersionKey = "schemaVersion"

// Versions returns the embedded schema versions in ascending order.
func Versions() ([]string, error) {
	_, names, err := registry()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// Latest returns the newest embedded schema.
func Latest() (*Schema, error) {
	schemas, names, err := registry()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no schemas embedded", ErrUnknownSchemaVersion)
	}
	return schemas[names[len(names)-1]], nil
}

// Resolve returns the schema that applies to version. An empty version
// selects the latest schema. Otherwise the newest embedded schema whose
// major.minor is not above the requested one is chosen, so "v0.20.3" and
// "0.21" both resolve to v0.20 when that is the newest schema.
func Resolve(version string) (*Schema, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return Latest()
	}

	schemas, names, err := registry()
	if err != nil {
		return nil, err
	}
	if s, ok := schemas[version]; ok {
		return s, nil
	}

	requested, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownSchemaVersion, version, err)
	}
	ceiling := semver.New(requested.Major(), requested.Minor(), 0, "", "")

	for i := len(names) - 1; i >= 0; i-- {
		candidate, err := semver.NewVersion(names[i])
		if err != nil {
			continue
		}
		if !candidate.GreaterThan(ceiling) {
			return schemas[names[i]], nil
		}
	}

	return nil, fmt.Errorf("%w %q: available versions are %s",
		ErrUnknownSchemaVersion, version, strings.Join(names, ", "))
}

// Infer returns the schema version a document declares for itself through
// its top-level schemaVersion key, or "" when it does not declare one.
func Infer(doc *document.Document) string {
	if doc == nil {
		return ""
	}
	node, ok := doc.Lookup(document.Path{document.Key(VersionKey)})
	if !ok || !document.IsScalar(node) {
		return ""
	}
	return strings.TrimSpace(node.Value)
}

// ForDocument picks the schema for doc: the explicit version when given,
// else the version the document declares, else the latest schema.
func ForDocument(doc *document.Document, explicit string) (*Schema, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return Resolve(v)
	}
	return Resolve(Infer(doc))
}
