package schema

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Field describes one property of the configuration as declared by a schema.
// Properties keep declaration order.
type Field struct {
	Name string
	// Path is the rule path of the field. Array items are addressed with
	// [*] and values of free-form maps with .*
	Path        string
	Types       []string
	Required    bool
	Enum        []any
	Format      string
	Pattern     string
	Minimum     *float64
	Maximum     *float64
	MinLength   *int
	MaxLength   *int
	MinItems    *int
	MaxItems    *int
	Description string
	Default     any
	Deprecated  bool

	// Strict objects reject properties they do not declare.
	Strict bool

	Properties []*Field
	Items      *Field
	// Values describes the entries of an object used as a free-form map
	// (additionalProperties with a schema).
	Values *Field
}

// Property returns the declared child property called name.
func (f *Field) Property(name string) *Field {
	for _, p := range f.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AllowsType reports whether a value of the given JSON type is accepted.
// Integers satisfy number. A field without declared types accepts anything.
func (f *Field) AllowsType(kind string) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == kind || (t == "number" && kind == "integer") {
			return true
		}
	}
	return false
}

// TypeString joins the declared types with "|", or "any" when unconstrained.
func (f *Field) TypeString() string {
	if len(f.Types) == 0 {
		return "any"
	}
	return strings.Join(f.Types, "|")
}

// Schema is one versioned vcluster configuration schema.
type Schema struct {
	Version     string
	Title       string
	Root        *Field
	Constraints []*Constraint

	compiled *jsonschema.Schema
}

// Strict reports whether the schema rejects undeclared top-level fields.
func (s *Schema) Strict() bool {
	return s.Root.Strict
}

// Compiled returns the compiled JSON Schema used for keyword validation.
func (s *Schema) Compiled() *jsonschema.Schema {
	return s.compiled
}

// Lookup returns the field at a dotted rule path such as
// "controlPlane.distro.k3s". Segments "[*]" and "*" step into array
// items and map values.
func (s *Schema) Lookup(path string) *Field {
	f := s.Root
	if path == "" {
		return f
	}
	path = strings.ReplaceAll(path, "[*]", ".[*]")
	for _, seg := range strings.Split(path, ".") {
		switch seg {
		case "[*]":
			f = f.Items
		case "*":
			f = f.Values
		default:
			f = f.Property(seg)
		}
		if f == nil {
			return nil
		}
	}
	return f
}

// Distro describes a Kubernetes distribution declared by a schema.
type Distro struct {
	Name       string
	Deprecated bool
}

// Distros lists the distributions declared under controlPlane.distro in
// declaration order.
func (s *Schema) Distros() []Distro {
	f := s.Lookup("controlPlane.distro")
	if f == nil {
		return nil
	}
	out := make([]Distro, 0, len(f.Properties))
	for _, p := range f.Properties {
		out = append(out, Distro{Name: p.Name, Deprecated: p.Deprecated})
	}
	return out
}

// HasDistro reports whether name is a distribution declared by the schema.
func (s *Schema) HasDistro(name string) bool {
	for _, d := range s.Distros() {
		if d.Name == name {
			return true
		}
	}
	return false
}
