package validation

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
	"github.com/giantswarm/mcp-vcluster/internal/schema"
)

type frame struct {
	field *schema.Field
	node  *yaml.Node
	path  document.Path
}

// walk performs the structural pass. It uses an explicit stack so deeply
// nested input cannot exhaust the goroutine stack, and visits nodes in
// document order.
func walk(doc *document.Document, s *schema.Schema) (errs []Issue, warnings []Issue) {
	stack := []frame{{field: s.Root, node: doc.Root()}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f, node := fr.field, fr.node
		kind := document.Kind(node)
		path := fr.path.String()

		if f.Deprecated {
			msg := MsgDeprecated
			if f.Description != "" {
				msg += ": " + f.Description
			}
			warnings = append(warnings, Issue{
				Path:     path,
				Message:  msg,
				Severity: SeverityWarning,
				Line:     node.Line,
			})
		}

		if !f.AllowsType(kind) {
			errs = append(errs, Issue{
				Path:     path,
				Message:  fmt.Sprintf("expected %s, got %s", strings.Join(f.Types, " or "), kind),
				Expected: f.TypeString(),
				Actual:   kind,
				Severity: SeverityError,
				Line:     node.Line,
			})
			continue
		}

		if len(f.Enum) > 0 {
			value := document.Value(node)
			if !enumContains(f.Enum, value) {
				allowed := formatEnum(f.Enum)
				errs = append(errs, Issue{
					Path:     path,
					Message:  fmt.Sprintf("value %s is not allowed, must be one of: %s", display(value), allowed),
					Expected: allowed,
					Actual:   display(value),
					Severity: SeverityError,
					Line:     node.Line,
				})
			}
		}

		var children []frame
		switch kind {
		case document.TypeObject:
			present := make(map[string]bool)
			document.MappingPairs(node, func(key string, v *yaml.Node) bool {
				present[key] = true
				return true
			})
			for _, p := range f.Properties {
				if p.Required && !present[p.Name] {
					errs = append(errs, Issue{
						Path:     fr.path.Child(document.Key(p.Name)).String(),
						Message:  MsgRequiredMissing,
						Expected: p.TypeString(),
						Severity: SeverityError,
						Line:     node.Line,
					})
				}
			}

			document.MappingPairs(node, func(key string, v *yaml.Node) bool {
				childPath := fr.path.Child(document.Key(key))
				switch prop := f.Property(key); {
				case prop != nil:
					children = append(children, frame{field: prop, node: v, path: childPath})
				case f.Values != nil:
					children = append(children, frame{field: f.Values, node: v, path: childPath})
				case f.Strict:
					errs = append(errs, Issue{
						Path:     childPath.String(),
						Message:  fmt.Sprintf("unknown field %q", key),
						Severity: SeverityError,
						Line:     v.Line,
					})
				}
				return true
			})
		case document.TypeArray:
			if f.Items != nil {
				for i, item := range node.Content {
					children = append(children, frame{field: f.Items, node: item, path: fr.path.Child(document.Index(i))})
				}
			}
		}

		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return errs, warnings
}

func enumContains(enum []any, v any) bool {
	for _, e := range enum {
		if equalValues(e, v) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}
	switch av := a.(type) {
	case string, bool, nil:
		return a == b
	default:
		return fmt.Sprint(av) == fmt.Sprint(b)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n)
	}
	return 0, false
}

func formatEnum(enum []any) string {
	parts := make([]string, 0, len(enum))
	for _, e := range enum {
		parts = append(parts, display(e))
	}
	return strings.Join(parts, ", ")
}

func display(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case nil:
		return "null"
	default:
		return fmt.Sprint(val)
	}
}
