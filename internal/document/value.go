package document

import (
	"gopkg.in/yaml.v3"
)

// JSON type names reported by Kind.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// Kind maps a node to the JSON Schema type name of its value.
func Kind(node *yaml.Node) string {
	node = resolveAlias(node)
	if node == nil {
		return TypeNull
	}
	switch node.Kind {
	case yaml.MappingNode:
		return TypeObject
	case yaml.SequenceNode:
		return TypeArray
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return TypeNull
		}
		return Kind(node.Content[0])
	}

	switch node.ShortTag() {
	case "!!int":
		return TypeInteger
	case "!!float":
		return TypeNumber
	case "!!bool":
		return TypeBoolean
	case "!!null":
		return TypeNull
	default:
		return TypeString
	}
}

// IsScalar reports whether node is a leaf value.
func IsScalar(node *yaml.Node) bool {
	node = resolveAlias(node)
	return node != nil && node.Kind == yaml.ScalarNode
}

// Value converts a node into plain Go values: map[string]any, []any,
// string, int, float64, bool or nil. Mapping keys are always strings.
func Value(node *yaml.Node) any {
	node = resolveAlias(node)
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil
		}
		return Value(node.Content[0])
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		MappingPairs(node, func(k string, v *yaml.Node) bool {
			out[k] = Value(v)
			return true
		})
		return out
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			out = append(out, Value(item))
		}
		return out
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return node.Value
	}
	return v
}
