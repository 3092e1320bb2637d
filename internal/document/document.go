package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"
)

// Document is a parsed vcluster configuration. It keeps the yaml.v3 node
// tree so mapping order and source positions survive parsing.
type Document struct {
	root *yaml.Node
}

// New wraps an existing mapping node as a Document.
func New(root *yaml.Node) *Document {
	return &Document{root: root}
}

// Parse decodes YAML (or JSON, optionally with comments) into a Document.
// Only the first document of a multi-document stream is used.
func Parse(content string) (*Document, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, &ParseError{Err: ErrEmptyDocument}
	}

	data := []byte(trimmed)
	if looksLikeJSON(trimmed) {
		data = jsonc.ToJSON(data)
	}

	var node yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: ErrEmptyDocument}
		}
		return nil, newParseError(err)
	}

	root := &node
	if root.Kind == 0 {
		return nil, &ParseError{Err: ErrEmptyDocument}
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, &ParseError{Err: ErrEmptyDocument}
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)

	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Line: root.Line,
			Err:  fmt.Errorf("document root must be a mapping, got %s", Kind(root)),
		}
	}

	return &Document{root: root}, nil
}

// Root returns the top-level mapping node.
func (d *Document) Root() *yaml.Node {
	return d.root
}

// Lookup returns the node addressed by p. Missing keys, out-of-range
// indices and segments applied to the wrong node kind all report false.
func (d *Document) Lookup(p Path) (*yaml.Node, bool) {
	node := d.root
	for _, seg := range p {
		node = resolveAlias(node)
		var ok bool
		if seg.IsIndex {
			node, ok = sequenceItem(node, seg.Index)
		} else {
			node, ok = mappingValue(node, seg.Key)
		}
		if !ok {
			return nil, false
		}
	}
	return resolveAlias(node), true
}

// Get is a convenience around Lookup that returns the plain Go value.
func (d *Document) Get(p Path) (any, bool) {
	node, ok := d.Lookup(p)
	if !ok {
		return nil, false
	}
	return Value(node), true
}

// Value returns the whole document as plain Go values.
func (d *Document) Value() map[string]any {
	v, _ := Value(d.root).(map[string]any)
	return v
}

// YAML re-serializes the document with two-space indentation.
func (d *Document) YAML() (string, error) {
	return EncodeYAML(d.root)
}

// EncodeYAML serializes a node tree with two-space indentation.
func EncodeYAML(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.String(), nil
}

// MappingPairs calls fn for every key/value pair of a mapping node in
// declaration order. Iteration stops when fn returns false.
func MappingPairs(node *yaml.Node, fn func(key string, value *yaml.Node) bool) {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if !fn(node.Content[i].Value, resolveAlias(node.Content[i+1])) {
			return
		}
	}
}

func mappingValue(node *yaml.Node, key string) (*yaml.Node, bool) {
	var found *yaml.Node
	MappingPairs(node, func(k string, v *yaml.Node) bool {
		if k == key {
			found = v
			return false
		}
		return true
	})
	return found, found != nil
}

func sequenceItem(node *yaml.Node, index int) (*yaml.Node, bool) {
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil, false
	}
	if index < 0 || index >= len(node.Content) {
		return nil, false
	}
	return node.Content[index], true
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
