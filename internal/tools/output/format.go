package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the textual shape of a tool response.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatTable}

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrResponseTooLarge is returned when a JSON or YAML rendering exceeds the
// response size limit. Those formats are never cut, so a response either
// parses or is not sent.
var ErrResponseTooLarge = errors.New("response too large")

// ParseFormat parses a format name. The empty string selects FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatYAML, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of json, yaml or table", ErrUnsupportedFormat, s)
	}
}

// Tabular is implemented by results with a natural row layout. Values that
// do not implement it are flattened into path/value rows for FormatTable.
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// Renderer turns results into text.
type Renderer struct {
	config *Config
}

// NewRenderer creates a renderer. A nil config uses DefaultConfig.
func NewRenderer(config *Config) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Renderer{config: config.Validate()}
}

// Config returns the validated configuration in use.
func (r *Renderer) Config() *Config {
	return r.config
}

// Render encodes v in format f and applies the response size limit. Table
// output is cut at the limit with a warning. JSON falls back to compact
// encoding, and JSON or YAML that still does not fit fails with
// ErrResponseTooLarge. Callers cap item counts before rendering.
func (r *Renderer) Render(v any, f Format) (string, *TruncationWarning, error) {
	limit := r.config.MaxResponseBytes

	switch f {
	case FormatJSON, "":
		text, err := renderJSON(v)
		if err != nil {
			return "", nil, err
		}
		if len(text) > limit {
			data, err := json.Marshal(v)
			if err != nil {
				return "", nil, fmt.Errorf("failed to encode JSON: %w", err)
			}
			text = string(data)
		}
		if len(text) > limit {
			return "", nil, tooLarge(len(text), limit)
		}
		return text, nil, nil

	case FormatYAML:
		text, err := renderYAML(v)
		if err != nil {
			return "", nil, err
		}
		if len(text) > limit {
			return "", nil, tooLarge(len(text), limit)
		}
		return text, nil, nil

	case FormatTable:
		text, err := r.renderTable(v)
		if err != nil {
			return "", nil, err
		}
		text, warning := TruncateText(text, limit)
		return text, warning, nil
	}
	return "", nil, fmt.Errorf("%w %q: must be one of json, yaml or table", ErrUnsupportedFormat, f)
}

func tooLarge(size, limit int) error {
	return fmt.Errorf("%w: %d bytes exceed the limit of %d bytes, narrow the request or use the table format", ErrResponseTooLarge, size, limit)
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data), nil
}

// renderYAML goes through JSON so field names and ordering match the JSON
// rendering exactly.
func renderYAML(v any) (string, error) {
	node, err := toNode(v)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return sb.String(), nil
}

func toNode(v any) (*yaml.Node, error) {
	if n, ok := v.(*yaml.Node); ok {
		return n, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert value: %w", err)
	}
	clearStyle(&node)
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return node.Content[0], nil
	}
	return &node, nil
}

// clearStyle drops the flow and quoting styles picked up from JSON input so
// the encoder emits block YAML.
func clearStyle(root *yaml.Node) {
	stack := []*yaml.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n.Style = 0
		stack = append(stack, n.Content...)
	}
}

// flatten lists every scalar leaf of v with its dotted path, in document order.
func flatten(v any) ([][]string, error) {
	root, err := toNode(v)
	if err != nil {
		return nil, err
	}

	type frame struct {
		path string
		node *yaml.Node
	}
	var rows [][]string
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f.node.Kind {
		case yaml.MappingNode:
			if len(f.node.Content) == 0 {
				rows = append(rows, []string{f.path, "{}"})
			}
			for i := len(f.node.Content) - 2; i >= 0; i -= 2 {
				stack = append(stack, frame{path: joinKey(f.path, f.node.Content[i].Value), node: f.node.Content[i+1]})
			}
		case yaml.SequenceNode:
			if len(f.node.Content) == 0 {
				rows = append(rows, []string{f.path, "[]"})
			}
			for i := len(f.node.Content) - 1; i >= 0; i-- {
				stack = append(stack, frame{path: f.path + "[" + strconv.Itoa(i) + "]", node: f.node.Content[i]})
			}
		default:
			rows = append(rows, []string{f.path, f.node.Value})
		}
	}
	return rows, nil
}

func joinKey(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
