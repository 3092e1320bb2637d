package schema

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	loadOnce sync.Once
	loaded   map[string]*Schema
	ordered  []string
	loadErr  error
)

func registry() (map[string]*Schema, []string, error) {
	loadOnce.Do(func() {
		loaded, ordered, loadErr = loadEmbedded()
	})
	return loaded, ordered, loadErr
}

func loadEmbedded() (map[string]*Schema, []string, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read embedded schemas: %w", err)
	}

	schemas := make(map[string]*Schema, len(entries))
	versions := make([]*semver.Version, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		v, err := semver.NewVersion(name)
		if err != nil {
			return nil, nil, fmt.Errorf("embedded schema %q is not named after a version: %w", entry.Name(), err)
		}

		raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		s, err := parse(name, raw)
		if err != nil {
			return nil, nil, err
		}
		schemas[name] = s
		versions = append(versions, v)
	}

	sort.Sort(semver.Collection(versions))
	names := make([]string, 0, len(versions))
	for _, v := range versions {
		names = append(names, v.Original())
	}
	return schemas, names, nil
}

// parse builds a Schema from raw JSON Schema text. The text is read twice:
// once through yaml.v3 to keep property order for the field tree, and once
// through the JSON Schema compiler for keyword validation.
func parse(version string, raw []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", version, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("schema %s is empty", version)
	}
	rootNode := doc.Content[0]

	root, err := buildField("", "", rootNode)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", version, err)
	}

	s := &Schema{Version: version, Root: root}
	if title, ok := mappingValue(rootNode, "title"); ok {
		s.Title = title.Value
	}
	if cs, ok := mappingValue(rootNode, "x-constraints"); ok {
		s.Constraints, err = buildConstraints(cs)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", version, err)
		}
	}

	s.compiled, err = compile(version, raw)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func compile(version string, raw []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", version, err)
	}

	url := version + ".json"
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	registerFormats(c)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %w", version, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", version, err)
	}
	return sch, nil
}

func buildField(name, rulePath string, node *yaml.Node) (*Field, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("field %q: schema must be an object", rulePath)
	}

	f := &Field{Name: name, Path: rulePath}
	var required []string
	var err error

	document.MappingPairs(node, func(key string, v *yaml.Node) bool {
		switch key {
		case "type":
			f.Types = stringList(v)
		case "enum":
			for _, item := range v.Content {
				f.Enum = append(f.Enum, document.Value(item))
			}
		case "format":
			f.Format = v.Value
		case "pattern":
			f.Pattern = v.Value
		case "description":
			f.Description = v.Value
		case "default":
			f.Default = document.Value(v)
		case "deprecated":
			f.Deprecated = v.Value == "true"
		case "minimum":
			f.Minimum = floatPtr(v)
		case "maximum":
			f.Maximum = floatPtr(v)
		case "minLength":
			f.MinLength = intPtr(v)
		case "maxLength":
			f.MaxLength = intPtr(v)
		case "minItems":
			f.MinItems = intPtr(v)
		case "maxItems":
			f.MaxItems = intPtr(v)
		case "required":
			required = stringList(v)
		case "additionalProperties":
			switch {
			case v.Kind == yaml.ScalarNode && v.Value == "false":
				f.Strict = true
			case v.Kind == yaml.MappingNode:
				f.Values, err = buildField("*", joinPath(rulePath, "*"), v)
			}
		case "items":
			f.Items, err = buildField("[*]", rulePath+"[*]", v)
		case "properties":
			document.MappingPairs(v, func(prop string, pv *yaml.Node) bool {
				var child *Field
				child, err = buildField(prop, joinPath(rulePath, prop), pv)
				if err != nil {
					return false
				}
				f.Properties = append(f.Properties, child)
				return true
			})
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range required {
		p := f.Property(r)
		if p == nil {
			return nil, fmt.Errorf("field %q requires undeclared property %q", rulePath, r)
		}
		p.Required = true
	}
	return f, nil
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func mappingValue(node *yaml.Node, key string) (*yaml.Node, bool) {
	var found *yaml.Node
	document.MappingPairs(node, func(k string, v *yaml.Node) bool {
		if k == key {
			found = v
			return false
		}
		return true
	})
	return found, found != nil
}

func stringList(node *yaml.Node) []string {
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		out = append(out, item.Value)
	}
	return out
}

func floatPtr(node *yaml.Node) *float64 {
	var f float64
	if err := node.Decode(&f); err != nil {
		return nil
	}
	return &f
}

func intPtr(node *yaml.Node) *int {
	var i int
	if err := node.Decode(&i); err != nil {
		return nil
	}
	return &i
}
