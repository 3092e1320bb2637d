package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
)

type entry struct {
	path document.Path
	node *yaml.Node
}

// traverse visits every node below the root in pre-order: parents before
// children, mapping keys in declaration order, sequence items by index.
// It keeps its own stack so input depth does not grow the call stack.
func traverse(doc *document.Document, visit func(e entry)) {
	var stack []entry
	push := func(parent entry) {
		var children []entry
		switch parent.node.Kind {
		case yaml.MappingNode:
			document.MappingPairs(parent.node, func(key string, v *yaml.Node) bool {
				children = append(children, entry{path: parent.path.Child(document.Key(key)), node: v})
				return true
			})
		case yaml.SequenceNode:
			for i, item := range parent.node.Content {
				node := item
				for node.Kind == yaml.AliasNode && node.Alias != nil {
					node = node.Alias
				}
				children = append(children, entry{path: parent.path.Child(document.Index(i)), node: node})
			}
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	push(entry{node: doc.Root()})
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(e)
		push(e)
	}
}

// smart collects every node whose key, or scalar value unless keysOnly is
// set, contains term case-insensitively.
func smart(doc *document.Document, term string, keysOnly bool) []Match {
	needle := strings.ToLower(term)
	matches := []Match{}

	traverse(doc, func(e entry) {
		last := e.path[len(e.path)-1]
		hit := !last.IsIndex && strings.Contains(strings.ToLower(last.Key), needle)
		if !hit && !keysOnly && e.node.Kind == yaml.ScalarNode {
			hit = strings.Contains(strings.ToLower(e.node.Value), needle)
		}
		if hit {
			matches = append(matches, newMatch(e.path, e.node))
		}
	})
	return matches
}

// byPattern matches node paths against a glob. Dots and brackets in the
// expression become path separators, so controlPlane.*.enabled and
// **.enabled[*] work as expected; ** spans any number of segments.
func byPattern(doc *document.Document, expression string) ([]Match, error) {
	pattern := globFromExpression(expression)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", expression)
	}

	matches := []Match{}
	var matchErr error
	traverse(doc, func(e entry) {
		if matchErr != nil {
			return
		}
		ok, err := doublestar.Match(pattern, slashPath(e.path))
		if err != nil {
			matchErr = fmt.Errorf("invalid pattern %q: %w", expression, err)
			return
		}
		if ok {
			matches = append(matches, newMatch(e.path, e.node))
		}
	})
	if matchErr != nil {
		return nil, matchErr
	}
	return matches, nil
}

func globFromExpression(expression string) string {
	r := strings.NewReplacer(".", "/", "[", "/", "]", "")
	return strings.Trim(r.Replace(expression), "/")
}

func slashPath(p document.Path) string {
	parts := make([]string, 0, len(p))
	for _, seg := range p {
		if seg.IsIndex {
			parts = append(parts, strconv.Itoa(seg.Index))
			continue
		}
		parts = append(parts, seg.Key)
	}
	return strings.Join(parts, "/")
}
