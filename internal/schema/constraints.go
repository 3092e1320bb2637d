package schema

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
)

// Constraint is a cross-field rule declared under x-constraints. Rule is an
// expr boolean expression evaluated against the whole document; a false
// result is a violation reported at Path.
type Constraint struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Rule    string `json:"rule" yaml:"rule"`
	Message string `json:"message" yaml:"message"`

	program *vm.Program
}

// Evaluate runs the rule against env, the document as plain Go values.
func (c *Constraint) Evaluate(env map[string]any) (bool, error) {
	out, err := expr.Run(c.program, env)
	if err != nil {
		return false, fmt.Errorf("constraint %s: %w", c.Name, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("constraint %s: rule returned %T, not bool", c.Name, out)
	}
	return ok, nil
}

func buildConstraints(node *yaml.Node) ([]*Constraint, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("x-constraints must be a list")
	}

	out := make([]*Constraint, 0, len(node.Content))
	for i, item := range node.Content {
		var c Constraint
		if err := item.Decode(&c); err != nil {
			return nil, fmt.Errorf("x-constraints[%d]: %w", i, err)
		}
		if c.Rule == "" || c.Path == "" {
			return nil, fmt.Errorf("x-constraints[%d]: path and rule are required", i)
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("constraint-%d", i)
		}
		if c.Message == "" {
			c.Message = fmt.Sprintf("constraint %s violated", c.Name)
		}

		program, err := expr.Compile(c.Rule,
			expr.Env(map[string]any{}),
			expr.AllowUndefinedVariables(),
			expr.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("x-constraints[%d] (%s): %w", i, c.Name, err)
		}
		c.program = program
		out = append(out, &c)
	}
	return out, nil
}

// Env converts a document into the evaluation environment of a constraint.
func Env(doc *document.Document) map[string]any {
	env := doc.Value()
	if env == nil {
		env = map[string]any{}
	}
	return env
}
