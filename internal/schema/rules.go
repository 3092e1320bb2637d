package schema

// Rule is one flattened, path-addressed schema rule.
type Rule struct {
	Path        string         `json:"path" yaml:"path"`
	Type        string         `json:"type" yaml:"type"`
	Required    bool           `json:"required" yaml:"required"`
	Enum        []any          `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default     any            `json:"default,omitempty" yaml:"default,omitempty"`
	Deprecated  bool           `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Constraints map[string]any `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// ExpressionRule is a cross-field constraint attached to a Rule.
type ExpressionRule struct {
	Name    string `json:"name" yaml:"name"`
	Rule    string `json:"rule" yaml:"rule"`
	Message string `json:"message" yaml:"message"`
}

// ExtractRules flattens s into a rule list in declaration order, parents
// before children. Cross-field constraints are attached to the rule at
// their path under the "expressions" constraint key.
func ExtractRules(s *Schema) []Rule {
	expressions := make(map[string][]ExpressionRule)
	for _, c := range s.Constraints {
		expressions[c.Path] = append(expressions[c.Path], ExpressionRule{
			Name:    c.Name,
			Rule:    c.Rule,
			Message: c.Message,
		})
	}

	var rules []Rule
	// Explicit stack, children pushed in reverse to pop in declaration order.
	stack := make([]*Field, 0, len(s.Root.Properties))
	for i := len(s.Root.Properties) - 1; i >= 0; i-- {
		stack = append(stack, s.Root.Properties[i])
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rules = append(rules, ruleFor(f, expressions[f.Path]))

		var children []*Field
		children = append(children, f.Properties...)
		if f.Items != nil {
			children = append(children, f.Items)
		}
		if f.Values != nil {
			children = append(children, f.Values)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return rules
}

func ruleFor(f *Field, exprs []ExpressionRule) Rule {
	r := Rule{
		Path:        f.Path,
		Type:        f.TypeString(),
		Required:    f.Required,
		Enum:        f.Enum,
		Default:     f.Default,
		Deprecated:  f.Deprecated,
		Description: f.Description,
	}

	constraints := make(map[string]any)
	if f.Format != "" {
		constraints["format"] = f.Format
	}
	if f.Pattern != "" {
		constraints["pattern"] = f.Pattern
	}
	if f.Minimum != nil {
		constraints["minimum"] = *f.Minimum
	}
	if f.Maximum != nil {
		constraints["maximum"] = *f.Maximum
	}
	if f.MinLength != nil {
		constraints["minLength"] = *f.MinLength
	}
	if f.MaxLength != nil {
		constraints["maxLength"] = *f.MaxLength
	}
	if f.MinItems != nil {
		constraints["minItems"] = *f.MinItems
	}
	if f.MaxItems != nil {
		constraints["maxItems"] = *f.MaxItems
	}
	if f.Strict {
		constraints["additionalProperties"] = false
	}
	if len(exprs) > 0 {
		constraints["expressions"] = exprs
	}
	if len(constraints) > 0 {
		r.Constraints = constraints
	}
	return r
}
