package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
	"github.com/giantswarm/mcp-vcluster/internal/schema"
)

var printer = message.NewPrinter(language.English)

// keywords runs the compiled JSON Schema and keeps the findings the
// structural walk does not already produce.
func keywords(doc *document.Document, s *schema.Schema) []Issue {
	compiled := s.Compiled()
	if compiled == nil {
		return nil
	}

	err := compiled.Validate(doc.Value())
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Issue{{Message: err.Error(), Severity: SeverityError}}
	}

	var issues []Issue
	for _, leaf := range flatten(ve) {
		if structural(leaf.ErrorKind) {
			continue
		}
		path, node := locate(doc, leaf.InstanceLocation)
		issue := Issue{
			Path:     path.String(),
			Message:  leaf.ErrorKind.LocalizedString(printer),
			Severity: SeverityError,
		}
		if node != nil {
			issue.Line = node.Line
		}
		issue.Expected, issue.Actual = expectation(leaf.ErrorKind)
		issues = append(issues, issue)
	}
	return issues
}

func flatten(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var flat []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flatten(cause)...)
	}
	return flat
}

// structural reports whether the walker already covers this kind of error.
func structural(k jsonschema.ErrorKind) bool {
	switch k.(type) {
	case *kind.Type, *kind.Enum, *kind.Required, *kind.AdditionalProperties, *kind.FalseSchema:
		return true
	}
	return false
}

func expectation(k jsonschema.ErrorKind) (expected, actual string) {
	switch v := k.(type) {
	case *kind.Format:
		return v.Want, fmt.Sprint(v.Got)
	case *kind.Pattern:
		return v.Want, v.Got
	case *kind.Minimum:
		got, _ := v.Got.Float64()
		want, _ := v.Want.Float64()
		return ">= " + strconv.FormatFloat(want, 'f', -1, 64), strconv.FormatFloat(got, 'f', -1, 64)
	case *kind.Maximum:
		got, _ := v.Got.Float64()
		want, _ := v.Want.Float64()
		return "<= " + strconv.FormatFloat(want, 'f', -1, 64), strconv.FormatFloat(got, 'f', -1, 64)
	case *kind.MinLength:
		return fmt.Sprintf("length >= %d", v.Want), strconv.Itoa(v.Got)
	case *kind.MaxLength:
		return fmt.Sprintf("length <= %d", v.Want), strconv.Itoa(v.Got)
	}
	return "", ""
}

// locate maps a JSON Schema instance location onto a document path, using
// the document itself to tell sequence indices from mapping keys.
func locate(doc *document.Document, tokens []string) (document.Path, *yaml.Node) {
	path := make(document.Path, 0, len(tokens))
	node := doc.Root()
	for _, tok := range tokens {
		if node != nil && node.Kind == yaml.SequenceNode {
			if i, err := strconv.Atoi(tok); err == nil {
				path = append(path, document.Index(i))
				node = childAt(doc, path)
				continue
			}
		}
		path = append(path, document.Key(tok))
		node = childAt(doc, path)
	}
	return path, node
}

func childAt(doc *document.Document, p document.Path) *yaml.Node {
	node, ok := doc.Lookup(p)
	if !ok {
		return nil
	}
	return node
}

// crossField evaluates the schema's x-constraints. A rule that cannot be
// evaluated, for example because a referenced field has the wrong type, is
// skipped: the structural pass already reports such input.
func crossField(doc *document.Document, s *schema.Schema) []Issue {
	if len(s.Constraints) == 0 {
		return nil
	}

	env := schema.Env(doc)
	var issues []Issue
	for _, c := range s.Constraints {
		ok, err := c.Evaluate(env)
		if err != nil {
			slog.Debug("skipping constraint", slog.String("constraint", c.Name), slog.String("error", err.Error()))
			continue
		}
		if ok {
			continue
		}
		issue := Issue{
			Path:     c.Path,
			Message:  c.Message,
			Expected: c.Rule,
			Severity: SeverityError,
		}
		if p, err := document.ParsePath(c.Path); err == nil {
			if node, found := doc.Lookup(p); found {
				issue.Line = node.Line
			}
		}
		issues = append(issues, issue)
	}
	return issues
}
