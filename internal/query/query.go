package query

import (
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-vcluster/internal/document"
)

// Mode selects how an expression is interpreted.
type Mode string

// Supported query modes. ModeAuto picks one from the expression's shape.
const (
	ModeAuto    Mode = "auto"
	ModePath    Mode = "path"
	ModeSmart   Mode = "smart"
	ModePattern Mode = "pattern"
)

// ParseMode converts a user supplied mode name. The empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModePath, ModeSmart, ModePattern:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported query mode %q (expected auto, path, smart or pattern)", s)
	}
}

// Match is one node selected by a query.
type Match struct {
	Path  string `json:"path" yaml:"path"`
	Value any    `json:"value" yaml:"value"`
	Line  int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Options tune Run.
type Options struct {
	Mode Mode
	// KeysOnly restricts smart queries to field names.
	KeysOnly bool
}

// Result holds the matches of a query in traversal order. Total counts the
// matches before any truncation applied by the caller.
type Result struct {
	Query     string  `json:"query" yaml:"query"`
	Mode      Mode    `json:"mode" yaml:"mode"`
	Matches   []Match `json:"matches" yaml:"matches"`
	Total     int     `json:"total" yaml:"total"`
	Truncated bool    `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// DetectMode infers the mode of an expression: anything with a wildcard is
// a pattern, a dotted or indexed expression without whitespace is a path,
// everything else is a free-text search. Run falls back to a free-text
// search when a detected path does not resolve.
func DetectMode(expression string) Mode {
	e := strings.TrimSpace(expression)
	switch {
	case strings.Contains(e, "*"):
		return ModePattern
	case !strings.ContainsFunc(e, unicode.IsSpace) && strings.ContainsAny(e, ".["):
		return ModePath
	default:
		return ModeSmart
	}
}

// Run evaluates expression against doc. doc is not modified.
func Run(doc *document.Document, expression string, opts Options) (*Result, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("query expression must not be empty")
	}

	mode := opts.Mode
	auto := mode == "" || mode == ModeAuto
	if auto {
		mode = DetectMode(expression)
	}

	var (
		matches []Match
		err     error
	)
	switch mode {
	case ModePath:
		matches, err = byPath(doc, expression)
		// Dotted search terms such as "ghcr.io" look like paths. A guessed
		// path that does not resolve is searched as text instead.
		if auto && (err != nil || len(matches) == 0) {
			mode, err = ModeSmart, nil
			matches = smart(doc, expression, opts.KeysOnly)
		}
	case ModeSmart:
		matches = smart(doc, expression, opts.KeysOnly)
	case ModePattern:
		matches, err = byPattern(doc, expression)
	default:
		return nil, fmt.Errorf("unsupported query mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Query:   expression,
		Mode:    mode,
		Matches: dedupe(matches),
	}
	res.Total = len(res.Matches)
	return res, nil
}

func byPath(doc *document.Document, expression string) ([]Match, error) {
	p, err := document.ParsePath(expression)
	if err != nil {
		return nil, err
	}
	node, ok := doc.Lookup(p)
	if !ok {
		return []Match{}, nil
	}
	return []Match{newMatch(p, node)}, nil
}

func newMatch(p document.Path, node *yaml.Node) Match {
	return Match{Path: p.String(), Value: document.Value(node), Line: node.Line}
}

// dedupe drops repeated paths, keeping the first occurrence. Distinct paths
// with equal values are all kept.
func dedupe(matches []Match) []Match {
	seen := make(map[string]bool, len(matches))
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if seen[m.Path] {
			continue
		}
		seen[m.Path] = true
		out = append(out, m)
	}
	return out
}
