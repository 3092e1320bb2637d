package vcluster

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/giantswarm/mcp-vcluster/internal/document"
	"github.com/giantswarm/mcp-vcluster/internal/schema"
	"github.com/giantswarm/mcp-vcluster/internal/tools"
)

var schemaVersionPath = document.Path{document.Key(schema.VersionKey)}

// ruleList is the extract-validation-rules result. It renders as a plain
// array so consumers can iterate it without unwrapping.
type ruleList []schema.Rule

func (r ruleList) TableHeaders() []string {
	return []string{"path", "type", "required", "enum", "default"}
}

func (r ruleList) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, rule := range r {
		enum := make([]string, 0, len(rule.Enum))
		for _, v := range rule.Enum {
			enum = append(enum, cellValue(v))
		}
		rows = append(rows, []string{
			rule.Path,
			rule.Type,
			strconv.FormatBool(rule.Required),
			strings.Join(enum, ", "),
			cellValue(rule.Default),
		})
	}
	return rows
}

func handleExtractRules(_ context.Context, d *Dispatcher, args tools.Args) (*tools.Envelope, error) {
	version := args.String(tools.ArgSchemaVersion)
	if version == "" {
		version = d.defaultSchemaVersion
	}
	s, err := schema.Resolve(version)
	if err != nil {
		return nil, err
	}

	rules := schema.ExtractRules(s)
	if len(rules) == 0 {
		return nil, fmt.Errorf("schema %s declares no rules", s.Version)
	}
	return d.render(args, ruleList(rules))
}

// cellValue renders a value for a table cell: scalars as text, containers
// as compact JSON.
func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
