package vcluster

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/query"
	"github.com/giantswarm/mcp-vcluster/internal/tools"
	"github.com/giantswarm/mcp-vcluster/internal/tools/output"
)

var errNoQuery = errors.New("a query is required (use query, search or path)")

// queryResponse is the smart-query result.
type queryResponse struct {
	Source  string `json:"source"`
	Version string `json:"version,omitempty"`
	File    string `json:"file,omitempty"`
	*query.Result
}

func (r *queryResponse) TableHeaders() []string {
	return []string{"path", "value", "line"}
}

func (r *queryResponse) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		line := ""
		if m.Line > 0 {
			line = strconv.Itoa(m.Line)
		}
		rows = append(rows, []string{m.Path, cellValue(m.Value), line})
	}
	return rows
}

func handleSmartQuery(ctx context.Context, d *Dispatcher, args tools.Args) (*tools.Envelope, error) {
	expression := args.FirstString(tools.ArgQuery, tools.ArgSearch, tools.ArgPath)
	if expression == "" {
		return nil, errNoQuery
	}
	mode, err := query.ParseMode(args.String(tools.ArgMode))
	if err != nil {
		return nil, err
	}
	keysOnly, err := args.Bool(tools.ArgKeysOnly, false)
	if err != nil {
		return nil, err
	}
	limit, err := args.Int(tools.ArgLimit, 0)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, &tools.InvalidArgumentError{Name: tools.ArgLimit, Reason: "must not be negative"}
	}
	if limit > 0 {
		limit = output.EffectiveLimit(limit, 0)
	} else {
		limit = output.EffectiveLimit(0, d.renderer.Config().MaxItems)
	}

	src := sourceFromArgs(args)
	if src.Empty() {
		// Without a source, query the default values file.
		src.Version = d.defaultVersion
	}
	res, err := d.resolve(ctx, ToolSmartQuery, src)
	if err != nil {
		return nil, err
	}

	result, err := query.Run(res.Document, expression, query.Options{
		Mode:     mode,
		KeysOnly: keysOnly,
	})
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		instrumentation.NewSpanAttributeBuilder().WithQueryMode(string(result.Mode)).Build()...)

	matches, warning := output.TruncateGeneric(result.Matches, limit)
	result.Matches = matches
	result.Truncated = warning != nil
	d.mask(result)

	env, err := d.render(args, &queryResponse{
		Source:  res.Source,
		Version: res.Version,
		File:    res.File,
		Result:  result,
	})
	if err != nil {
		return nil, err
	}
	if warning != nil {
		env.Append(warning.Message)
	}
	return env, nil
}

// mask redacts matched values stored under sensitive keys. Paths are
// matched whole, so a sensitive parent key redacts everything below it.
func (d *Dispatcher) mask(result *query.Result) {
	if d.masker == nil {
		return
	}
	for i := range result.Matches {
		result.Matches[i].Value = d.masker.Mask(result.Matches[i].Path, result.Matches[i].Value)
	}
}
