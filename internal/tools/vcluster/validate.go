package vcluster

import (
	"context"
	"errors"
	"strconv"

	"github.com/giantswarm/mcp-vcluster/internal/tools"
	"github.com/giantswarm/mcp-vcluster/internal/validation"
)

// errNoContent is returned by validate-config when no source is given.
var errNoContent = errors.New("No content to validate") //nolint:staticcheck

// validateResponse is the validate-config result.
type validateResponse struct {
	Source  string `json:"source"`
	Version string `json:"version,omitempty"`
	File    string `json:"file,omitempty"`
	*validation.Result
}

func (r *validateResponse) TableHeaders() []string {
	return []string{"severity", "path", "message", "expected", "actual", "line"}
}

func (r *validateResponse) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Errors)+len(r.Warnings))
	for _, group := range [][]validation.Issue{r.Errors, r.Warnings} {
		for _, issue := range group {
			line := ""
			if issue.Line > 0 {
				line = strconv.Itoa(issue.Line)
			}
			rows = append(rows, []string{issue.Severity, issue.Path, issue.Message, issue.Expected, issue.Actual, line})
		}
	}
	return rows
}

func handleValidateConfig(ctx context.Context, d *Dispatcher, args tools.Args) (*tools.Envelope, error) {
	src := sourceFromArgs(args)
	if src.Empty() {
		return nil, errNoContent
	}

	res, err := d.resolve(ctx, ToolValidateConfig, src)
	if err != nil {
		return nil, err
	}

	schemaVersion := args.String(tools.ArgSchemaVersion)
	if schemaVersion == "" && d.defaultSchemaVersion != "" {
		// A document that declares its own schema version keeps it.
		if _, declared := res.Document.Get(schemaVersionPath); !declared {
			schemaVersion = d.defaultSchemaVersion
		}
	}

	result, err := validation.Validate(res.Document, validation.Options{SchemaVersion: schemaVersion})
	if err != nil {
		return nil, err
	}
	d.metrics.RecordValidationIssues(ctx, len(result.Errors), len(result.Warnings))

	return d.render(args, &validateResponse{
		Source:  res.Source,
		Version: res.Version,
		File:    res.File,
		Result:  result,
	})
}
