package vcluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/giantswarm/mcp-vcluster/internal/generator"
	"github.com/giantswarm/mcp-vcluster/internal/schema"
	"github.com/giantswarm/mcp-vcluster/internal/tools"
	"github.com/giantswarm/mcp-vcluster/internal/tools/output"
	"github.com/giantswarm/mcp-vcluster/internal/validation"
)

// createConfigInput is the argument shape of create-vcluster-config.
type createConfigInput struct {
	generator.Params
	Format        string `json:"format,omitempty" jsonschema:"enum=json,enum=yaml,enum=table" jsonschema_description:"Output format. yaml returns only the generated configuration. Defaults to json."`
	SchemaVersion string `json:"schema-version,omitempty" jsonschema_description:"Schema version to generate for, such as v0.20. Defaults to the latest."`
}

// createConfigInputSchema reflects the JSON Schema advertised as the tool's
// input schema.
func createConfigInputSchema() (json.RawMessage, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&createConfigInput{})
	s.Version = ""
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode input schema: %w", err)
	}
	return data, nil
}

// createResponse is the create-vcluster-config result.
type createResponse struct {
	SchemaVersion string                 `json:"schemaVersion"`
	Params        generator.Params       `json:"params"`
	Config        map[string]any         `json:"config"`
	YAML          string                 `json:"yaml"`
	Assignments   []generator.Assignment `json:"assignments"`
	Validation    *validation.Result     `json:"validation"`
}

func (r *createResponse) TableHeaders() []string {
	return []string{"path", "value"}
}

func (r *createResponse) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		rows = append(rows, []string{a.Path, cellValue(a.Value)})
	}
	return rows
}

func handleCreateConfig(ctx context.Context, d *Dispatcher, args tools.Args) (*tools.Envelope, error) {
	var in createConfigInput
	if err := args.Decode(&in); err != nil {
		return nil, err
	}
	if in.SchemaVersion == "" {
		in.SchemaVersion = d.defaultSchemaVersion
	}
	format, err := output.ParseFormat(in.Format)
	if err != nil {
		return nil, err
	}

	s, err := schema.Resolve(in.SchemaVersion)
	if err != nil {
		return nil, err
	}

	gen, result, err := generateValidated(in.Params, s)
	if err != nil {
		return nil, err
	}
	d.metrics.RecordGeneratedConfig(ctx, gen.Params.Distro, gen.Params.BackingStore)

	text, err := gen.Document.YAML()
	if err != nil {
		return nil, err
	}
	if format == output.FormatYAML {
		return tools.TextEnvelope(text), nil
	}

	return d.render(args, &createResponse{
		SchemaVersion: gen.SchemaVersion,
		Params:        gen.Params,
		Config:        gen.Document.Value(),
		YAML:          text,
		Assignments:   gen.Assignments,
		Validation:    result,
	})
}

// generateValidated runs generation and then validation of its product. A
// product the schema rejects is reported as ErrGeneratedConfigInvalid.
func generateValidated(p generator.Params, s *schema.Schema) (*generator.Generated, *validation.Result, error) {
	gen, err := generator.Generate(p, s)
	if err != nil {
		return nil, nil, err
	}
	result, err := guardGenerated(validation.Against(gen.Document, s))
	if err != nil {
		return nil, nil, err
	}
	return gen, result, nil
}

func guardGenerated(result *validation.Result) (*validation.Result, error) {
	if result.Valid {
		return result, nil
	}
	first := result.Errors[0]
	return nil, fmt.Errorf("%w: %d error(s), first at %s: %s",
		ErrGeneratedConfigInvalid, len(result.Errors), first.Path, first.Message)
}
