package vcluster

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-vcluster/internal/remote"
	"github.com/giantswarm/mcp-vcluster/internal/tools"
	"github.com/giantswarm/mcp-vcluster/internal/tools/output"
	"github.com/giantswarm/mcp-vcluster/internal/tools/vcluster/testdata"
	"github.com/giantswarm/mcp-vcluster/internal/validation"
)

const remoteValues = `controlPlane:
  distro:
    k8s:
      enabled: true
  backingStore:
    database:
      external:
        enabled: true
        dataSource: "postgres://admin:hunter2@db:5432/vcluster"
`

func run(t *testing.T, client *testdata.SpyClient, tool string, args map[string]any) *tools.Envelope {
	t.Helper()
	env := ExecuteToolHandler(context.Background(), tool, args, client)
	require.NotNil(t, env)
	return env
}

func decode[T any](t *testing.T, env *tools.Envelope) T {
	t.Helper()
	require.False(t, env.IsError, env.Text())
	require.NotEmpty(t, env.Content)
	var v T
	require.NoError(t, json.Unmarshal([]byte(env.Content[0].Text), &v), env.Content[0].Text)
	return v
}

type queryOut struct {
	Source    string `json:"source"`
	Version   string `json:"version"`
	Mode      string `json:"mode"`
	Total     int    `json:"total"`
	Truncated bool   `json:"truncated"`
	Matches   []struct {
		Path  string `json:"path"`
		Value any    `json:"value"`
	} `json:"matches"`
}

func TestSmartQueryInlineContent(t *testing.T) {
	client := &testdata.SpyClient{}
	env := run(t, client, ToolSmartQuery, map[string]any{
		"content": "controlPlane:\n  distro: k3s\n",
		"query":   "distro",
	})

	out := decode[queryOut](t, env)
	assert.Equal(t, "inline", out.Source)
	assert.Equal(t, "smart", out.Mode)
	require.NotEmpty(t, out.Matches)

	found := false
	for _, m := range out.Matches {
		if m.Value == "k3s" {
			found = true
			assert.Equal(t, "controlPlane.distro", m.Path)
		}
	}
	assert.True(t, found, "no match with value k3s in %+v", out.Matches)
}

func TestSmartQueryInlineContentTakesPrecedence(t *testing.T) {
	client := &testdata.SpyClient{Files: map[string]string{
		testdata.Key("v0.20.0", remote.DefaultFile): remoteValues,
	}}
	env := run(t, client, ToolSmartQuery, map[string]any{
		"content": "controlPlane:\n  distro: k3s\n",
		"version": "v0.20.0",
		"file":    remote.DefaultFile,
		"query":   "controlPlane.distro",
	})

	out := decode[queryOut](t, env)
	assert.Equal(t, "inline", out.Source)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "k3s", out.Matches[0].Value)

	tags, content := client.Calls()
	assert.Zero(t, tags)
	assert.Zero(t, content)
}

func TestSmartQueryRemote(t *testing.T) {
	client := &testdata.SpyClient{Files: map[string]string{
		testdata.Key("main", remote.DefaultFile):    remoteValues,
		testdata.Key("v0.20.0", remote.DefaultFile): "controlPlane:\n  distro:\n    k3s:\n      enabled: true\n",
	}}

	t.Run("defaults to main values", func(t *testing.T) {
		out := decode[queryOut](t, run(t, client, ToolSmartQuery, map[string]any{"query": "controlPlane.distro.k8s.enabled"}))
		assert.Equal(t, "remote", out.Source)
		assert.Equal(t, "main", out.Version)
		require.Len(t, out.Matches, 1)
		assert.Equal(t, true, out.Matches[0].Value)
	})

	t.Run("version only uses default file", func(t *testing.T) {
		out := decode[queryOut](t, run(t, client, ToolSmartQuery, map[string]any{"search": "k3s", "version": "v0.20.0"}))
		assert.Equal(t, "v0.20.0", out.Version)
		require.NotEmpty(t, out.Matches)
		assert.Equal(t, "controlPlane.distro.k3s", out.Matches[0].Path)
	})

	t.Run("missing path is empty not an error", func(t *testing.T) {
		out := decode[queryOut](t, run(t, client, ToolSmartQuery, map[string]any{"path": "controlPlane.nothing.here"}))
		assert.Empty(t, out.Matches)
		assert.Zero(t, out.Total)
	})

	t.Run("secrets are masked", func(t *testing.T) {
		out := decode[queryOut](t, run(t, client, ToolSmartQuery, map[string]any{"query": "controlPlane.backingStore.database.external"}))
		require.Len(t, out.Matches, 1)
		external, ok := out.Matches[0].Value.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, output.RedactedValue, external["dataSource"])
		assert.Equal(t, true, external["enabled"])
	})

	assert.Contains(t, client.Requested(), testdata.Key("main", remote.DefaultFile))
}

func TestSmartQueryLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("sync:\n")
	for _, name := range []string{"pods", "services", "secrets", "configMaps", "ingresses"} {
		sb.WriteString("  " + name + ":\n    enabled: true\n")
	}

	env := run(t, &testdata.SpyClient{}, ToolSmartQuery, map[string]any{
		"content": sb.String(),
		"query":   "enabled",
		"limit":   2.0,
	})
	out := decode[queryOut](t, env)
	assert.Len(t, out.Matches, 2)
	assert.Equal(t, 5, out.Total)
	assert.True(t, out.Truncated)
	require.Len(t, env.Content, 2)
	assert.Contains(t, env.Content[1].Text, "Showing 2 of 5 matches")
}

func TestSmartQueryDottedSearchTerm(t *testing.T) {
	content := "controlPlane:\n  statefulSet:\n    image:\n      registry: ghcr.io\n"

	out := decode[queryOut](t, run(t, &testdata.SpyClient{}, ToolSmartQuery, map[string]any{
		"content": content,
		"query":   "ghcr.io",
	}))
	assert.Equal(t, "smart", out.Mode)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "controlPlane.statefulSet.image.registry", out.Matches[0].Path)
	assert.Equal(t, "ghcr.io", out.Matches[0].Value)

	strict := decode[queryOut](t, run(t, &testdata.SpyClient{}, ToolSmartQuery, map[string]any{
		"content": content,
		"query":   "ghcr.io",
		"mode":    "path",
	}))
	assert.Equal(t, "path", strict.Mode)
	assert.Empty(t, strict.Matches)
}

func TestSmartQueryArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{name: "no query", args: map[string]any{"content": "a: 1"}, wantMsg: "a query is required"},
		{name: "bad mode", args: map[string]any{"query": "a", "mode": "regex", "content": "a: 1"}, wantMsg: "unsupported query mode"},
		{name: "bad limit", args: map[string]any{"query": "a", "limit": "many", "content": "a: 1"}, wantMsg: `invalid argument "limit"`},
		{name: "negative limit", args: map[string]any{"query": "a", "limit": -1.0, "content": "a: 1"}, wantMsg: "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := run(t, &testdata.SpyClient{}, ToolSmartQuery, tt.args)
			assert.True(t, env.IsError)
			assert.Contains(t, env.Text(), "Error executing smart-query: ")
			assert.Contains(t, env.Text(), tt.wantMsg)
		})
	}
}

func TestListVersions(t *testing.T) {
	client := &testdata.SpyClient{Tags: []string{"v0.20.0", "v0.19.0"}}
	env := run(t, client, ToolListVersions, nil)

	assert.Contains(t, env.Text(), "main")
	assert.Contains(t, env.Text(), "v0.20.0")
	assert.Contains(t, env.Text(), "v0.19.0")

	out := decode[struct {
		Default  string   `json:"default"`
		Versions []string `json:"versions"`
		Total    int      `json:"total"`
	}](t, env)
	assert.Equal(t, "main", out.Default)
	assert.Equal(t, []string{"main", "v0.20.0", "v0.19.0"}, out.Versions)
	assert.Equal(t, 3, out.Total)
}

func TestListVersionsTable(t *testing.T) {
	client := &testdata.SpyClient{Tags: []string{"v0.19.0", "v0.21.0-beta.1"}}
	env := run(t, client, ToolListVersions, map[string]any{"format": "table"})
	require.False(t, env.IsError, env.Text())
	assert.Contains(t, env.Text(), "prerelease")
	assert.Contains(t, env.Text(), "release")
	assert.Contains(t, env.Text(), "default")
}

func TestOrderVersions(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{name: "empty", tags: nil, want: []string{"main"}},
		{
			name: "semver descending",
			tags: []string{"v0.19.0", "v0.20.1", "v0.20.0", "v0.21.0-alpha.1"},
			want: []string{"main", "v0.21.0-alpha.1", "v0.20.1", "v0.20.0", "v0.19.0"},
		},
		{
			name: "non-semver after in input order",
			tags: []string{"nightly", "v0.19.0", "latest", "v0.20.0"},
			want: []string{"main", "v0.20.0", "v0.19.0", "nightly", "latest"},
		},
		{
			name: "duplicates and main dropped",
			tags: []string{"main", "v0.20.0", "v0.20.0", " "},
			want: []string{"main", "v0.20.0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderVersions("main", tt.tags))
		})
	}
}

type validateOut struct {
	Source        string `json:"source"`
	Valid         bool   `json:"valid"`
	SchemaVersion string `json:"schemaVersion"`
	Errors        []struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	} `json:"errors"`
}

func TestValidateConfigWithoutSource(t *testing.T) {
	for _, args := range []map[string]any{nil, {}, {"content": "   "}, {"schema-version": "v0.20"}} {
		env := run(t, &testdata.SpyClient{}, ToolValidateConfig, args)
		assert.True(t, env.IsError)
		assert.Contains(t, env.Text(), "No content to validate")
	}
}

func TestValidateConfigInline(t *testing.T) {
	client := &testdata.SpyClient{}
	args := map[string]any{"content": "controlPlane:\n  service:\n    spec:\n      type: ExternalName\n"}

	first := decode[validateOut](t, run(t, client, ToolValidateConfig, args))
	assert.False(t, first.Valid)
	assert.Equal(t, "inline", first.Source)
	require.NotEmpty(t, first.Errors)
	assert.Equal(t, "controlPlane.service.spec.type", first.Errors[0].Path)

	second := decode[validateOut](t, run(t, client, ToolValidateConfig, args))
	assert.Equal(t, first.Errors, second.Errors)
}

func TestValidateConfigSchemaVersion(t *testing.T) {
	content := "colorScheme: dark\n"

	strict := decode[validateOut](t, run(t, &testdata.SpyClient{}, ToolValidateConfig, map[string]any{"content": content}))
	assert.False(t, strict.Valid)
	assert.Equal(t, "v0.20", strict.SchemaVersion)

	lenient := decode[validateOut](t, run(t, &testdata.SpyClient{}, ToolValidateConfig, map[string]any{
		"content":        content,
		"schema-version": "v0.19",
	}))
	assert.True(t, lenient.Valid)
	assert.Equal(t, "v0.19", lenient.SchemaVersion)
}

func TestValidateConfigUpstreamSections(t *testing.T) {
	content := `controlPlane:
  distro:
    k8s:
      enabled: true
rbac:
  role:
    enabled: true
  clusterRole:
    enabled: auto
experimental:
  syncSettings:
    disableSync: false
plugins: {}
plugin: {}
integrations:
  metricsServer:
    enabled: false
pro: {}
global: {}
external: {}
serviceCIDR: ""
`

	out := decode[validateOut](t, run(t, &testdata.SpyClient{}, ToolValidateConfig, map[string]any{"content": content}))
	assert.Equal(t, "v0.20", out.SchemaVersion)
	assert.True(t, out.Valid, "%+v", out.Errors)
	assert.Empty(t, out.Errors)
}

func TestValidateConfigRemote(t *testing.T) {
	client := &testdata.SpyClient{Files: map[string]string{
		testdata.Key("v0.20.0", "chart/values.yaml"): remoteValues,
	}}
	out := decode[validateOut](t, run(t, client, ToolValidateConfig, map[string]any{
		"version": "v0.20.0",
		"file":    "chart/values.yaml",
	}))
	assert.Equal(t, "remote", out.Source)
	assert.True(t, out.Valid, "%+v", out.Errors)

	env := run(t, client, ToolValidateConfig, map[string]any{"version": "v9.9.9"})
	assert.True(t, env.IsError)
	assert.Contains(t, env.Text(), "Error executing validate-config: ")
	assert.Contains(t, env.Text(), remote.ErrNotFound.Error())
}

func TestValidateConfigTable(t *testing.T) {
	env := run(t, &testdata.SpyClient{}, ToolValidateConfig, map[string]any{
		"content": "controlPlane: fast\n",
		"format":  "table",
	})
	require.False(t, env.IsError, env.Text())
	assert.Contains(t, env.Text(), "controlPlane")
	assert.Contains(t, env.Text(), "expected object, got string")
}

type ruleOut struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

func TestExtractValidationRules(t *testing.T) {
	for _, version := range []string{"", "v0.19", "v0.20"} {
		t.Run("schema "+version, func(t *testing.T) {
			args := map[string]any{}
			if version != "" {
				args["schema-version"] = version
			}
			rules := decode[[]ruleOut](t, run(t, &testdata.SpyClient{}, ToolExtractRules, args))

			require.NotEmpty(t, rules)
			for i, r := range rules {
				assert.NotEmpty(t, r.Path, "rule %d", i)
			}
		})
	}
}

func TestExtractValidationRulesYAML(t *testing.T) {
	env := run(t, &testdata.SpyClient{}, ToolExtractRules, map[string]any{"format": "yaml"})
	require.False(t, env.IsError, env.Text())
	assert.True(t, strings.HasPrefix(env.Text(), "- path: "), env.Text())
}

type createOut struct {
	SchemaVersion string         `json:"schemaVersion"`
	Config        map[string]any `json:"config"`
	YAML          string         `json:"yaml"`
	Assignments   []struct {
		Path  string `json:"path"`
		Value any    `json:"value"`
	} `json:"assignments"`
	Validation struct {
		Valid bool `json:"valid"`
	} `json:"validation"`
}

func TestCreateConfigRoundTrip(t *testing.T) {
	client := &testdata.SpyClient{}
	out := decode[createOut](t, run(t, client, ToolCreateConfig, map[string]any{
		"distro":           "k8s",
		"highAvailability": true,
		"backingStore":     "deployed-etcd",
		"serviceType":      "LoadBalancer",
		"ingressHost":      "vc.example.com",
		"syncNodes":        true,
		"isolation":        true,
		"persistenceSize":  "20Gi",
	}))

	assert.True(t, out.Validation.Valid)
	assert.Equal(t, "v0.20", out.SchemaVersion)
	require.NotEmpty(t, out.Assignments)

	for _, a := range out.Assignments {
		t.Run(a.Path, func(t *testing.T) {
			q := decode[queryOut](t, run(t, client, ToolSmartQuery, map[string]any{
				"content": out.YAML,
				"query":   a.Path,
				"mode":    "path",
			}))
			require.Len(t, q.Matches, 1)
			assert.Equal(t, a.Value, q.Matches[0].Value)
		})
	}

	valid := decode[validateOut](t, run(t, client, ToolValidateConfig, map[string]any{"content": out.YAML}))
	assert.True(t, valid.Valid, "%+v", valid.Errors)
}

func TestCreateConfigYAML(t *testing.T) {
	env := run(t, &testdata.SpyClient{}, ToolCreateConfig, map[string]any{
		"format":         "yaml",
		"schema-version": "v0.19",
	})
	require.False(t, env.IsError, env.Text())
	assert.Contains(t, env.Text(), "schemaVersion: v0.19")
	assert.Contains(t, env.Text(), "k3s:")
}

func TestCreateConfigRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{name: "ha with embedded database", args: map[string]any{"highAvailability": true, "backingStore": "embedded-database"}, wantMsg: "backingStore"},
		{name: "external database without source", args: map[string]any{"backingStore": "external-database"}, wantMsg: "externalDataSource"},
		{name: "bad replicas type", args: map[string]any{"replicas": "three"}, wantMsg: "failed to decode arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := run(t, &testdata.SpyClient{}, ToolCreateConfig, tt.args)
			assert.True(t, env.IsError)
			assert.Contains(t, env.Text(), "Error executing create-vcluster-config: ")
			assert.Contains(t, env.Text(), tt.wantMsg)
		})
	}
}

func TestGuardGenerated(t *testing.T) {
	ok := &validation.Result{Valid: true, Errors: []validation.Issue{}}
	got, err := guardGenerated(ok)
	require.NoError(t, err)
	assert.Same(t, ok, got)

	_, err = guardGenerated(&validation.Result{
		Valid:  false,
		Errors: []validation.Issue{{Path: "controlPlane", Message: "expected object, got string"}},
	})
	require.ErrorIs(t, err, ErrGeneratedConfigInvalid)
	assert.Contains(t, err.Error(), "first at controlPlane")
}
