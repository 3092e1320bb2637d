package output

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type versionRow struct {
	Name   string `json:"name"`
	Semver bool   `json:"semver"`
}

type versionList []versionRow

func (v versionList) TableHeaders() []string { return []string{"version", "semver"} }

func (v versionList) TableRows() [][]string {
	rows := make([][]string, len(v))
	for i, r := range v {
		semver := "no"
		if r.Semver {
			semver = "yes"
		}
		rows[i] = []string{r.Name, semver}
	}
	return rows
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "json", want: FormatJSON},
		{in: " YAML ", want: FormatYAML},
		{in: "table", want: FormatTable},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				assert.Contains(t, err.Error(), "unsupported format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderJSON(t *testing.T) {
	r := NewRenderer(nil)
	text, warning, err := r.Render(map[string]any{"valid": true, "errors": []string{}}, FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, warning)
	assert.Equal(t, "{\n  \"errors\": [],\n  \"valid\": true\n}", text)
}

func TestRenderYAMLKeepsJSONFieldNames(t *testing.T) {
	r := NewRenderer(nil)
	text, _, err := r.Render(struct {
		SchemaVersion string `json:"schemaVersion"`
		Valid         bool   `json:"valid"`
	}{SchemaVersion: "v0.20", Valid: true}, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "schemaVersion: v0.20\nvalid: true\n", text)
}

func TestRenderTableWithTabular(t *testing.T) {
	r := NewRenderer(nil)
	text, _, err := r.Render(versionList{{Name: "main"}, {Name: "v0.20.0", Semver: true}}, FormatTable)
	require.NoError(t, err)

	assert.Contains(t, text, "Version")
	assert.Contains(t, text, "Semver")
	assert.Contains(t, text, "main")
	assert.Contains(t, text, "v0.20.0")
	assert.Less(t, strings.Index(text, "main"), strings.Index(text, "v0.20.0"))
}

func TestRenderTableFlattensOtherValues(t *testing.T) {
	r := NewRenderer(nil)
	text, _, err := r.Render(map[string]any{
		"controlPlane": map[string]any{"distro": map[string]any{"k3s": map[string]any{"enabled": true}}},
		"tags":         []any{"a"},
	}, FormatTable)
	require.NoError(t, err)

	assert.Contains(t, text, "controlPlane.distro.k3s.enabled")
	assert.Contains(t, text, "tags[0]")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	r := NewRenderer(nil)
	_, _, err := r.Render(map[string]any{}, Format("csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRenderSizeLimit(t *testing.T) {
	r := NewRenderer(&Config{MaxResponseBytes: 32})

	t.Run("table is cut with a warning", func(t *testing.T) {
		text, warning, err := r.Render(map[string]any{"key": strings.Repeat("x", 100)}, FormatTable)
		require.NoError(t, err)
		require.NotNil(t, warning)
		assert.LessOrEqual(t, len(text), 32)
	})

	t.Run("json falls back to compact encoding", func(t *testing.T) {
		v := map[string]any{"a": []int{1, 2, 3}, "b": map[string]any{"c": "d"}}
		indented, _, err := NewRenderer(nil).Render(v, FormatJSON)
		require.NoError(t, err)
		require.Greater(t, len(indented), 32)

		text, warning, err := r.Render(v, FormatJSON)
		require.NoError(t, err)
		assert.Nil(t, warning)
		assert.JSONEq(t, indented, text)
	})

	t.Run("oversized json is refused rather than cut", func(t *testing.T) {
		_, _, err := r.Render(strings.Repeat("x", 100), FormatJSON)
		require.ErrorIs(t, err, ErrResponseTooLarge)
	})

	t.Run("oversized yaml is refused rather than cut", func(t *testing.T) {
		_, _, err := r.Render(map[string]any{"key": strings.Repeat("x", 100)}, FormatYAML)
		require.ErrorIs(t, err, ErrResponseTooLarge)
	})
}

func TestTableCutsWideCells(t *testing.T) {
	text := Table([]string{"path"}, [][]string{{strings.Repeat("a", 40) + "\nnext"}}, 10)
	assert.Contains(t, text, "…")
	assert.NotContains(t, text, strings.Repeat("a", 11))
}

func TestFlattenEmptyContainers(t *testing.T) {
	rows, err := flatten(map[string]any{"a": map[string]any{}, "b": []any{}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "{}"}, {"b", "[]"}}, rows)
}
