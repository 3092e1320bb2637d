package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRules(t *testing.T) {
	for _, version := range []string{"v0.19", "v0.20"} {
		t.Run(version, func(t *testing.T) {
			s, err := Resolve(version)
			require.NoError(t, err)

			rules := ExtractRules(s)
			require.NotEmpty(t, rules)

			seen := make(map[string]bool)
			for _, r := range rules {
				assert.NotEmpty(t, r.Path)
				assert.NotEmpty(t, r.Type)
				assert.False(t, seen[r.Path], "duplicate rule path %s", r.Path)
				seen[r.Path] = true
			}
		})
	}
}

func TestExtractRulesOrder(t *testing.T) {
	s, err := Resolve("v0.20")
	require.NoError(t, err)

	rules := ExtractRules(s)
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		index[r.Path] = i
	}

	// Declaration order at the top level.
	assert.Equal(t, "schemaVersion", rules[0].Path)
	assert.Equal(t, "controlPlane", rules[1].Path)
	assert.Less(t, index["controlPlane"], index["sync"])
	assert.Less(t, index["sync"], index["networking"])

	// Depth first: a whole subtree precedes the next sibling.
	assert.Less(t, index["controlPlane.distro.k0s.enabled"], index["controlPlane.backingStore"])
	assert.Less(t, index["controlPlane.statefulSet.env"], index["controlPlane.statefulSet.env[*]"])
	assert.Less(t, index["controlPlane.statefulSet.env[*]"], index["controlPlane.statefulSet.env[*].name"])
}

func TestExtractRulesContent(t *testing.T) {
	s, err := Resolve("v0.20")
	require.NoError(t, err)

	byPath := make(map[string]Rule)
	for _, r := range ExtractRules(s) {
		byPath[r.Path] = r
	}

	serviceType := byPath["controlPlane.service.spec.type"]
	assert.Equal(t, "string", serviceType.Type)
	assert.Equal(t, []any{"ClusterIP", "NodePort", "LoadBalancer"}, serviceType.Enum)
	assert.Equal(t, "ClusterIP", serviceType.Default)

	secretName := byPath["exportKubeConfig.secret.name"]
	assert.True(t, secretName.Required)
	assert.Equal(t, FormatDNS1123Subdomain, secretName.Constraints["format"])

	port := byPath["controlPlane.proxy.port"]
	assert.Equal(t, float64(1), port.Constraints["minimum"])
	assert.Equal(t, float64(65535), port.Constraints["maximum"])

	store := byPath["controlPlane.backingStore"]
	exprs, ok := store.Constraints["expressions"].([]ExpressionRule)
	require.True(t, ok)
	require.Len(t, exprs, 1)
	assert.Equal(t, "single-backing-store", exprs[0].Name)

	assert.True(t, byPath["controlPlane.distro.k0s"].Deprecated)
	assert.Equal(t, "boolean|string", byPath["sync.fromHost.storageClasses.enabled"].Type)
}
