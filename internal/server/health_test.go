package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
)

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	opts = append([]Option{WithRemoteClient(&fakeRemote{}), WithVersion("1.0.0")}, opts...)
	sc, err := NewServerContext(context.Background(), opts...)
	require.NoError(t, err)
	return sc
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(newTestServerContext(t))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		shutdown   bool
		wantCode   int
		wantChecks map[string]string
	}{
		{
			name:       "ready",
			ready:      true,
			wantCode:   http.StatusOK,
			wantChecks: map[string]string{"ready": "ok", "shutdown": "ok", "remote": "ok"},
		},
		{
			name:       "not ready",
			ready:      false,
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]string{"ready": "not ready"},
		},
		{
			name:       "shutting down",
			ready:      true,
			shutdown:   true,
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]string{"shutdown": "shutting down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestServerContext(t)
			h := NewHealthChecker(sc)
			h.SetReady(tt.ready)
			if tt.shutdown {
				require.NoError(t, sc.Shutdown())
			}

			rec := httptest.NewRecorder()
			h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			for k, v := range tt.wantChecks {
				assert.Equal(t, v, resp.Checks[k], "check %s", k)
			}
		})
	}
}

func TestReadinessReportsDisabledInstrumentation(t *testing.T) {
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{})
	require.NoError(t, err)
	h := NewHealthChecker(newTestServerContext(t, WithInstrumentationProvider(provider)))

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "disabled", resp.Checks["instrumentation"])
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newTestServerContext(t, WithRepository("loft-sh/vcluster"))
	sc.Stats().RecordInvocation("validate-config", true)
	sc.Stats().RecordInvocation("validate-config", false)
	h := NewHealthChecker(sc)

	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.NotEmpty(t, resp.Uptime)
	require.NotNil(t, resp.Remote)
	assert.Equal(t, "loft-sh/vcluster", resp.Remote.Repository)
	assert.Equal(t, "chart/values.yaml", resp.Remote.DefaultFile)
	assert.Equal(t, ToolStats{Invocations: 2, Failures: 1}, resp.Tools["validate-config"])
	require.NotNil(t, resp.Instrumentation)
	assert.False(t, resp.Instrumentation.Enabled)
}

func TestDetailedHealthNotReady(t *testing.T) {
	h := NewHealthChecker(newTestServerContext(t))
	h.SetReady(false)
	assert.False(t, h.IsReady())

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
