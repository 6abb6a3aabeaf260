package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/modules/testing_lab/roles", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusTeapot, res.Code)

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRes := httptest.NewRecorder()
	m.Handler().ServeHTTP(metricsRes, metricsReq)
	body := metricsRes.Body.String()
	require.Contains(t, body, "certa_http_requests_total")
	require.Contains(t, body, `code="418"`)
}

func TestPermissionCheckCounter(t *testing.T) {
	m := NewMetrics()
	m.PermissionCheck("testing_lab", "create_sessions", true)
	m.PermissionCheck("testing_lab", "delete_sessions", false)
	m.RoleMutation("testing_lab", "assign")
	m.CacheLookup(true)
	m.CacheLookup(false)

	res := httptest.NewRecorder()
	m.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := res.Body.String()
	require.Contains(t, body, `certa_permission_checks_total{action="create_sessions",module="testing_lab",result="allowed"} 1`)
	require.Contains(t, body, `certa_permission_checks_total{action="delete_sessions",module="testing_lab",result="denied"} 1`)
	require.Contains(t, body, `certa_role_grants_total{module="testing_lab",op="assign"} 1`)
	require.True(t, strings.Contains(body, `certa_permission_cache_total{result="hit"} 1`))
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.PermissionCheck("testing_lab", "read", true)
	m.RoleMutation("testing_lab", "revoke")
	m.CacheLookup(false)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	res := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	m.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
}
