package permission_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/certa-platform/certa-permissions/internal/assignment"
	"github.com/certa-platform/certa-permissions/internal/catalog"
	"github.com/certa-platform/certa-permissions/internal/permission"
	_ "github.com/certa-platform/certa-permissions/testing"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := permission.NewService(catalog.Default(), assignment.NewMemoryStore(), permission.ServiceConfig{
		Cache:    permission.NewRedisCache(client),
		CacheTTL: time.Minute,
	})
	handler := permission.NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Route("/v1", handler.MountRoutes)
	return r
}

func scopePath(tenant, user uuid.UUID) string {
	return fmt.Sprintf("/v1/tenants/%s/modules/testing_lab/users/%s", tenant, user)
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestAssignAndQueryRoles(t *testing.T) {
	handler := newTestHandler(t)
	tenant := uuid.New()
	user := uuid.New()

	res := doRequest(t, handler, http.MethodPut, scopePath(tenant, user)+"/roles/Manager", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	res = doRequest(t, handler, http.MethodGet, scopePath(tenant, user)+"/roles", "")
	require.Equal(t, http.StatusOK, res.Code)
	var rolesBody struct {
		Roles []string `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &rolesBody))
	require.Equal(t, []string{"Manager"}, rolesBody.Roles)
}

func TestAssignUnknownRoleReturnsProblem(t *testing.T) {
	handler := newTestHandler(t)
	tenant := uuid.New()
	user := uuid.New()

	res := doRequest(t, handler, http.MethodPut, scopePath(tenant, user)+"/roles/NotARole", "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	var problem struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	require.Equal(t, "Invalid Role", problem.Title)
}

func TestMalformedUUIDReturnsProblem(t *testing.T) {
	handler := newTestHandler(t)

	res := doRequest(t, handler, http.MethodGet,
		"/v1/tenants/not-a-uuid/modules/testing_lab/users/"+uuid.NewString()+"/roles", "")
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRevokeReportsRemoved(t *testing.T) {
	handler := newTestHandler(t)
	tenant := uuid.New()
	user := uuid.New()

	res := doRequest(t, handler, http.MethodPut, scopePath(tenant, user)+"/roles/Tester", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	res = doRequest(t, handler, http.MethodDelete, scopePath(tenant, user)+"/roles/Tester", "")
	require.Equal(t, http.StatusOK, res.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.True(t, body["removed"])

	res = doRequest(t, handler, http.MethodDelete, scopePath(tenant, user)+"/roles/Tester", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.False(t, body["removed"])
}

func TestPermissionsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	tenant := uuid.New()
	user := uuid.New()

	res := doRequest(t, handler, http.MethodPut, scopePath(tenant, user)+"/roles/Coordinator", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	res = doRequest(t, handler, http.MethodGet, scopePath(tenant, user)+"/permissions", "")
	require.Equal(t, http.StatusOK, res.Code)
	var set struct {
		Module        string          `json:"module"`
		Actions       map[string]bool `json:"actions"`
		AssignedRoles []string        `json:"assigned_roles"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &set))
	require.Equal(t, "testing_lab", set.Module)
	require.Equal(t, []string{"Coordinator"}, set.AssignedRoles)
	require.True(t, set.Actions["read"])
	require.True(t, set.Actions["create_sessions"])
	require.False(t, set.Actions["delete_sessions"])
}

func TestSingleActionCheck(t *testing.T) {
	handler := newTestHandler(t)
	tenant := uuid.New()
	user := uuid.New()

	res := doRequest(t, handler, http.MethodGet, scopePath(tenant, user)+"/permissions/read", "")
	require.Equal(t, http.StatusOK, res.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.False(t, body["allowed"])

	res = doRequest(t, handler, http.MethodPut, scopePath(tenant, user)+"/roles/Tester", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	res = doRequest(t, handler, http.MethodGet, scopePath(tenant, user)+"/permissions/read", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.True(t, body["allowed"])
}

func TestRoleHolders(t *testing.T) {
	handler := newTestHandler(t)
	tenant := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	require.Equal(t, http.StatusNoContent,
		doRequest(t, handler, http.MethodPut, scopePath(tenant, userA)+"/roles/Manager", "").Code)
	require.Equal(t, http.StatusNoContent,
		doRequest(t, handler, http.MethodPut, scopePath(tenant, userB)+"/roles/Tester", "").Code)

	res := doRequest(t, handler, http.MethodGet,
		fmt.Sprintf("/v1/tenants/%s/modules/testing_lab/roles/Manager/holders", tenant), "")
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Holders []struct {
			UserID string `json:"user_id"`
		} `json:"holders"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Holders, 1)
	require.Equal(t, userA.String(), body.Holders[0].UserID)
}

func TestModuleRoleDefinitions(t *testing.T) {
	handler := newTestHandler(t)

	res := doRequest(t, handler, http.MethodGet, "/v1/modules/testing_lab/roles", "")
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Roles []struct {
			Name           string   `json:"name"`
			Priority       int      `json:"priority"`
			GrantedActions []string `json:"granted_actions"`
		} `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Roles, 4)
	require.Equal(t, "Admin", body.Roles[0].Name)
	require.Empty(t, body.Roles[3].GrantedActions)

	// Unknown modules yield an empty list, not an error.
	res = doRequest(t, handler, http.MethodGet, "/v1/modules/unknown/roles", "")
	require.Equal(t, http.StatusOK, res.Code)
}

func TestBatchCheck(t *testing.T) {
	handler := newTestHandler(t)
	tenant := uuid.New()
	user := uuid.New()

	require.Equal(t, http.StatusNoContent,
		doRequest(t, handler, http.MethodPut, scopePath(tenant, user)+"/roles/Coordinator", "").Code)

	payload := fmt.Sprintf(`{"checks":[
		{"user_id":%q,"tenant_id":%q,"module":"testing_lab","action":"create_sessions"},
		{"user_id":%q,"tenant_id":%q,"module":"testing_lab","action":"delete_sessions"}
	]}`, user, tenant, user, tenant)
	res := doRequest(t, handler, http.MethodPost, "/v1/permissions/check", payload)
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Results []struct {
			Action  string `json:"action"`
			Allowed bool   `json:"allowed"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	require.True(t, body.Results[0].Allowed)
	require.False(t, body.Results[1].Allowed)
}

func TestBatchCheckValidation(t *testing.T) {
	handler := newTestHandler(t)

	res := doRequest(t, handler, http.MethodPost, "/v1/permissions/check", `{"checks":[]}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = doRequest(t, handler, http.MethodPost, "/v1/permissions/check",
		`{"checks":[{"user_id":"nope","tenant_id":"nope","module":"testing_lab","action":"read"}]}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}
