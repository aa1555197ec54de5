package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/docsentry/docsentry/internal/authz"
	"github.com/docsentry/docsentry/internal/cache"
	"github.com/docsentry/docsentry/internal/database/testutil"
	"github.com/docsentry/docsentry/internal/middleware"
	"github.com/docsentry/docsentry/internal/models"
	"github.com/docsentry/docsentry/internal/permissions"
	"github.com/docsentry/docsentry/pkg/response"
)

type fixture struct {
	db          *gorm.DB
	store       authz.Store
	cache       *authz.PermissionCache
	invalidator *authz.Invalidator
	router      *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	store, err := authz.NewStore(db)
	require.NoError(t, err)

	backend := cache.NewDatabaseStore(db)

	permCache, err := authz.NewPermissionCache(backend, store, authz.TTLConfig{})
	require.NoError(t, err)
	invalidator, err := authz.NewInvalidator(permCache, store)
	require.NoError(t, err)

	cacheHandler, err := NewCacheHandler(permCache, invalidator, store)
	require.NoError(t, err)
	permHandler, err := NewPermissionHandler(permCache)
	require.NoError(t, err)

	router := gin.New()
	identity := func(c *gin.Context) {
		if as := c.GetHeader("X-Test-User"); as != "" {
			c.Set(middleware.CtxUsernameKey, as)
		}
	}
	router.GET("/health", Health())
	api := router.Group("/api", identity)
	api.GET("/cache/stats", cacheHandler.Stats)
	api.GET("/cache/config", cacheHandler.Config)
	api.DELETE("/cache/users/:username", cacheHandler.EvictUser)
	api.GET("/permissions/my", permHandler.MyPermissions)
	api.GET("/permissions/registry", permHandler.Registry)

	return &fixture{db: db, store: store, cache: permCache, invalidator: invalidator, router: router}
}

func (f *fixture) seedUser(t *testing.T, username string, codes ...string) *models.User {
	t.Helper()

	role := &models.Role{Name: username + "-role"}
	require.NoError(t, f.db.Create(role).Error)
	for _, code := range codes {
		perm := &models.Permission{BaseModel: models.BaseModel{ID: code}, Code: code, Module: "document"}
		require.NoError(t, f.db.FirstOrCreate(perm, "id = ?", code).Error)
		require.NoError(t, f.db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	}
	user := &models.User{Username: username, Status: models.UserStatusActive, Roles: []models.Role{*role}}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) do(method, path, as string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != "" {
		req.Header.Set("X-Test-User", as)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	data, ok := payload.Data.(map[string]any)
	require.True(t, ok)
	return data
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", decodeData(t, w)["status"])
}

func TestCacheStatsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", permissions.DocView)

	// One miss then one hit.
	_, err := f.cache.GetUserPermissions(context.Background(), "alice")
	require.NoError(t, err)
	_, err = f.cache.GetUserPermissions(context.Background(), "alice")
	require.NoError(t, err)

	w := f.do(http.MethodGet, "/api/cache/stats", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	require.Equal(t, float64(1), data["hits"])
	require.Equal(t, float64(1), data["misses"])
	require.Equal(t, float64(0), data["evictions"])
}

func TestCacheConfigEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/cache/config", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	require.Equal(t, "database", data["backend"])

	ttl, ok := data["ttl"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, authz.DefaultPermissionsTTL.String(), ttl["permissions"])
	require.Equal(t, authz.DefaultAssignmentsTTL.String(), ttl["assignments"])
}

func TestEvictUserEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice", permissions.DocView)

	doc := &models.Document{Title: "launch plan"}
	require.NoError(t, f.db.Create(doc).Error)
	require.NoError(t, f.db.Create(&models.DocumentAssignment{
		DocumentID:     doc.ID,
		UserID:         user.ID,
		AssignmentType: models.AssignmentEditor,
	}).Error)

	// Warm both namespaces.
	_, err := f.cache.GetUserPermissions(ctx, "alice")
	require.NoError(t, err)
	_, err = f.cache.GetAssignments(ctx, user.ID, doc.ID)
	require.NoError(t, err)

	w := f.do(http.MethodDelete, "/api/cache/users/alice", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", decodeData(t, w)["evicted"])

	stats := f.cache.Stats()
	require.GreaterOrEqual(t, stats.Evictions, uint64(2))
}

func TestEvictUserEndpointScopedToDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice", permissions.DocView)

	// Warm assignment entries for two documents.
	_, err := f.cache.GetAssignments(ctx, user.ID, "doc-1")
	require.NoError(t, err)
	_, err = f.cache.GetAssignments(ctx, user.ID, "doc-2")
	require.NoError(t, err)

	w := f.do(http.MethodDelete, "/api/cache/users/alice", "admin", `{"documents":["doc-1"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	// doc-2's entry survives the scoped eviction, doc-1's does not.
	hitsBefore := f.cache.Stats().Hits
	_, err = f.cache.GetAssignments(ctx, user.ID, "doc-2")
	require.NoError(t, err)
	require.Equal(t, hitsBefore+1, f.cache.Stats().Hits)

	missesBefore := f.cache.Stats().Misses
	_, err = f.cache.GetAssignments(ctx, user.ID, "doc-1")
	require.NoError(t, err)
	require.Equal(t, missesBefore+1, f.cache.Stats().Misses)
}

func TestEvictUserEndpointRejectsBadPayload(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", permissions.DocView)

	w := f.do(http.MethodDelete, "/api/cache/users/alice", "admin", `{"documents": "not-a-list"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvictUnknownUserStillSucceeds(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodDelete, "/api/cache/users/ghost", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMyPermissionsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", permissions.DocView, permissions.DocEdit)

	w := f.do(http.MethodGet, "/api/permissions/my", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	require.Equal(t, "alice", data["username"])

	codes, ok := data["permissions"].([]any)
	require.True(t, ok)
	require.ElementsMatch(t, []any{permissions.DocView, permissions.DocEdit}, codes)
}

func TestMyPermissionsRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/permissions/my", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegistryEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/permissions/registry", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)

	defs, ok := payload.Data.([]any)
	require.True(t, ok)
	require.Len(t, defs, len(permissions.GetAll()))
}
