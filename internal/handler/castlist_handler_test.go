package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"castlist-be/internal/auth"
	"castlist-be/internal/codec"
	"castlist-be/internal/domain"
	"castlist-be/internal/middleware"
	"castlist-be/internal/repository"
	"castlist-be/internal/service"
	"castlist-be/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, store *repository.MemoryStore) (*chi.Mux, *auth.JWTManager) {
	t.Helper()

	log, err := logger.New("error", "test")
	require.NoError(t, err)

	svc := service.NewCastlistService(store, nil, zap.NewNop())
	h := NewCastlistHandler(svc, log)
	jwtManager := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)

	r := chi.NewRouter()
	r.Route("/api/communities/{communityID}", func(r chi.Router) {
		r.Get("/castlists", h.ListCastlists)
		r.Get("/castlists/{castlistID}", h.GetCastlist)
		r.Get("/castlists/{castlistID}/members", h.GetMembers)
		r.Get("/migration-stats", h.GetMigrationStats)
		r.With(middleware.Auth(jwtManager, log)).
			Post("/castlists/{castlistID}/materialize", h.Materialize)
	})
	return r, jwtManager
}

func doRequest(t *testing.T, router *chi.Mux, method, path, token string) (*httptest.ResponseRecorder, ListResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body ListResponse
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestListCastlists(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g1", LegacyLabel: "production"})
	router, _ := newTestRouter(t, store)

	rec, body := doRequest(t, router, http.MethodGet, "/api/communities/c1/castlists", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
	lists := data["castlists"].([]interface{})
	first := lists[0].(map[string]interface{})
	assert.Equal(t, domain.DefaultCastlistID, first["id"])
}

func TestGetCastlist(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g1", LegacyLabel: "production"})
	router, _ := newTestRouter(t, store)

	t.Run("virtual list found", func(t *testing.T) {
		rec, body := doRequest(t, router, http.MethodGet,
			"/api/communities/c1/castlists/"+codec.Encode("production"), "")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, body.Success)
		data := body.Data.(map[string]interface{})
		assert.Equal(t, "production", data["name"])
		assert.Equal(t, true, data["is_virtual"])
	})

	t.Run("unknown list is 404", func(t *testing.T) {
		rec, body := doRequest(t, router, http.MethodGet,
			"/api/communities/c1/castlists/castlist_missing", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.False(t, body.Success)
		assert.Equal(t, "not_found", body.Error.Type)
	})
}

func TestGetMembers(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-a", LegacyLabel: "alumni"})
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-b", LegacyLabel: "alumni"})
	router, _ := newTestRouter(t, store)

	rec, body := doRequest(t, router, http.MethodGet,
		"/api/communities/c1/castlists/"+codec.Encode("alumni")+"/members", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
	members := data["member_group_ids"].([]interface{})
	assert.ElementsMatch(t, []interface{}{"g-a", "g-b"}, members)
}

func TestGetMigrationStats(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedEntity("c1", &domain.Castlist{ID: "castlist_1_u", Name: "Production", Kind: domain.KindCustom})
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g1", LegacyLabel: "alumni"})
	router, _ := newTestRouter(t, store)

	rec, body := doRequest(t, router, http.MethodGet, "/api/communities/c1/migration-stats", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])
	assert.Equal(t, float64(1), data["real"])
	assert.Equal(t, float64(2), data["virtual"])
	assert.Equal(t, float64(33), data["migration_progress_percent"])
}

func TestMaterialize(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		router, _ := newTestRouter(t, repository.NewMemoryStore())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost,
			"/api/communities/c1/castlists/"+codec.Encode("production")+"/materialize", nil)
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		router, _ := newTestRouter(t, repository.NewMemoryStore())

		rec, _ := doRequest(t, router, http.MethodPost,
			"/api/communities/c1/castlists/"+codec.Encode("production")+"/materialize", "not-a-token")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("promotes a virtual list", func(t *testing.T) {
		store := repository.NewMemoryStore()
		store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g1", LegacyLabel: "production"})
		router, jwtManager := newTestRouter(t, store)

		token, err := jwtManager.Generate("user-42")
		require.NoError(t, err)

		rec, body := doRequest(t, router, http.MethodPost,
			"/api/communities/c1/castlists/"+codec.Encode("production")+"/materialize", token)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, body.Success)
		data := body.Data.(map[string]interface{})
		assert.Equal(t, true, data["materialized"])

		realID := data["castlist_id"].(string)
		assert.True(t, strings.HasPrefix(realID, "castlist_"))
		assert.True(t, strings.HasSuffix(realID, "_user-42"))
		assert.NotNil(t, store.Entity("c1", realID))
	})

	t.Run("unknown virtual id is 404", func(t *testing.T) {
		router, jwtManager := newTestRouter(t, repository.NewMemoryStore())

		token, err := jwtManager.Generate("user-42")
		require.NoError(t, err)

		rec, body := doRequest(t, router, http.MethodPost,
			"/api/communities/c1/castlists/"+codec.Encode("never-seen")+"/materialize", token)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.False(t, body.Success)
	})
}

func TestStoreErrorMapping(t *testing.T) {
	store := repository.NewMemoryStore()
	store.LoadEntitiesErr = repository.ErrStoreUnavailable
	router, _ := newTestRouter(t, store)

	rec, body := doRequest(t, router, http.MethodGet, "/api/communities/c1/castlists", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.False(t, body.Success)
	assert.Equal(t, "unavailable", body.Error.Type)
}
