package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventdash/internal/config"
	"eventdash/internal/model"
	"eventdash/internal/repository"
	"eventdash/internal/service"
)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db, err := repository.NewDB("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	eventRepo := repository.NewEventRepository(db)

	log := zap.NewNop()
	s := NewServer(
		config.Config{Env: "development", HTTPAddr: ":0", ShutdownTimeout: time.Second},
		log,
		db,
		userRepo,
		service.NewSummaryService(categoryRepo, eventRepo),
		service.NewCategoryService(categoryRepo),
		service.NewEventService(eventRepo, categoryRepo, log),
	)
	return s, db
}

func doJSON(t *testing.T, s *Server, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func bootstrapUser(t *testing.T, s *Server, externalID string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/users", nil)
	req.Header.Set("X-External-Id", externalID)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		APIKey string `json:"apiKey"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.APIKey)
	return resp.APIKey
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapUserRequiresExternalID(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/v1/users", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBootstrapUserIsIdempotent(t *testing.T) {
	s, _ := newTestServer(t)
	first := bootstrapUser(t, s, "clerk-1")
	second := bootstrapUser(t, s, "clerk-1")
	assert.Equal(t, first, second)
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/v1/categories", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/categories", "no-such-key", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthStoreFailureIsNotUnauthorized(t *testing.T) {
	s, db := newTestServer(t)
	key := bootstrapUser(t, s, "clerk-1")

	// A broken store must surface as a server error, not as a rejected
	// credential.
	require.NoError(t, db.Migrator().DropTable(&model.User{}))

	w := doJSON(t, s, http.MethodGet, "/v1/categories", key, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCategoryLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	key := bootstrapUser(t, s, "clerk-1")

	// Empty dashboard for a fresh user.
	w := doJSON(t, s, http.MethodGet, "/v1/categories", key, "")
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Categories []struct {
			Name             string     `json:"name"`
			UniqueFieldCount int        `json:"uniqueFieldCount"`
			EventsCount      int64      `json:"eventsCount"`
			LastPing         *time.Time `json:"lastPing"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Empty(t, listing.Categories)

	// Create and poll: no events yet.
	w = doJSON(t, s, http.MethodPost, "/v1/categories", key, `{"name":"bug","color":"#FF6B6B","emoji":"🐛"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/categories/bug/poll", key, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasEvents":false}`, w.Body.String())

	// Record an event, poll flips.
	w = doJSON(t, s, http.MethodPost, "/v1/events", key, `{"category":"bug","fields":{"severity":"high","page":"/checkout"}}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/categories/bug/poll", key, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasEvents":true}`, w.Body.String())

	// Dashboard shows the month's metrics.
	w = doJSON(t, s, http.MethodGet, "/v1/categories", key, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Categories, 1)
	assert.Equal(t, "bug", listing.Categories[0].Name)
	assert.Equal(t, 2, listing.Categories[0].UniqueFieldCount)
	assert.Equal(t, int64(1), listing.Categories[0].EventsCount)
	assert.NotNil(t, listing.Categories[0].LastPing)

	// Delete cascades and the listing empties again.
	w = doJSON(t, s, http.MethodDelete, "/v1/categories/bug", key, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/v1/categories", key, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Empty(t, listing.Categories)
}

func TestPollUnknownCategory(t *testing.T) {
	s, _ := newTestServer(t)
	key := bootstrapUser(t, s, "clerk-1")

	w := doJSON(t, s, http.MethodGet, "/v1/categories/ghost/poll", key, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
	assert.Equal(t, `Category "ghost" not found`, resp.Message)
}

func TestCreateCategoryRejectsBadInput(t *testing.T) {
	s, _ := newTestServer(t)
	key := bootstrapUser(t, s, "clerk-1")

	w := doJSON(t, s, http.MethodPost, "/v1/categories", key, `{"name":"two words","color":"#FF6B6B"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/v1/categories", key, `{"name":"bug","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordEventUnknownCategory(t *testing.T) {
	s, _ := newTestServer(t)
	key := bootstrapUser(t, s, "clerk-1")

	w := doJSON(t, s, http.MethodPost, "/v1/events", key, `{"category":"ghost","fields":{"a":1}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuickstart(t *testing.T) {
	s, _ := newTestServer(t)
	key := bootstrapUser(t, s, "clerk-1")

	w := doJSON(t, s, http.MethodPost, "/v1/categories/quickstart", key, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"count":3}`, w.Body.String())

	w = doJSON(t, s, http.MethodPost, "/v1/categories/quickstart", key, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"count":0}`, w.Body.String())
}

func TestUsersAreIsolated(t *testing.T) {
	s, _ := newTestServer(t)
	alice := bootstrapUser(t, s, "alice")
	bob := bootstrapUser(t, s, "bob")

	w := doJSON(t, s, http.MethodPost, "/v1/categories", alice, `{"name":"bug","color":"#FF6B6B"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Bob cannot see or poll Alice's category.
	w = doJSON(t, s, http.MethodGet, "/v1/categories/bug/poll", bob, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
