package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovex/campoflow/internal/server/handlers"
	authsvc "github.com/agrovex/campoflow/internal/service/auth"
	fieldsvc "github.com/agrovex/campoflow/internal/service/field"
	fumigationsvc "github.com/agrovex/campoflow/internal/service/fumigation"
	stocksvc "github.com/agrovex/campoflow/internal/service/stock"
	usersvc "github.com/agrovex/campoflow/internal/service/user"
	warehousesvc "github.com/agrovex/campoflow/internal/service/warehouse"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	st := memory.New()

	authService := authsvc.NewService(st, session.NewManager(), nil)
	require.NoError(t, authService.EnsureAdmin(context.Background(), "root", "bootstrap"))

	validator := fumigationsvc.NewValidator(st)
	engine := New(Handlers{
		Auth:       handlers.NewAuthHandler(authService, nil),
		Fumigation: handlers.NewFumigationHandler(fumigationsvc.NewService(st, validator, nil, nil), nil),
		Stock:      handlers.NewStockHandler(stocksvc.NewService(st, nil, nil), nil),
		Field:      handlers.NewFieldHandler(fieldsvc.NewService(st, nil, nil), nil),
		Warehouse:  handlers.NewWarehouseHandler(warehousesvc.NewService(st, nil, nil), nil),
		User:       handlers.NewUserHandler(usersvc.NewService(st, nil, nil), nil),
		Report:     handlers.NewReportHandler(nil, nil),
	}, authService, nil)

	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, engine *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthz(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/fields", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/fields", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "root",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterOverHTTP(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "pedro",
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created.UserID, 36)
	assert.Equal(t, "basic", created.Role)

	// New accounts can log in straight away.
	login(t, engine, "pedro", "secret")

	// Duplicate usernames are rejected.
	w = doJSON(t, engine, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "pedro",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFieldLifecycleOverHTTP(t *testing.T) {
	engine := newTestRouter(t)
	token := login(t, engine, "root", "bootstrap")

	w := doJSON(t, engine, http.MethodPost, "/api/fields", token, gin.H{
		"name": "North plot", "crop_type": "maize",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, engine, http.MethodGet, "/api/fields/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPatch, "/api/fields/"+created.ID, token, gin.H{"risk_level": "high"})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodDelete, "/api/fields/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/fields/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCapabilityGating(t *testing.T) {
	engine := newTestRouter(t)
	adminToken := login(t, engine, "root", "bootstrap")

	// An admin creates a basic account, which can read but not mutate.
	w := doJSON(t, engine, http.MethodPost, "/api/users", adminToken, gin.H{
		"username": "viewer", "password": "secret", "role": "basic",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	viewerToken := login(t, engine, "viewer", "secret")

	w = doJSON(t, engine, http.MethodGet, "/api/fields", viewerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/fields", viewerToken, gin.H{"name": "North plot"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/users", viewerToken, gin.H{
		"username": "second", "password": "secret",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFumigationValidationOverHTTP(t *testing.T) {
	engine := newTestRouter(t)
	token := login(t, engine, "root", "bootstrap")

	w := doJSON(t, engine, http.MethodPost, "/api/fumigations", token, gin.H{
		"field_id":      "ghost",
		"applicator_id": "ghost",
		"products":      []string{"ghost"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestLogoutRevokesToken(t *testing.T) {
	engine := newTestRouter(t)
	token := login(t, engine, "root", "bootstrap")

	w := doJSON(t, engine, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/fields", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportExportUnavailable(t *testing.T) {
	engine := newTestRouter(t)
	token := login(t, engine, "root", "bootstrap")

	w := doJSON(t, engine, http.MethodPost, "/api/reports/export", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
