package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medchain/medchain-api/internal/middleware"
	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository/leveldb"
	identityService "github.com/medchain/medchain-api/internal/service/identity"
	"github.com/medchain/medchain-api/pkg/auth"
	"github.com/medchain/medchain-api/pkg/logger"
	"github.com/medchain/medchain-api/pkg/validator"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterCustomValidators())

	store, err := leveldb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := identityService.NewService(
		leveldb.NewUserRepository(store),
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard, TimeFormat: time.RFC3339}),
	)
	require.NoError(t, svc.Bootstrap(context.Background()))

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	adminOnly := middleware.NewAuthMiddleware(jwtSvc).RequireRole(model.RoleAdmin)

	engine := gin.New()
	NewHandler(svc, jwtSvc, adminOnly).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func adminToken(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "admin@medchain.local", "role": "ADMIN",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data model.TokenResponse
	decodeData(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRegisterApproveLoginFlow(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Grace Hopper", "email": "grace@example.com", "role": "DOCTOR",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user model.User
	decodeData(t, w, &user)
	assert.Equal(t, model.UserStatusPending, user.Status)

	// Pending accounts cannot log in yet.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "grace@example.com", "role": "DOCTOR",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := adminToken(t, engine)
	w = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%s/approve", user.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "grace@example.com", "role": "DOCTOR",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	engine := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Eve", "email": "eve@example.com", "role": "SUPERUSER",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	engine := newTestRouter(t)

	// No token at all.
	w := doJSON(t, engine, http.MethodGet, "/api/v1/users/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A non-admin session token.
	reg := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Dr. No", "email": "no@example.com", "role": "DOCTOR",
	})
	require.Equal(t, http.StatusCreated, reg.Code)
	var user model.User
	decodeData(t, reg, &user)

	token := adminToken(t, engine)
	approve := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%s/approve", user.ID), token, nil)
	require.Equal(t, http.StatusOK, approve.Code)

	login := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "no@example.com", "role": "DOCTOR",
	})
	require.Equal(t, http.StatusOK, login.Code)
	var data model.TokenResponse
	decodeData(t, login, &data)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/users/pending", data.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/users/pending", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApproveUnknownUserReturns404(t *testing.T) {
	engine := newTestRouter(t)
	token := adminToken(t, engine)

	w := doJSON(t, engine, http.MethodPost,
		"/api/v1/users/7b1f3c92-1111-2222-3333-444455556666/approve", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsersByRole(t *testing.T) {
	engine := newTestRouter(t)

	for _, u := range []gin.H{
		{"name": "Dr. A", "email": "a@example.com", "role": "DOCTOR"},
		{"name": "Lab B", "email": "b@example.com", "role": "LAB"},
	} {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "", u)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/v1/users?role=DOCTOR", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doctors []*model.User
	decodeData(t, w, &doctors)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. A", doctors[0].Name)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/users?role=WIZARD", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
