package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/api"
	"github.com/headcookai/headcook/internal/metrics"
	"github.com/headcookai/headcook/internal/middleware"
	"github.com/headcookai/headcook/internal/service"
	"github.com/headcookai/headcook/internal/store"
	"github.com/headcookai/headcook/internal/testhelpers"
	"github.com/headcookai/headcook/internal/types"
)

func setupTestRouter(t *testing.T, limiter *middleware.RateLimiter) (*gin.Engine, *testhelpers.MockRecipeGenerator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDB(t)
	users := store.NewGormStore(db)
	tokens := service.NewJWTVerifier("test-secret")
	generator := new(testhelpers.MockRecipeGenerator)

	deps := Dependencies{
		Verifier:       tokens,
		Searcher:       service.NewSearchService(users, generator, 2, nil, zap.NewNop()),
		Images:         new(testhelpers.MockImageGenerator),
		AuthHandler:    api.NewAuthHandler(service.NewAuthService(users, tokens, time.Hour, zap.NewNop()), zap.NewNop()),
		RateLimiter:    limiter,
		Health:         api.NewHealthHandler(nil),
		Metrics:        metrics.New(prometheus.NewRegistry()),
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         zap.NewNop(),
	}
	return SetupRouter(deps), generator
}

func post(router http.Handler, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, generator := setupTestRouter(t, nil)

	for _, path := range []string{"/search", "/generate-image"} {
		w := post(router, path, "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := post(router, "/search", "not-a-jwt", `{"ingredients":"eggs"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	generator.AssertNotCalled(t, "GenerateRecipes", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterThenSearchUntilQuota(t *testing.T) {
	router, generator := setupTestRouter(t, nil)
	generator.On("GenerateRecipes", mock.Anything, "eggs", []string(nil)).
		Return([]types.Recipe{{Name: "Omelette", Instructions: "Whisk and fry."}}, nil)

	w := post(router, "/auth/register", "", `{"email":"cook@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	token := decodeToken(t, w)

	for i := 1; i <= 2; i++ {
		w = post(router, "/search", token, `{"ingredients":"eggs"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = post(router, "/search", token, `{"ingredients":"eggs"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"free search limit reached"}`, w.Body.String())
	generator.AssertNumberOfCalls(t, "GenerateRecipes", 2)
}

func TestRateLimitedGroup(t *testing.T) {
	limiter := middleware.NewRateLimiter(nil, middleware.RateLimitConfig{Window: time.Minute, Limit: 1}, zap.NewNop())
	router, generator := setupTestRouter(t, limiter)
	generator.On("GenerateRecipes", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.Recipe{{Name: "Omelette", Instructions: "Whisk and fry."}}, nil)

	w := post(router, "/auth/register", "", `{"email":"cook@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	token := decodeToken(t, w)

	assert.Equal(t, http.StatusOK, post(router, "/search", token, `{"ingredients":"eggs"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(router, "/search", token, `{"ingredients":"eggs"}`).Code)
}

func decodeToken(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
