package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/config"
	"github.com/headcookai/headcook/internal/middleware"
	"github.com/headcookai/headcook/internal/service"
	"github.com/headcookai/headcook/internal/store"
	"github.com/headcookai/headcook/internal/testhelpers"
	"github.com/headcookai/headcook/internal/types"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, identity types.Identity, ingredients string, cuisines []string) (*types.SearchResponse, error) {
	args := m.Called(ctx, identity, ingredients, cuisines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SearchResponse), args.Error(1)
}

func (m *mockSearcher) Usage(ctx context.Context, identity types.Identity) (*types.UsageResponse, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UsageResponse), args.Error(1)
}

var testIdentity = types.Identity{UID: "uid-1", Email: "cook@example.com"}

// newProtectedRouter mounts handlers behind AuthMiddleware with a verifier
// that accepts "good-token".
func newProtectedRouter(t *testing.T, register func(gin.IRoutes)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier := new(testhelpers.MockTokenVerifier)
	verifier.On("VerifyToken", mock.Anything, "good-token").Return(&testIdentity, nil).Maybe()

	router := gin.New()
	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(verifier, zap.NewNop()))
	register(protected)
	return router
}

func doJSON(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearchHandler(t *testing.T) {
	recipes := []types.Recipe{{Name: "Chicken Risotto", Instructions: "Stir."}}

	setup := func(t *testing.T) (*gin.Engine, *mockSearcher) {
		searcher := new(mockSearcher)
		router := newProtectedRouter(t, func(r gin.IRoutes) {
			NewSearchHandler(searcher, zap.NewNop()).RegisterRoutes(r)
		})
		return router, searcher
	}

	t.Run("success", func(t *testing.T) {
		router, searcher := setup(t)
		searcher.On("Search", mock.Anything, testIdentity, "chicken, rice", []string{"Italian"}).
			Return(&types.SearchResponse{Recipes: recipes, SearchCount: 1}, nil)

		w := doJSON(router, http.MethodPost, "/search", "good-token",
			types.SearchRequest{Ingredients: "chicken, rice", Cuisines: []string{"Italian"}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"recipes":[{"name":"Chicken Risotto","instructions":"Stir."}],"searchCount":1}`, w.Body.String())
	})

	t.Run("missing token never reaches the searcher", func(t *testing.T) {
		router, searcher := setup(t)

		w := doJSON(router, http.MethodPost, "/search", "", types.SearchRequest{Ingredients: "eggs"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid body", func(t *testing.T) {
		router, searcher := setup(t)

		w := doJSON(router, http.MethodPost, "/search", "good-token", "{not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	errorCases := []struct {
		name     string
		err      error
		status   int
		wantBody string
	}{
		{"empty ingredients", service.ErrEmptyIngredients, http.StatusBadRequest,
			`{"error":"ingredients must not be empty"}`},
		{"quota exceeded", store.ErrQuotaExceeded, http.StatusForbidden,
			`{"error":"free search limit reached"}`},
		{"unparsable content", &service.ParseError{Content: "Sure! secret", Err: errors.New("invalid character 'S'")}, http.StatusInternalServerError,
			`{"error":"search failed","details":"recipe generation returned unparsable content"}`},
		{"upstream failure", &service.UpstreamError{Upstream: "chat", StatusCode: 503, Body: "secret upstream body", Err: service.ErrGenerationFailed},
			http.StatusInternalServerError, `{"error":"search failed","details":"recipe generation service unavailable"}`},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError,
			`{"error":"search failed"}`},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			router, searcher := setup(t)
			searcher.On("Search", mock.Anything, testIdentity, "eggs", []string(nil)).Return(nil, tc.err)

			w := doJSON(router, http.MethodPost, "/search", "good-token", types.SearchRequest{Ingredients: "eggs"})

			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.wantBody, w.Body.String())
			assert.NotContains(t, w.Body.String(), "secret")
		})
	}
}

func TestSearchHandler_GenerationFailureDetails(t *testing.T) {
	// A real generator against a failing upstream yields the "unavailable" detail.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("secret upstream body"))
	}))
	defer upstream.Close()

	db := testhelpers.SetupSQLiteDB(t)
	generator := service.NewOpenAIRecipeGenerator(testLLMConfig(upstream.URL), nil, zap.NewNop())
	searcher := service.NewSearchService(store.NewGormStore(db), generator, 0, nil, zap.NewNop())

	router := newProtectedRouter(t, func(r gin.IRoutes) {
		NewSearchHandler(searcher, zap.NewNop()).RegisterRoutes(r)
	})

	w := doJSON(router, http.MethodPost, "/search", "good-token", types.SearchRequest{Ingredients: "eggs"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"search failed","details":"recipe generation service unavailable"}`, w.Body.String())
}

func TestImageHandler(t *testing.T) {
	setup := func(t *testing.T) (*gin.Engine, *testhelpers.MockImageGenerator) {
		images := new(testhelpers.MockImageGenerator)
		router := newProtectedRouter(t, func(r gin.IRoutes) {
			NewImageHandler(images, zap.NewNop()).RegisterRoutes(r)
		})
		return router, images
	}

	t.Run("success", func(t *testing.T) {
		router, images := setup(t)
		images.On("GenerateImage", mock.Anything, "Chicken Risotto").Return("https://images.example/1.png", nil)

		w := doJSON(router, http.MethodPost, "/generate-image", "good-token", types.GenerateImageRequest{RecipeName: "Chicken Risotto"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"imageUrl":"https://images.example/1.png"}`, w.Body.String())
	})

	t.Run("empty name", func(t *testing.T) {
		router, images := setup(t)
		images.On("GenerateImage", mock.Anything, "").Return("", service.ErrEmptyRecipeName)

		w := doJSON(router, http.MethodPost, "/generate-image", "good-token", types.GenerateImageRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		router, images := setup(t)
		images.On("GenerateImage", mock.Anything, "Soup").
			Return("", &service.UpstreamError{Upstream: "image", StatusCode: 400, Body: "secret", Err: service.ErrImageGenerationFailed})

		w := doJSON(router, http.MethodPost, "/generate-image", "good-token", types.GenerateImageRequest{RecipeName: "Soup"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"image generation failed"}`, w.Body.String())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		router, images := setup(t)

		w := doJSON(router, http.MethodPost, "/generate-image", "", types.GenerateImageRequest{RecipeName: "Soup"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		images.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
	})
}

func TestUsageHandler(t *testing.T) {
	searcher := new(mockSearcher)
	remaining := int64(4)
	searcher.On("Usage", mock.Anything, testIdentity).
		Return(&types.UsageResponse{Email: testIdentity.Email, SearchCount: 6, FreeSearches: 10, Remaining: &remaining}, nil)

	router := newProtectedRouter(t, func(r gin.IRoutes) {
		NewUsageHandler(searcher, zap.NewNop()).RegisterRoutes(r)
	})

	w := doJSON(router, http.MethodGet, "/usage", "good-token", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"cook@example.com","searchCount":6,"freeSearches":10,"remaining":4}`, w.Body.String())
}

func TestAuthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	credentials := store.NewGormStore(testhelpers.SetupSQLiteDB(t))
	auth := service.NewAuthService(credentials, service.NewJWTVerifier("test-secret"), time.Hour, zap.NewNop())

	router := gin.New()
	NewAuthHandler(auth, zap.NewNop()).RegisterRoutes(&router.RouterGroup)

	creds := types.CredentialsRequest{Email: "cook@example.com", Password: "password123"}

	w := doJSON(router, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code)
	var registered types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.Token)

	w = doJSON(router, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/register", "", types.CredentialsRequest{Email: "not-an-email", Password: "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/register", "", types.CredentialsRequest{Email: "long@example.com", Password: strings.Repeat("p", 80)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 35 runes pass the binding but exceed bcrypt's 72 byte limit
	w = doJSON(router, http.MethodPost, "/auth/register", "", types.CredentialsRequest{Email: "wide@example.com", Password: strings.Repeat("é", 30) + strings.Repeat("€", 5)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"password must be at most 72 bytes"}`, w.Body.String())

	w = doJSON(router, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/login", "", types.CredentialsRequest{Email: creds.Email, Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("healthy", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", NewHealthHandler(map[string]Pinger{
			"database": PingFunc(func(context.Context) error { return nil }),
		}).HealthCheck)

		w := doJSON(router, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"healthy"`)
	})

	t.Run("degraded", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", NewHealthHandler(map[string]Pinger{
			"redis": PingFunc(func(context.Context) error { return errors.New("down") }),
		}).HealthCheck)

		w := doJSON(router, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"unavailable"`)
	})
}

func testLLMConfig(url string) config.LLMConfig {
	return config.LLMConfig{
		APIKey:      "sk-test",
		APIURL:      url,
		Model:       "gpt-3.5-turbo",
		MaxTokens:   1500,
		Temperature: 0.7,
		RecipeCount: 3,
		Timeout:     5 * time.Second,
	}
}
