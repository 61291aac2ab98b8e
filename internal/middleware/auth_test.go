package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/testhelpers"
	"github.com/headcookai/headcook/internal/types"
)

func newAuthRouter(verifier TokenVerifier, reached *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(verifier, zap.NewNop()))
	router.POST("/search", func(c *gin.Context) {
		*reached = true
		identity, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, identity)
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	identity := &types.Identity{UID: "uid-1", Email: "cook@example.com"}

	tests := []struct {
		name       string
		header     string
		setup      func(v *testhelpers.MockTokenVerifier)
		wantStatus int
		wantBody   string
		wantReach  bool
	}{
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"missing authorization header"}`,
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid authorization header format"}`,
		},
		{
			name:       "bearer without token",
			header:     "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid authorization header format"}`,
		},
		{
			name:   "invalid token",
			header: "Bearer bad-token",
			setup: func(v *testhelpers.MockTokenVerifier) {
				v.On("VerifyToken", mock.Anything, "bad-token").Return(nil, errors.New("signature is invalid"))
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid token"}`,
		},
		{
			name:   "valid token",
			header: "Bearer good-token",
			setup: func(v *testhelpers.MockTokenVerifier) {
				v.On("VerifyToken", mock.Anything, "good-token").Return(identity, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"uid":"uid-1","email":"cook@example.com"}`,
			wantReach:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(testhelpers.MockTokenVerifier)
			if tt.setup != nil {
				tt.setup(verifier)
			}
			reached := false
			router := newAuthRouter(verifier, &reached)

			req := httptest.NewRequest(http.MethodPost, "/search", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantReach, reached)
			if tt.setup == nil {
				verifier.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
			}
			verifier.AssertExpectations(t)
		})
	}
}
