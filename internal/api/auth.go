package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/service"
	"github.com/headcookai/headcook/internal/types"
)

// AuthHandler exposes the local identity provider
type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(auth Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	token, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "error registering user")
		return
	}

	c.JSON(http.StatusCreated, types.TokenResponse{Token: token})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "error logging in")
		return
	}

	c.JSON(http.StatusOK, types.TokenResponse{Token: token})
}
