package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/middleware"
)

// UsageHandler reports quota consumption for the current user
type UsageHandler struct {
	searcher Searcher
	logger   *zap.Logger
}

func NewUsageHandler(searcher Searcher, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{searcher: searcher, logger: logger}
}

// RegisterRoutes registers the usage routes on an authenticated group
func (h *UsageHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/usage", h.GetUsage)
}

// GetUsage handles GET /usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	usage, err := h.searcher.Usage(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error("failed to load usage", zap.String("uid", identity.UID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to load usage")
		return
	}

	c.JSON(http.StatusOK, usage)
}
