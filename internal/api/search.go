package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/middleware"
	"github.com/headcookai/headcook/internal/types"
)

// SearchHandler handles recipe search requests
type SearchHandler struct {
	searcher Searcher
	logger   *zap.Logger
}

func NewSearchHandler(searcher Searcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

// RegisterRoutes registers the search routes on an authenticated group
func (h *SearchHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/search", h.Search)
}

// Search handles POST /search
func (h *SearchHandler) Search(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.searcher.Search(c.Request.Context(), identity, req.Ingredients, req.Cuisines)
	if err != nil {
		status, body := searchErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("search failed",
				zap.String("request_id", middleware.RequestID(c)),
				zap.String("uid", identity.UID),
				zap.Error(err),
			)
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, body)
		return
	}

	c.JSON(http.StatusOK, resp)
}
