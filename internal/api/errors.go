package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/headcookai/headcook/internal/service"
	"github.com/headcookai/headcook/internal/types"
)

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: msg})
}

// searchErrorResponse maps a search failure to a status and a body safe for
// clients. Upstream payloads are never included.
func searchErrorResponse(err error) (int, types.ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrEmptyIngredients):
		return http.StatusBadRequest, types.ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusForbidden, types.ErrorResponse{Error: "free search limit reached"}
	case errors.Is(err, service.ErrUnparsableRecipes):
		return http.StatusInternalServerError, types.ErrorResponse{Error: "search failed", Details: service.ErrUnparsableRecipes.Error()}
	case errors.Is(err, service.ErrNoRecipes):
		return http.StatusInternalServerError, types.ErrorResponse{Error: "search failed", Details: service.ErrNoRecipes.Error()}
	case errors.Is(err, service.ErrGenerationFailed):
		return http.StatusInternalServerError, types.ErrorResponse{Error: "search failed", Details: service.ErrGenerationFailed.Error()}
	default:
		return http.StatusInternalServerError, types.ErrorResponse{Error: "search failed"}
	}
}
