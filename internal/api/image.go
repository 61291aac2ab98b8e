package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/middleware"
	"github.com/headcookai/headcook/internal/service"
	"github.com/headcookai/headcook/internal/types"
)

// ImageHandler handles image generation requests
type ImageHandler struct {
	images ImageGenerator
	logger *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(images ImageGenerator, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// RegisterRoutes registers the image routes on an authenticated group
func (h *ImageHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/generate-image", h.GenerateImage)
}

// GenerateImage handles POST /generate-image
func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req types.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	url, err := h.images.GenerateImage(c.Request.Context(), req.RecipeName)
	if err != nil {
		if errors.Is(err, service.ErrEmptyRecipeName) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("image generation failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("recipe", req.RecipeName),
			zap.Error(err),
		)
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "image generation failed")
		return
	}

	c.JSON(http.StatusOK, types.GenerateImageResponse{ImageURL: url})
}
