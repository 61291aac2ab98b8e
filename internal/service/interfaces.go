package service

import (
	"context"

	"github.com/headcookai/headcook/internal/types"
)

// TokenVerifier turns a bearer token into the caller's identity. Failures
// wrap ErrInvalidToken.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*types.Identity, error)
}

// RecipeGenerator asks a text generation service for recipes.
type RecipeGenerator interface {
	GenerateRecipes(ctx context.Context, ingredients string, cuisines []string) ([]types.Recipe, error)
}

// ImageGenerator returns the URL of one image of the named recipe.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, recipeName string) (string, error)
}

// ImageCache remembers generated image URLs by recipe name.
type ImageCache interface {
	Get(ctx context.Context, recipeName string) (string, bool, error)
	Set(ctx context.Context, recipeName, url string) error
}

// ImageMirror re-hosts an upstream image and returns its new URL.
type ImageMirror interface {
	Mirror(ctx context.Context, sourceURL string) (string, error)
}
