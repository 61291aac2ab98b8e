package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/headcookai/headcook/internal/store"
)

var (
	ErrMissingToken     = errors.New("missing authorization token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrEmptyIngredients = errors.New("ingredients must not be empty")
	// ErrQuotaExceeded is the store error so callers can match either.
	ErrQuotaExceeded = store.ErrQuotaExceeded

	ErrGenerationFailed      = errors.New("recipe generation service unavailable")
	ErrUnparsableRecipes     = errors.New("recipe generation returned unparsable content")
	ErrNoRecipes             = errors.New("recipe generation returned no recipes")
	ErrImageGenerationFailed = errors.New("image generation failed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrEmptyRecipeName    = errors.New("recipe name must not be empty")
)

// UpstreamError is a failed call to an external generation API. The body and
// headers are kept for server-side logging and are not part of Error().
type UpstreamError struct {
	Upstream   string
	StatusCode int
	Body       string
	Header     http.Header
	Err        error

	kind error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s upstream returned status %d", e.kind, e.Upstream, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s upstream: %v", e.kind, e.Upstream, e.Err)
	default:
		return fmt.Sprintf("%s: %s upstream", e.kind, e.Upstream)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is matches the failure class, ErrGenerationFailed or ErrImageGenerationFailed.
func (e *UpstreamError) Is(target error) bool { return target == e.kind }

// ParseError means the upstream answered but its content was not a recipe list.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUnparsableRecipes, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrUnparsableRecipes }
