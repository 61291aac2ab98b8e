// Package client talks to the Head Cook API and holds the client-side state:
// the search session, favorites, the signed-in identity and ingredient
// suggestions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/headcookai/headcook/internal/types"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether the caller must sign in (again) to continue.
// The API answers 401 for a missing or bad token and 403 when the free
// search limit is reached.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsAuthError reports whether err is an APIError that requires signing in.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsAuthError()
}

// APIClient is an HTTP client for the Head Cook API
type APIClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// Option configures an APIClient
type Option func(*APIClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) { a.http = c }
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(a *APIClient) { a.tokens = ts }
}

func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  StaticToken(""),
		// Generation calls can take most of a minute upstream
		http: &http.Client{Timeout: 3 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search asks the API for recipes. Each call counts against the free quota.
func (c *APIClient) Search(ctx context.Context, ingredients string, cuisines []string) (*types.SearchResponse, error) {
	var resp types.SearchResponse
	req := types.SearchRequest{Ingredients: ingredients, Cuisines: cuisines}
	if err := c.do(ctx, http.MethodPost, "/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateImage returns an image URL for a recipe name
func (c *APIClient) GenerateImage(ctx context.Context, recipeName string) (string, error) {
	var resp types.GenerateImageResponse
	if err := c.do(ctx, http.MethodPost, "/generate-image", types.GenerateImageRequest{RecipeName: recipeName}, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

// Register creates a local account and returns its token
func (c *APIClient) Register(ctx context.Context, email, password string) (string, error) {
	var resp types.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", types.CredentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Login exchanges credentials for a token
func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp types.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", types.CredentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Usage reports the caller's quota consumption
func (c *APIClient) Usage(ctx context.Context) (*types.UsageResponse, error) {
	var resp types.UsageResponse
	if err := c.do(ctx, http.MethodGet, "/usage", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errResp types.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Details = errResp.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
