package api

import (
	"context"

	"github.com/headcookai/headcook/internal/types"
)

// Searcher runs quota-gated searches
type Searcher interface {
	Search(ctx context.Context, identity types.Identity, ingredients string, cuisines []string) (*types.SearchResponse, error)
	Usage(ctx context.Context, identity types.Identity) (*types.UsageResponse, error)
}

// ImageGenerator returns an image URL for a recipe name
type ImageGenerator interface {
	GenerateImage(ctx context.Context, recipeName string) (string, error)
}

// Authenticator registers and logs in local accounts
type Authenticator interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
