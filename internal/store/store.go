// Package store persists per-identity search counters and local-provider
// credentials.
package store

import (
	"context"
	"errors"

	"github.com/headcookai/headcook/internal/models"
	"github.com/headcookai/headcook/internal/types"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("record already exists")
	ErrQuotaExceeded = errors.New("free search limit reached")
)

// UserStore tracks how many searches each identity has run.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	// IncrementSearchCount creates the user record when absent and atomically
	// increments its counter, returning the new value. With limit > 0 a user
	// whose count already reached limit gets ErrQuotaExceeded and the counter
	// is left unchanged.
	IncrementSearchCount(ctx context.Context, identity types.Identity, limit int64) (int64, error)
}

// CredentialStore holds accounts of the local identity provider.
type CredentialStore interface {
	CreateCredential(ctx context.Context, cred *models.Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
}
