package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/headcookai/headcook/internal/models"
	"github.com/headcookai/headcook/internal/store"
	"github.com/headcookai/headcook/internal/types"
)

// AuthService registers and logs in accounts of the local identity provider.
type AuthService struct {
	credentials store.CredentialStore
	tokens      *JWTVerifier
	tokenTTL    time.Duration
	logger      *zap.Logger
}

func NewAuthService(credentials store.CredentialStore, tokens *JWTVerifier, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &models.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.credentials.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	s.logger.Info("registered user", zap.String("uid", cred.ID))
	return s.GenerateToken(types.Identity{UID: cred.ID, Email: cred.Email})
}

// Login checks the password and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	cred, err := s.credentials.GetCredentialByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(types.Identity{UID: cred.ID, Email: cred.Email})
}

func (s *AuthService) GenerateToken(identity types.Identity) (string, error) {
	return s.tokens.Sign(identity, s.tokenTTL)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
