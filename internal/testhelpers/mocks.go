package testhelpers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/headcookai/headcook/internal/models"
	"github.com/headcookai/headcook/internal/types"
)

// MockTokenVerifier is a mock implementation of service.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) VerifyToken(ctx context.Context, token string) (*types.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

// MockRecipeGenerator is a mock implementation of service.RecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

func (m *MockRecipeGenerator) GenerateRecipes(ctx context.Context, ingredients string, cuisines []string) ([]types.Recipe, error) {
	args := m.Called(ctx, ingredients, cuisines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

// MockImageGenerator is a mock implementation of service.ImageGenerator
type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, recipeName string) (string, error) {
	args := m.Called(ctx, recipeName)
	return args.String(0), args.Error(1)
}

// MockUserStore is a mock implementation of store.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) IncrementSearchCount(ctx context.Context, identity types.Identity, limit int64) (int64, error) {
	args := m.Called(ctx, identity, limit)
	return args.Get(0).(int64), args.Error(1)
}

// MockCredentialStore is a mock implementation of store.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) CreateCredential(ctx context.Context, cred *models.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialStore) GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}
