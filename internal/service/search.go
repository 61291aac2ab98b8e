package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/metrics"
	"github.com/headcookai/headcook/internal/store"
	"github.com/headcookai/headcook/internal/types"
)

// SearchService runs quota-gated recipe searches.
type SearchService struct {
	users        store.UserStore
	generator    RecipeGenerator
	freeSearches int64
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewSearchService creates a SearchService. freeSearches of zero disables the quota.
func NewSearchService(users store.UserStore, generator RecipeGenerator, freeSearches int64, m *metrics.Metrics, logger *zap.Logger) *SearchService {
	return &SearchService{
		users:        users,
		generator:    generator,
		freeSearches: freeSearches,
		metrics:      m,
		logger:       logger,
	}
}

// Search counts the search against the caller's quota and then generates
// recipes. A failed generation still consumes the search.
func (s *SearchService) Search(ctx context.Context, identity types.Identity, ingredients string, cuisines []string) (*types.SearchResponse, error) {
	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		s.metrics.RecordSearch(metrics.OutcomeInvalid)
		return nil, ErrEmptyIngredients
	}
	cuisines = NormalizeCuisines(cuisines)

	log := s.logger.With(zap.String("uid", identity.UID))

	count, err := s.users.IncrementSearchCount(ctx, identity, s.freeSearches)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.metrics.RecordSearch(metrics.OutcomeQuotaExceeded)
			log.Info("search rejected, free search limit reached", zap.Int64("limit", s.freeSearches))
			return nil, err
		}
		s.metrics.RecordSearch(metrics.OutcomeStoreFailed)
		log.Error("failed to update search count", zap.Error(err))
		return nil, err
	}

	recipes, err := s.generator.GenerateRecipes(ctx, ingredients, cuisines)
	if err != nil {
		if errors.Is(err, ErrUnparsableRecipes) || errors.Is(err, ErrNoRecipes) {
			s.metrics.RecordSearch(metrics.OutcomeParseFailed)
		} else {
			s.metrics.RecordSearch(metrics.OutcomeGenerationFailed)
		}
		log.Error("recipe generation failed", zap.Int64("search_count", count), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordSearch(metrics.OutcomeSuccess)
	log.Info("search completed",
		zap.Int("recipes", len(recipes)),
		zap.Int64("search_count", count),
	)

	return &types.SearchResponse{Recipes: recipes, SearchCount: count}, nil
}

// Usage reports how much of the free quota identity has used.
func (s *SearchService) Usage(ctx context.Context, identity types.Identity) (*types.UsageResponse, error) {
	resp := &types.UsageResponse{Email: identity.Email}

	user, err := s.users.GetUser(ctx, identity.UID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		resp.SearchCount = user.SearchCount
		if user.Email != "" {
			resp.Email = user.Email
		}
	}

	if s.freeSearches > 0 {
		remaining := s.freeSearches - resp.SearchCount
		if remaining < 0 {
			remaining = 0
		}
		resp.FreeSearches = s.freeSearches
		resp.Remaining = &remaining
	}
	return resp, nil
}

// NormalizeCuisines trims names, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling.
func NormalizeCuisines(cuisines []string) []string {
	if len(cuisines) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(cuisines))
	out := make([]string, 0, len(cuisines))
	for _, c := range cuisines {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
