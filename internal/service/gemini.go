package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/headcookai/headcook/config"
	"github.com/headcookai/headcook/internal/metrics"
	"github.com/headcookai/headcook/internal/types"
)

// GeminiRecipeGenerator generates recipes with Google's Gemini API.
type GeminiRecipeGenerator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	count   int
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewGeminiRecipeGenerator(ctx context.Context, cfg config.LLMConfig, m *metrics.Metrics, logger *zap.Logger) (*GeminiRecipeGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(float32(cfg.Temperature))
	model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	model.ResponseMIMEType = "application/json"
	// The system prompt only depends on the recipe count, so it is set once.
	model.SystemInstruction = genai.NewUserContent(genai.Text(BuildRecipePrompt("", nil, cfg.RecipeCount).System))

	return &GeminiRecipeGenerator{
		client:  client,
		model:   model,
		count:   cfg.RecipeCount,
		timeout: cfg.Timeout,
		metrics: m,
		logger:  logger,
	}, nil
}

func (g *GeminiRecipeGenerator) GenerateRecipes(ctx context.Context, ingredients string, cuisines []string) ([]types.Recipe, error) {
	prompt := BuildRecipePrompt(ingredients, cuisines, g.count)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt.User))
	g.metrics.ObserveUpstream("gemini", start, err)
	return g.recipesFromResponse(resp, err)
}

// recipesFromResponse maps a GenerateContent result to recipes, an
// UpstreamError or a ParseError.
func (g *GeminiRecipeGenerator) recipesFromResponse(resp *genai.GenerateContentResponse, err error) ([]types.Recipe, error) {
	if err != nil {
		g.logger.Error("gemini request failed", zap.Error(err))
		return nil, &UpstreamError{Upstream: "gemini", Err: err, kind: ErrGenerationFailed}
	}

	content, err := responseText(resp)
	if err != nil {
		g.logger.Error("gemini returned no content", zap.Error(err))
		return nil, &UpstreamError{Upstream: "gemini", Err: err, kind: ErrGenerationFailed}
	}

	recipes, err := ParseRecipes(content)
	if err != nil {
		g.logger.Warn("could not parse recipe completion",
			zap.String("content", truncate(content, 2000)),
			zap.Error(err),
		)
		return nil, err
	}
	return recipes, nil
}

// Close releases the underlying client.
func (g *GeminiRecipeGenerator) Close() error {
	return g.client.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("unexpected response format from Gemini")
	}
	return sb.String(), nil
}
