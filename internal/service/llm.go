package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/headcookai/headcook/config"
	"github.com/headcookai/headcook/internal/metrics"
	"github.com/headcookai/headcook/internal/types"
)

// Message is one chat message of a completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat completions request body
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// maxUpstreamBody bounds how much of an upstream body is read.
const maxUpstreamBody = 1 << 20

// OpenAIRecipeGenerator generates recipes with the OpenAI chat completions API.
type OpenAIRecipeGenerator struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	count       int
	client      *http.Client
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewOpenAIRecipeGenerator(cfg config.LLMConfig, m *metrics.Metrics, logger *zap.Logger) *OpenAIRecipeGenerator {
	return &OpenAIRecipeGenerator{
		apiKey:      cfg.APIKey,
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		count:       cfg.RecipeCount,
		client:      &http.Client{Timeout: cfg.Timeout},
		metrics:     m,
		logger:      logger,
	}
}

// GenerateRecipes sends one completion request. It does not retry.
func (g *OpenAIRecipeGenerator) GenerateRecipes(ctx context.Context, ingredients string, cuisines []string) ([]types.Recipe, error) {
	prompt := BuildRecipePrompt(ingredients, cuisines, g.count)

	content, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
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

func (g *OpenAIRecipeGenerator) complete(ctx context.Context, prompt RecipePrompt) (content string, err error) {
	start := time.Now()
	defer func() { g.metrics.ObserveUpstream("chat", start, err) }()

	reqBody := ChatRequest{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("chat completion request failed", zap.Error(err))
		return "", &UpstreamError{Upstream: "chat", Err: err, kind: ErrGenerationFailed}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return "", &UpstreamError{Upstream: "chat", StatusCode: resp.StatusCode, Header: resp.Header, Err: err, kind: ErrGenerationFailed}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstreamErr := &UpstreamError{
			Upstream:   "chat",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Header:     resp.Header,
			kind:       ErrGenerationFailed,
		}
		logUpstreamError(g.logger, upstreamErr)
		return "", upstreamErr
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		upstreamErr := &UpstreamError{
			Upstream:   "chat",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Header:     resp.Header,
			Err:        fmt.Errorf("failed to decode response: %w", err),
			kind:       ErrGenerationFailed,
		}
		logUpstreamError(g.logger, upstreamErr)
		return "", upstreamErr
	}
	if len(result.Choices) == 0 {
		upstreamErr := &UpstreamError{
			Upstream:   "chat",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Header:     resp.Header,
			Err:        fmt.Errorf("no choices in response"),
			kind:       ErrGenerationFailed,
		}
		logUpstreamError(g.logger, upstreamErr)
		return "", upstreamErr
	}

	return result.Choices[0].Message.Content, nil
}

func logUpstreamError(logger *zap.Logger, err *UpstreamError) {
	fields := []zap.Field{
		zap.String("upstream", err.Upstream),
		zap.Int("status", err.StatusCode),
		zap.String("body", truncate(err.Body, 4000)),
		zap.Any("headers", redactHeaders(err.Header)),
	}
	if err.Err != nil {
		fields = append(fields, zap.Error(err.Err))
	}
	logger.Error("upstream request failed", fields...)
}

func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := h.Clone()
	for _, k := range []string{"Authorization", "Set-Cookie"} {
		if out.Get(k) != "" {
			out.Set(k, "[redacted]")
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
