package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/headcookai/headcook/config"
	"github.com/headcookai/headcook/internal/metrics"
)

// ImageGenerationRequest represents a request to the DALL-E API
type ImageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// ImageGenerationResponse represents the response from DALL-E API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// DalleImageGenerator requests one image per call from the DALL-E API.
type DalleImageGenerator struct {
	apiKey  string
	apiURL  string
	model   string
	size    string
	client  *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewDalleImageGenerator(cfg config.ImageConfig, m *metrics.Metrics, logger *zap.Logger) *DalleImageGenerator {
	return &DalleImageGenerator{
		apiKey:  cfg.APIKey,
		apiURL:  cfg.APIURL,
		model:   cfg.Model,
		size:    cfg.Size,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: m,
		logger:  logger,
	}
}

// GenerateImage performs a single generation attempt.
func (g *DalleImageGenerator) GenerateImage(ctx context.Context, recipeName string) (imageURL string, err error) {
	if strings.TrimSpace(recipeName) == "" {
		return "", ErrEmptyRecipeName
	}

	start := time.Now()
	defer func() { g.metrics.ObserveUpstream("image", start, err) }()

	jsonData, err := json.Marshal(ImageGenerationRequest{
		Model:  g.model,
		Prompt: BuildImagePrompt(recipeName),
		N:      1,
		Size:   g.size,
	})
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
		g.logger.Error("image request failed", zap.String("recipe", recipeName), zap.Error(err))
		return "", &UpstreamError{Upstream: "image", Err: err, kind: ErrImageGenerationFailed}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return "", &UpstreamError{Upstream: "image", StatusCode: resp.StatusCode, Header: resp.Header, Err: err, kind: ErrImageGenerationFailed}
	}

	fail := func(cause error) error {
		upstreamErr := &UpstreamError{
			Upstream:   "image",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Header:     resp.Header,
			Err:        cause,
			kind:       ErrImageGenerationFailed,
		}
		logUpstreamError(g.logger.With(zap.String("recipe", recipeName)), upstreamErr)
		return upstreamErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fail(nil)
	}

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fail(fmt.Errorf("failed to decode response: %w", err))
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fail(fmt.Errorf("no image data in API response"))
	}

	return result.Data[0].URL, nil
}

// ImageService adds caching and re-hosting around an ImageGenerator. Cache
// and mirror are optional.
type ImageService struct {
	generator ImageGenerator
	cache     ImageCache
	mirror    ImageMirror
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewImageService(generator ImageGenerator, cache ImageCache, mirror ImageMirror, m *metrics.Metrics, logger *zap.Logger) *ImageService {
	return &ImageService{
		generator: generator,
		cache:     cache,
		mirror:    mirror,
		metrics:   m,
		logger:    logger,
	}
}

func (s *ImageService) GenerateImage(ctx context.Context, recipeName string) (string, error) {
	recipeName = strings.TrimSpace(recipeName)
	if recipeName == "" {
		return "", ErrEmptyRecipeName
	}

	if s.cache != nil {
		url, ok, err := s.cache.Get(ctx, recipeName)
		if err != nil {
			s.logger.Warn("image cache lookup failed", zap.Error(err))
		}
		s.metrics.RecordImageCache(ok)
		if ok {
			return url, nil
		}
	}

	url, err := s.generator.GenerateImage(ctx, recipeName)
	if err != nil {
		return "", err
	}

	if s.mirror != nil {
		mirrored, err := s.mirror.Mirror(ctx, url)
		if err != nil {
			s.logger.Warn("failed to mirror image, returning original URL", zap.Error(err))
		} else {
			url = mirrored
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, recipeName, url); err != nil {
			s.logger.Warn("failed to cache image URL", zap.Error(err))
		}
	}
	return url, nil
}
