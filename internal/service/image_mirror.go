package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/config"
)

// maxImageSize bounds downloaded images.
const maxImageSize = 20 << 20

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageMirror copies generated images into an S3 bucket so their URLs do
// not expire.
type S3ImageMirror struct {
	uploader objectPutter
	bucket   string
	urlFor   func(key string) string
	client   *http.Client
	maxSize  int64
	logger   *zap.Logger
}

func NewS3ImageMirror(cfg *config.S3Config, timeout time.Duration, logger *zap.Logger) *S3ImageMirror {
	return &S3ImageMirror{
		uploader: cfg.Client,
		bucket:   cfg.BucketName,
		urlFor:   cfg.PublicURL,
		client:   &http.Client{Timeout: timeout},
		maxSize:  maxImageSize,
		logger:   logger,
	}
}

// Mirror downloads sourceURL and uploads it, returning the public object URL.
func (m *S3ImageMirror) Mirror(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	ext, err := imageExtension(contentType)
	if err != nil {
		return "", err
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, m.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(imageData)) > m.maxSize {
		return "", fmt.Errorf("image exceeds %d bytes", m.maxSize)
	}

	key := fmt.Sprintf("recipe-images/%s%s", uuid.NewString(), ext)
	_, err = m.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := m.urlFor(key)
	m.logger.Info("mirrored image to S3", zap.String("url", publicURL))
	return publicURL, nil
}

// imageExtension maps an image content type to an object key extension.
func imageExtension(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("invalid image content type %q: %w", contentType, err)
	}
	switch mediaType {
	case "image/png":
		return ".png", nil
	case "image/jpeg":
		return ".jpg", nil
	case "image/webp":
		return ".webp", nil
	case "image/gif":
		return ".gif", nil
	default:
		return "", fmt.Errorf("unsupported image content type %q", mediaType)
	}
}
