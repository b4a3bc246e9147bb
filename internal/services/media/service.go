package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrTooLarge        = errors.New("media file is too large")
	ErrUnsupportedType = errors.New("unsupported media type")
)

const (
	defaultMaxBytes = 20 << 20
	signedURLTTL    = 7 * 24 * time.Hour
)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	MaxBytes int64
	// PublicBaseURL, when set, is joined with the object key instead of presigning.
	PublicBaseURL string
	SignedURLTTL  time.Duration
}

type Service struct {
	storage ObjectStorage
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

type Upload struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func NewService(storage ObjectStorage, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = signedURLTTL
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage: storage,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) MaxBytes() int64 {
	return s.cfg.MaxBytes
}

func (s *Service) Upload(ctx context.Context, ownerID uuid.UUID, fileName, contentType string, body io.Reader, size int64) (Upload, error) {
	if ownerID == uuid.Nil || body == nil || size <= 0 {
		return Upload{}, ErrValidation
	}
	if size > s.cfg.MaxBytes {
		return Upload{}, ErrTooLarge
	}
	contentType = resolveContentType(fileName, contentType)
	if !allowedContentType(contentType) {
		return Upload{}, ErrUnsupportedType
	}
	if s.storage == nil {
		return Upload{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Upload{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildObjectKey(ownerID, fileName, s.now())
	if err != nil {
		return Upload{}, fmt.Errorf("build object key: %w", err)
	}

	if err := s.storage.Put(ctx, objectKey, io.LimitReader(body, size), size, contentType); err != nil {
		return Upload{}, fmt.Errorf("put object: %w", err)
	}

	url, err := s.objectURL(ctx, objectKey)
	if err != nil {
		if delErr := s.storage.Delete(ctx, objectKey); delErr != nil {
			s.logger.Warn("orphaned media object", zap.String("key", objectKey), zap.Error(delErr))
		}
		return Upload{}, fmt.Errorf("build media url: %w", err)
	}

	s.logger.Info("media uploaded",
		zap.String("owner_id", ownerID.String()),
		zap.String("key", objectKey),
		zap.Int64("size", size),
	)

	return Upload{
		Key:         objectKey,
		URL:         url,
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *Service) objectURL(ctx context.Context, key string) (string, error) {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL + "/" + key, nil
	}
	return s.storage.PresignGet(ctx, key, s.cfg.SignedURLTTL)
}

func resolveContentType(fileName, contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); byExt != "" {
			contentType = byExt
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return strings.ToLower(contentType)
}

func allowedContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

func buildObjectKey(ownerID uuid.UUID, fileName string, now time.Time) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := now.UTC().Format("20060102T150405")
	return fmt.Sprintf("listings/%s/%s_%s%s", ownerID, stamp, hex.EncodeToString(rnd), ext), nil
}
