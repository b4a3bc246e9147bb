package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
)

// maxPresignTTL is the longest expiry S3 accepts for a presigned GET.
const maxPresignTTL = 7 * 24 * time.Hour

// S3Storage keeps listing media in a single bucket. Object keys are unique per
// upload, so objects are served as immutable.
type S3Storage struct {
	client *minio.Client
	bucket string

	mu    sync.Mutex
	ready bool
}

func NewS3Storage(client *minio.Client, bucket string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

// EnsureBucket creates the media bucket on first use. Failures are not cached, so
// the next upload checks again.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check media bucket %q: %w", s.bucket, err)
	}
	if !exists {
		err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && !bucketTaken(err) {
			return fmt.Errorf("create media bucket %q: %w", s.bucket, err)
		}
	}
	s.ready = true
	return nil
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := s.usable(); err != nil {
		return err
	}
	if key == "" || body == nil || size <= 0 {
		return ErrValidation
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: "inline",
		CacheControl:       "public, max-age=31536000, immutable",
	})
	if err != nil {
		return fmt.Errorf("store media object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrValidation
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignTTL(ttl), url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign media object %s: %w", key, err)
	}
	return presigned.String(), nil
}

// Delete removes an object that never made it onto a listing.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if s.client == nil || key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove media object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) usable() error {
	if s.client == nil {
		return fmt.Errorf("media storage is not configured")
	}
	if s.bucket == "" {
		return fmt.Errorf("media bucket is empty")
	}
	return nil
}

func presignTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > maxPresignTTL {
		return maxPresignTTL
	}
	return ttl
}

// bucketTaken reports a lost create race with another instance.
func bucketTaken(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return true
	default:
		return false
	}
}
