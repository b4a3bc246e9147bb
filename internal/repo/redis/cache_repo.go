package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

const categoriesKey = "cache:categories"

type CacheRepo struct {
	client *goredis.Client
}

func NewCacheRepo(client *goredis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

// GetCategories returns ok=false on a cache miss.
func (r *CacheRepo) GetCategories(ctx context.Context) ([]model.Category, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, categoriesKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get categories cache: %w", err)
	}

	var items []model.Category
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next fill.
		return nil, false, nil
	}
	return items, true, nil
}

func (r *CacheRepo) SetCategories(ctx context.Context, items []model.Category, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		return fmt.Errorf("invalid categories cache ttl")
	}
	if items == nil {
		items = []model.Category{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal categories cache: %w", err)
	}
	if err := r.client.Set(ctx, categoriesKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set categories cache: %w", err)
	}
	return nil
}
