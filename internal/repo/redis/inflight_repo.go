package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

const (
	inFlightPrefix     = "inflight:match:"
	defaultInFlightTTL = 30 * time.Second
	releaseTimeout     = 2 * time.Second
)

// releaseScript deletes the guard only while it still carries the caller's token,
// so an expired guard taken over by another instance is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// InFlightRepo is the cross-instance decision guard: one SET NX key per match.
type InFlightRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewInFlightRepo(client *goredis.Client, ttl time.Duration) *InFlightRepo {
	if ttl <= 0 {
		ttl = defaultInFlightTTL
	}
	return &InFlightRepo{client: client, ttl: ttl}
}

func (r *InFlightRepo) Acquire(ctx context.Context, matchID uuid.UUID) (func(), bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	if matchID == uuid.Nil {
		return nil, false, fmt.Errorf("match id is required")
	}

	key := inFlightKey(matchID)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, false, storeerr.New(storeerr.KindTransient, "acquire in-flight guard", err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err()
		})
	}
	return release, true, nil
}

func inFlightKey(matchID uuid.UUID) string {
	return inFlightPrefix + matchID.String()
}
