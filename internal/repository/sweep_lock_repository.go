package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "docnotify:sweep:lock"

// releaseScript deletes the lock only when it still holds our token, so an
// expired lock grabbed by another run is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLockRepository serializes sweep runs across instances with a Redis
// lock. A nil client disables locking and every Acquire succeeds, which is
// the single-instance development mode.
type SweepLockRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSweepLockRepository creates a new instance of SweepLockRepository.
func NewSweepLockRepository(client *redis.Client, ttl time.Duration) *SweepLockRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SweepLockRepository{client: client, ttl: ttl}
}

// Acquire attempts to take the sweep lock. It returns a release token when
// acquired, ok=false when another run holds the lock, and an error only for
// infrastructure failures.
func (r *SweepLockRepository) Acquire(ctx context.Context) (token string, ok bool, err error) {
	if r.client == nil {
		return "", true, nil
	}

	token = uuid.NewString()
	ok, err = r.client.SetNX(ctx, sweepLockKey, token, r.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if the token still owns it.
func (r *SweepLockRepository) Release(ctx context.Context, token string) error {
	if r.client == nil || token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, r.client, []string{sweepLockKey}, token).Err(); err != nil {
		return fmt.Errorf("release sweep lock: %w", err)
	}
	return nil
}
