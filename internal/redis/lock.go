package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis. The deletion lock is an
// advisory fast-fail guard; correctness of the deletion itself comes from
// the database row lock on the user aggregate.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireDeletionLock attempts to acquire the cascade-deletion lock for
// the given user. Returns true if the lock was acquired, false if another
// deletion of the same user is in flight.
func (s *LockStore) AcquireDeletionLock(ctx context.Context, userID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:deletion:%s", userID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseDeletionLock releases the cascade-deletion lock for the user.
func (s *LockStore) ReleaseDeletionLock(ctx context.Context, userID string) error {
	key := fmt.Sprintf("lock:deletion:%s", userID)

	return s.client.Del(ctx, key).Err()
}
