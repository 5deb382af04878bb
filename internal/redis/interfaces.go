package redis

import (
	"context"
	"time"
)

// CacheStoreInterface defines the interface for ride caching.
type CacheStoreInterface interface {
	GetRide(ctx context.Context, rideID string) (*CachedRide, error)
	SetRide(ctx context.Context, ride *CachedRide) error
	InvalidateRide(ctx context.Context, rideID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireDeletionLock(ctx context.Context, userID string, ttl time.Duration) (bool, error)
	ReleaseDeletionLock(ctx context.Context, userID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ CacheStoreInterface = (*CacheStore)(nil)
	_ LockStoreInterface  = (*LockStore)(nil)
)
