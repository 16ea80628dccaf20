// Package redis holds the distributed checkout lock: at most one in-flight
// checkout per user, across storefront instances.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/logger"
)

const keyPrefix = "checkout_lock:"

type Lock struct {
	Client *redis.Client
	Logger *logger.Logger
	// TTL caps how long a lock can be held if a process dies mid-checkout.
	TTL time.Duration
}

func NewLock(client *redis.Client, log *logger.Logger, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Lock{Client: client, Logger: log, TTL: ttl}
}

// Acquire takes the user's checkout lock for the given session. Returns
// false without an error when another session already holds it.
func (l *Lock) Acquire(ctx context.Context, userID, sessionID string) (bool, error) {
	key := keyPrefix + userID
	ok, err := l.Client.SetNX(ctx, key, sessionID, l.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis lock error: %w", err)
	}
	if !ok {
		l.Logger.Warn("REDIS", fmt.Sprintf("Checkout lock for user %s already held", userID))
	}
	return ok, nil
}

// Release frees the lock only if this session still owns it, so a stale
// release cannot drop a newer session's lock.
func (l *Lock) Release(ctx context.Context, userID, sessionID string) error {
	key := keyPrefix + userID
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == sessionID {
		_, err := l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}

// Holder returns the session id currently holding the user's lock, empty
// when unlocked.
func (l *Lock) Holder(ctx context.Context, userID string) (string, error) {
	val, err := l.Client.Get(ctx, keyPrefix+userID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
