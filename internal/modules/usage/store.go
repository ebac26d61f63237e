package usage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the in-flight key only if it still holds our token,
// so an expired slot taken over by a newer request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// decrScript decrements a counter without taking it below zero.
var decrScript = redis.NewScript(`
local n = tonumber(redis.call("GET", KEYS[1]) or "0")
if n > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

// Store wraps the Redis commands behind the guard.
type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// AcquireSlot sets the in-flight key if absent. It reports whether the slot was taken.
func (s *Store) AcquireSlot(ctx context.Context, uid, token string, ttl time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, inFlightKey(uid), token, ttl).Result()
}

func (s *Store) ReleaseSlot(ctx context.Context, uid, token string) error {
	err := releaseScript.Run(ctx, s.redis, []string{inFlightKey(uid)}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Incr bumps the monthly counter and refreshes its expiry in one transaction.
func (s *Store) Incr(ctx context.Context, uid string, at time.Time) (int64, error) {
	key := quotaKey(uid, at)
	var incr *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, quotaKeyTTL)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Decr lowers the monthly counter for at, stopping at zero.
func (s *Store) Decr(ctx context.Context, uid string, at time.Time) error {
	return decrScript.Run(ctx, s.redis, []string{quotaKey(uid, at)}).Err()
}

// Count returns the monthly counter, zero when the key does not exist.
func (s *Store) Count(ctx context.Context, uid string, at time.Time) (int64, error) {
	n, err := s.redis.Get(ctx, quotaKey(uid, at)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
