package keylock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redisKeyPrefix  = "lock:"
	defaultTTL      = 15 * time.Second
	defaultInterval = 25 * time.Millisecond
)

// Compare-and-delete so a holder whose TTL expired cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every API process pointed at the same Redis.
type Redis struct {
	Rdb      *redis.Client
	TTL      time.Duration
	Interval time.Duration
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{Rdb: rdb, TTL: defaultTTL, Interval: defaultInterval}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	interval := r.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	redisKey := redisKeyPrefix + key
	token := uuid.New().String()

	for {
		ok, err := r.Rdb.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// Release must not depend on the request context, which may already be cancelled.
		if err := releaseScript.Run(context.Background(), r.Rdb, []string{redisKey}, token).Err(); err != nil {
			log.Warn().Err(err).Str("key", redisKey).Msg("release lock")
		}
	}, nil
}
