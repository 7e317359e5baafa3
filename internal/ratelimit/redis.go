package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter shared by every instance pointing at the same server.
type Redis struct {
	client  *redis.Client
	log     *slog.Logger
	prefix  string
	limit   int
	window  time.Duration
	timeout time.Duration
}

// NewRedis connects to addr and allows burst requests per burst/rps seconds.
func NewRedis(ctx context.Context, addr, password string, db int, rps float64, burst int, log *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		client:  client,
		log:     log,
		prefix:  "eventhub:ratelimit:",
		limit:   burst,
		window:  windowFor(rps, burst),
		timeout: 250 * time.Millisecond,
	}, nil
}

func windowFor(rps float64, burst int) time.Duration {
	if rps <= 0 || burst <= 0 {
		return time.Minute
	}
	w := time.Duration(math.Ceil(float64(burst)/rps)) * time.Second
	if w < time.Second {
		w = time.Second
	}
	return w
}

// Allow counts the request in key's current window. Redis failures let the request through.
func (rl *Redis) Allow(ctx context.Context, key string) Decision {
	if rl.limit <= 0 {
		return Decision{Allowed: true}
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logError("incr", err)
		return Decision{Allowed: true}
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.logError("expire", err)
		}
	}
	if int(counter) <= rl.limit {
		return Decision{Allowed: true}
	}
	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.window
	}
	return Decision{Allowed: false, RetryAfter: ttl}
}

// Close releases the Redis connection pool.
func (rl *Redis) Close() error {
	return rl.client.Close()
}

func (rl *Redis) logError(op string, err error) {
	if rl.log == nil {
		return
	}
	rl.log.Error("redis rate limiter error", "op", op, "error", err)
}
