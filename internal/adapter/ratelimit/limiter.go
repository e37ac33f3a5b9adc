package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration for the rate limiter.
type Config struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// bucketTTL is how long an idle bucket survives in Redis
const bucketTTL = 60 * time.Second

// tokenBucket refills at rate tokens/second up to capacity and takes one token per call.
// Bucket layout: HASH {last_refill, tokens}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// Limiter implements a token bucket per key, stored in Redis.
type Limiter struct {
	client *redis.Client
	config Config
	log    *zap.Logger
	now    func() time.Time
}

// NewLimiter creates a new Redis-backed token bucket limiter.
func NewLimiter(client *redis.Client, config Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Enabled reports whether requests should be checked at all.
func (l *Limiter) Enabled() bool {
	return l != nil && l.config.Enabled && l.client != nil
}

// Config returns the limiter configuration.
func (l *Limiter) Config() Config {
	return l.config
}

// Allow takes one token from the bucket identified by key.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	now := float64(l.now().UnixMilli()) / 1000
	allowed, err := tokenBucket.Run(ctx, l.client, []string{key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		now,
		int(bucketTTL.Seconds()),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate token bucket: %w", err)
	}

	if allowed == 0 {
		l.log.Debug("rate limit exceeded", zap.String("key", key))
	}
	return allowed == 1, nil
}
