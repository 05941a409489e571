package ratelimit

import (
	"context"
	"math"
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

// tokenBucket is evaluated atomically inside Redis.
// Bucket state: {last_refill (ms), tokens}
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])      -- tokens per second
local capacity = tonumber(ARGV[2])  -- max tokens in bucket
local now = tonumber(ARGV[3])       -- current timestamp in milliseconds
local ttl = tonumber(ARGV[4])       -- seconds to keep an idle bucket

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill) / 1000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
redis.call('EXPIRE', key, ttl)
return allowed
`)

// maxBucketTTL bounds how long an idle bucket is kept, in seconds
const maxBucketTTL = 24 * 60 * 60

// bucketTTL keeps an idle bucket long enough to refill completely, capped at
// maxBucketTTL so very low rates cannot overflow the EXPIRE argument.
func bucketTTL(cfg Config) int {
	if cfg.RequestsPerSecond <= 0 {
		return maxBucketTTL
	}
	refill := math.Ceil(float64(cfg.BurstCapacity)/cfg.RequestsPerSecond) + 1
	if math.IsNaN(refill) || refill > maxBucketTTL {
		return maxBucketTTL
	}
	return int(refill)
}

// Limiter implements a token bucket rate limiter shared across instances via Redis.
type Limiter struct {
	client *redis.Client
	config Config
	log    *zap.Logger
	now    func() time.Time
}

// New creates a new Limiter. A nil client or a disabled config yields a limiter
// that allows every request.
func New(client *redis.Client, config Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Config returns the limiter configuration.
func (l *Limiter) Config() Config {
	return l.config
}

// Enabled reports whether requests are actually limited.
func (l *Limiter) Enabled() bool {
	return l != nil && l.config.Enabled && l.client != nil
}

// Allow consumes one token from the bucket identified by key.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	ttl := bucketTTL(l.config)

	allowed, err := tokenBucket.Run(ctx, l.client, []string{key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		l.now().UnixMilli(),
		ttl,
	).Int64()
	if err != nil {
		return false, err
	}

	if allowed == 0 {
		l.log.Debug("rate limit exceeded", zap.String("key", key))
	}
	return allowed == 1, nil
}
