package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func newTestLimiter(t *testing.T, client *redis.Client, cfg Config, now *time.Time) *Limiter {
	l := New(client, cfg, zaptest.NewLogger(t))
	l.now = func() time.Time { return *now }
	return l
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	client, _ := setupTestRedis(t)
	now := time.Unix(1700000000, 0)
	l := newTestLimiter(t, client, Config{RequestsPerSecond: 1, BurstCapacity: 3, Enabled: true}, &now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "ratelimit:test")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := l.Allow(ctx, "ratelimit:test")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestLimiter_Refill(t *testing.T) {
	client, _ := setupTestRedis(t)
	now := time.Unix(1700000000, 0)
	l := newTestLimiter(t, client, Config{RequestsPerSecond: 2, BurstCapacity: 1, Enabled: true}, &now)
	ctx := context.Background()

	allowed, err := l.Allow(ctx, "ratelimit:refill")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow(ctx, "ratelimit:refill")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Half a second at 2 tokens/s refills one token
	now = now.Add(500 * time.Millisecond)
	allowed, err = l.Allow(ctx, "ratelimit:refill")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	client, _ := setupTestRedis(t)
	now := time.Unix(1700000000, 0)
	l := newTestLimiter(t, client, Config{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: true}, &now)
	ctx := context.Background()

	allowed, err := l.Allow(ctx, "ratelimit:a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow(ctx, "ratelimit:b")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_SetsExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	now := time.Unix(1700000000, 0)
	l := newTestLimiter(t, client, Config{RequestsPerSecond: 10, BurstCapacity: 20, Enabled: true}, &now)

	_, err := l.Allow(context.Background(), "ratelimit:ttl")
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, mr.TTL("ratelimit:ttl"))
}

func TestLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)
	now := time.Unix(1700000000, 0)
	l := newTestLimiter(t, client, Config{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: false}, &now)

	for i := 0; i < 5; i++ {
		allowed, err := l.Allow(context.Background(), "ratelimit:off")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	assert.False(t, l.Enabled())
}

func TestLimiter_NilClient(t *testing.T) {
	l := New(nil, Config{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: true}, zaptest.NewLogger(t))

	allowed, err := l.Allow(context.Background(), "ratelimit:nil")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	now := time.Unix(1700000000, 0)
	l := newTestLimiter(t, client, Config{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: true}, &now)
	mr.Close()

	_, err := l.Allow(context.Background(), "ratelimit:down")
	assert.Error(t, err)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 3, bucketTTL(Config{RequestsPerSecond: 10, BurstCapacity: 20}))
	assert.Equal(t, 2, bucketTTL(Config{RequestsPerSecond: 100, BurstCapacity: 1}))
	assert.Equal(t, maxBucketTTL, bucketTTL(Config{RequestsPerSecond: 1e-15, BurstCapacity: 20}))
	assert.Equal(t, maxBucketTTL, bucketTTL(Config{RequestsPerSecond: 0, BurstCapacity: 20}))
}

func TestLimiter_TinyRateCapsExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	now := time.Unix(1700000000, 0)
	l := newTestLimiter(t, client, Config{RequestsPerSecond: 1e-15, BurstCapacity: 1, Enabled: true}, &now)

	allowed, err := l.Allow(context.Background(), "ratelimit:tiny")
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.Equal(t, time.Duration(maxBucketTTL)*time.Second, mr.TTL("ratelimit:tiny"))
}
