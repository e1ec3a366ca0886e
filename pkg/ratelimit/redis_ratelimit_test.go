package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 테스트용 DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	client.FlushDB(ctx)

	return client
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	limiter := NewRedisRateLimiter(client, "test:ratelimit:")
	ctx := context.Background()

	// 한도 내 요청은 모두 허용
	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "user1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, fmt.Sprintf("request %d should be allowed", i+1))
	}

	// 한도 초과 시 거부
	allowed, err := limiter.Allow(ctx, "user1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// 다른 키는 독립적
	allowed, err = limiter.Allow(ctx, "user2", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_AllowWithInfo(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	limiter := NewRedisRateLimiter(client, "test:ratelimit:")
	ctx := context.Background()

	allowed, info, err := limiter.AllowWithInfo(ctx, "info-user", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	require.NotNil(t, info)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 9, info.Remaining)
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	limiter := NewRedisRateLimiter(client, "test:ratelimit:")
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "reset-user", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "reset-user", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "reset-user"))

	allowed, err = limiter.Allow(ctx, "reset-user", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_DefaultsApplied(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	limiter := NewRedisRateLimiter(client, "")
	ctx := context.Background()

	// limit/window 0이면 기본값 사용
	allowed, info, err := limiter.AllowWithInfo(ctx, "default-user", 0, 0)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 60, info.Limit)
}
