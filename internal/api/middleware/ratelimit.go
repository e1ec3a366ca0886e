package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nypc/nypc-perf-backend/pkg/ratelimit"
)

// RateLimitConfig holds rate limit configuration
type RateLimitConfig struct {
	Capacity   int64                     // Maximum number of requests
	RefillRate int64                     // Requests per second
	KeyFunc    func(*gin.Context) string // Function to extract rate limit key
}

// RedisRateLimitConfig Redis 기반 분산 Rate Limit 설정
type RedisRateLimitConfig struct {
	Limiter *ratelimit.RedisRateLimiter
	Limit   int
	Window  time.Duration
	KeyFunc func(*gin.Context) string
}

// DefaultKeyFunc uses user ID if authenticated, otherwise IP address
func DefaultKeyFunc(c *gin.Context) string {
	if userID, exists := c.Get("userID"); exists {
		return fmt.Sprintf("user:%v", userID)
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// IPKeyFunc uses only IP address (for public endpoints)
func IPKeyFunc(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// RateLimit creates an in-memory rate limiting middleware
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	limiter := ratelimit.NewRateLimiter(config.Capacity, config.RefillRate)

	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))

		c.Next()
	}
}

// RedisRateLimit 여러 인스턴스가 한도를 공유하는 Rate Limit 미들웨어
func RedisRateLimit(config RedisRateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		allowed, info, err := config.Limiter.AllowWithInfo(c.Request.Context(), key, config.Limit, config.Window)
		if err != nil {
			// Redis 장애 시 요청을 막지 않음
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

		if !allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(time.Until(info.ResetTime).Seconds())+1, 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// BattleReportRateLimit 배틀 보고 엔드포인트 한도 - 초당 2건, 버스트 10건
func BattleReportRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Capacity:   10,
		RefillRate: 2,
		KeyFunc:    DefaultKeyFunc,
	})
}

// CalcRateLimit 무상태 계산 엔드포인트 한도 - 초당 5건, 버스트 20건
func CalcRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Capacity:   20,
		RefillRate: 5,
		KeyFunc:    IPKeyFunc,
	})
}
