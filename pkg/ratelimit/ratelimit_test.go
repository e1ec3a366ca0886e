package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket_Allow(t *testing.T) {
	bucket := NewTokenBucket(5, 1) // 5 capacity, 1 refill per second

	// 처음 5개 요청은 허용
	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6번째 요청은 거부
	if bucket.Allow() {
		t.Error("6th request should be denied")
	}

	// 1초 대기 후 리필
	time.Sleep(1100 * time.Millisecond)

	if !bucket.Allow() {
		t.Error("Request after refill should be allowed")
	}
}

func TestTokenBucket_AllowN(t *testing.T) {
	bucket := NewTokenBucket(10, 2)

	if !bucket.AllowN(10) {
		t.Error("AllowN(10) should be allowed")
	}

	if bucket.AllowN(1) {
		t.Error("AllowN(1) should be denied after consuming all tokens")
	}

	// 1초 대기 (2개 리필)
	time.Sleep(1100 * time.Millisecond)

	if !bucket.AllowN(2) {
		t.Error("AllowN(2) should be allowed after refill")
	}
}

func TestRateLimiter_PerKey(t *testing.T) {
	limiter := NewRateLimiter(3, 1)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("user1") {
			t.Errorf("Request %d for user1 should be allowed", i+1)
		}
	}

	if limiter.Allow("user1") {
		t.Error("4th request for user1 should be denied")
	}

	// 다른 키는 별도 버킷
	if !limiter.Allow("user2") {
		t.Error("First request for user2 should be allowed")
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	limiter := NewRateLimiter(1, 1)

	if !limiter.Allow("user1") {
		t.Error("First request should be allowed")
	}
	if limiter.Allow("user1") {
		t.Error("Second request should be denied")
	}

	limiter.Reset("user1")

	if !limiter.Allow("user1") {
		t.Error("Request after reset should be allowed")
	}
}
