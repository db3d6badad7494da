package server

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected fourth request to be rejected")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("expected a different key to have its own window")
	}
}

func TestRateLimiterRejectsEmptyKey(t *testing.T) {
	limiter := newRateLimiter(3, time.Minute)
	if limiter.Allow("") {
		t.Fatal("expected empty key to be rejected")
	}
}
