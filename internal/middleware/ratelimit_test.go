package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := newRateLimiter(time.Minute, 3)
	for i := 0; i < 3; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Error("expected the 4th request within the window to be rejected")
	}
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	rl := newRateLimiter(time.Minute, 1)
	if !rl.allow("1.1.1.1") {
		t.Fatal("expected the first request from 1.1.1.1 to be allowed")
	}
	if !rl.allow("2.2.2.2") {
		t.Error("expected a different IP to have its own independent budget")
	}
}

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	rl := newRateLimiter(time.Millisecond, 1)
	rl.allow("1.2.3.4")
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()
	rl.mu.RLock()
	_, exists := rl.requests["1.2.3.4"]
	rl.mu.RUnlock()
	if exists {
		t.Error("expected cleanup to evict an IP with no requests left in the window")
	}
}
