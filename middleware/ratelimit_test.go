package middleware

import (
	"testing"
	"time"
)

func TestDuplicateGuard(t *testing.T) {
	// speed up TTL for test
	SetDuplicateTTL(50 * time.Millisecond)
	uid := "user-123"
	text := "Hello"

	// First call should allow
	if ok := DuplicateGuard(uid, text); !ok {
		t.Fatalf("expected first call to pass duplicate guard")
	}
	// Immediate repeat should block
	if ok := DuplicateGuard(uid, text); ok {
		t.Fatalf("expected immediate duplicate to be blocked")
	}
	// Different text should pass even within TTL
	if ok := DuplicateGuard(uid, text+"!"); !ok {
		t.Fatalf("expected different text to pass within TTL")
	}
	// After TTL, same text should pass
	time.Sleep(70 * time.Millisecond)
	if ok := DuplicateGuard(uid, text); !ok {
		t.Fatalf("expected same text to pass after TTL")
	}
}

func TestAcquireUserSlotLimitsConcurrency(t *testing.T) {
	SetRateLimitConfig(10*time.Second, 5, 1)
	uid := "user-slot"

	release := AcquireUserSlot(uid)

	second := make(chan struct{})
	go func() {
		r := AcquireUserSlot(uid)
		close(second)
		r()
	}()

	select {
	case <-second:
		t.Fatalf("expected second acquire to block while slot is held")
	case <-time.After(30 * time.Millisecond):
	}

	release()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatalf("expected second acquire to proceed after release")
	}
}
