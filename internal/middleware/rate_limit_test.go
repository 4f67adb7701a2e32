package middleware

import (
	"testing"
	"time"
)

func TestSlidingWindowAllow(t *testing.T) {
	w := &slidingWindow{history: map[int64][]time.Time{}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if !w.allow(1, 3, now.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("message %d should pass", i)
		}
	}
	if w.allow(1, 3, now.Add(5*time.Second)) {
		t.Error("fourth message inside the window should be limited")
	}

	// Another chat has its own window.
	if !w.allow(2, 3, now.Add(5*time.Second)) {
		t.Error("separate chat should not be limited")
	}

	// After the window slides past the old messages, the chat recovers.
	if !w.allow(1, 3, now.Add(2*time.Minute)) {
		t.Error("chat should recover after a minute")
	}
}
