package service

import (
	"testing"
	"time"

	"github.com/softmind/personabot/internal/domain"
)

func TestHistoryCache(t *testing.T) {
	c := newHistoryCache(time.Minute)
	msgs := []domain.Message{{Content: "hi"}}

	if _, ok := c.Get(1); ok {
		t.Error("empty cache should miss")
	}

	c.Set(1, msgs)
	got, ok := c.Get(1)
	if !ok || len(got) != 1 || got[0].Content != "hi" {
		t.Errorf("Get() = %v, %v", got, ok)
	}

	c.Set(2, msgs)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestHistoryCacheTTL(t *testing.T) {
	c := newHistoryCache(10 * time.Millisecond)
	c.Set(1, []domain.Message{{Content: "hi"}})

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(1); ok {
		t.Error("expired entry should miss")
	}
}
