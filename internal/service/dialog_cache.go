package service

import (
	"sync"
	"time"

	"github.com/softmind/personabot/internal/domain"
)

type historyEntry struct {
	messages []domain.Message
	cachedAt time.Time
}

// historyCache caches dialog history windows. Invalidation is wholesale:
// any write to any dialog clears the entire cache.
type historyCache struct {
	mu      sync.RWMutex
	entries map[int64]historyEntry
	ttl     time.Duration
}

func newHistoryCache(ttl time.Duration) *historyCache {
	return &historyCache{
		entries: make(map[int64]historyEntry),
		ttl:     ttl,
	}
}

func (c *historyCache) Get(dialogID int64) ([]domain.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[dialogID]
	if !ok || time.Since(e.cachedAt) > c.ttl {
		return nil, false
	}
	return e.messages, true
}

func (c *historyCache) Set(dialogID int64, messages []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dialogID] = historyEntry{messages: messages, cachedAt: time.Now()}
}

func (c *historyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int64]historyEntry)
}

func (c *historyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
