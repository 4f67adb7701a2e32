package handler

import "sync"

// activeRequests guards against a chat firing a second LLM request while
// one is still in flight.
type activeRequests struct {
	mu    sync.Mutex
	chats map[int64]struct{}
}

func newActiveRequests() *activeRequests {
	return &activeRequests{chats: make(map[int64]struct{})}
}

// TryAcquire reports whether the chat was free; the caller must Release.
func (a *activeRequests) TryAcquire(chatID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, busy := a.chats[chatID]; busy {
		return false
	}
	a.chats[chatID] = struct{}{}
	return true
}

func (a *activeRequests) Release(chatID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.chats, chatID)
}
