package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/config"
)

// slidingWindow tracks message timestamps per chat over the last minute.
type slidingWindow struct {
	mu      sync.Mutex
	history map[int64][]time.Time
}

func (w *slidingWindow) allow(chatID int64, limit int, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-time.Minute)
	kept := w.history[chatID][:0]
	for _, t := range w.history[chatID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= limit {
		w.history[chatID] = kept
		return false
	}
	w.history[chatID] = append(kept, now)
	return true
}

// RateLimit returns middleware that enforces a per-chat per-minute message limit.
func RateLimit() bot.Middleware {
	window := &slidingWindow{history: make(map[int64][]time.Time)}

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only messages count against the limit.
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if !window.allow(chatID, config.RateLimitPerMinute, time.Now()) {
				slog.Debug("rate limited", "chat_id", chatID)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Too many messages. Give it a minute.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
