package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AccessPolicy is the slice of config the access middleware needs.
type AccessPolicy interface {
	IsAllowed(telegramID int64) bool
}

// AccessControl drops updates from Telegram users outside the allowlist.
func AccessControl(policy AccessPolicy) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			from := updateSender(update)
			if from == nil {
				next(ctx, b, update)
				return
			}
			if !policy.IsAllowed(from.ID) {
				slog.Debug("update dropped: not allowed", "telegram_id", from.ID)
				return
			}
			next(ctx, b, update)
		}
	}
}

func updateSender(update *models.Update) *models.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return &update.CallbackQuery.From
	}
	return nil
}
