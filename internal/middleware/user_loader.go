package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/domain"
	"github.com/softmind/personabot/internal/service"
)

type ctxKey string

const UserKey ctxKey = "user"

// GetUser extracts the loaded user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// UserLoader returns middleware that loads (or registers) the sender and
// puts the domain user into context. Blocked users are dropped here.
// onRegister, if non-nil, is called once per newly created user.
func UserLoader(userService *service.UserService, cfg interface{ IsAdmin(int64) bool }, onRegister func(telegramID int64, name, username string)) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			from := updateSender(update)
			if from == nil {
				next(ctx, b, update)
				return
			}

			user, created, err := userService.FindOrCreate(ctx, from.ID, from.FirstName, from.Username, cfg.IsAdmin(from.ID))
			if err != nil {
				slog.Error("load user", "error", err, "telegram_id", from.ID)
				next(ctx, b, update)
				return
			}
			if created {
				slog.Info("user registered", "telegram_id", from.ID, "username", from.Username)
				if onRegister != nil {
					onRegister(from.ID, from.FirstName, from.Username)
				}
			}
			if user.IsBlocked && !user.IsAdmin {
				slog.Debug("update dropped: user blocked", "telegram_id", from.ID)
				return
			}

			ctx = context.WithValue(ctx, UserKey, user)
			next(ctx, b, update)
		}
	}
}
