package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/middleware"
)

func (h *Handler) handleAdminStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.IsAdmin {
		return
	}
	chatID := update.Message.Chat.ID

	users, err := h.userService.Count(ctx)
	if err != nil {
		slog.Error("count users", "error", err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("📊 *Stats*\n\nUsers: %d", users),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) handleBlock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setBlocked(ctx, b, update, true)
}

func (h *Handler) handleUnblock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setBlocked(ctx, b, update, false)
}

func (h *Handler) setBlocked(ctx context.Context, b *bot.Bot, update *models.Update, blocked bool) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.IsAdmin {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) != 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("Usage: %s <telegram_id>", parts[0]),
		})
		return
	}
	targetID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "That's not a Telegram ID."})
		return
	}

	if blocked {
		err = h.userService.Block(ctx, targetID)
	} else {
		err = h.userService.Unblock(ctx, targetID)
	}
	if err != nil {
		slog.Error("set blocked", "error", err, "target", targetID, "blocked", blocked)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ " + err.Error()})
		return
	}

	verb := "blocked"
	if !blocked {
		verb = "unblocked"
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ User %d %s.", targetID, verb),
	})
}
