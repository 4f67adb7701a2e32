package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
	"github.com/softmind/personabot/internal/middleware"
	tg "github.com/softmind/personabot/internal/telegram"
)

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.HasActiveCharacter() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No active character. Pick one: /characters",
		})
		return
	}

	char, err := h.characterService.Get(ctx, *user.ActiveCharacterID)
	if err != nil {
		slog.Error("get character", "error", err)
		return
	}

	messages, err := h.dialogService.HistoryByParticipant(ctx, chatID, char.ID, config.HistoryPageSize)
	if err != nil {
		if errors.Is(err, domain.ErrDialogNotFound) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "No dialog yet. Just send a message to start one.",
			})
			return
		}
		slog.Error("load history", "error", err)
		return
	}

	if len(messages) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "The dialog is empty so far."})
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗂 *Last %d messages with %s:*\n\n", len(messages), char.Name)
	for _, m := range messages {
		author := char.Name
		if m.IsFromUser {
			author = user.DisplayName()
		}
		fmt.Fprintf(&sb, "*%s:* %s\n", author, m.Content)
	}

	if err := tg.SendLongMessage(ctx, b, chatID, sb.String(), nil); err != nil {
		slog.Error("send history", "error", err)
	}
}
