package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/domain"
	"github.com/softmind/personabot/internal/middleware"
	tg "github.com/softmind/personabot/internal/telegram"
)

func (h *Handler) handleMood(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	var row []models.InlineKeyboardButton
	for _, mood := range domain.Moods {
		label := mood
		if mood == char.Mood {
			label = "• " + mood
		}
		row = append(row, tg.InlineButton(label, "mood_"+mood))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        fmt.Sprintf("*%s* is feeling *%s*. Change it?", char.Name, char.Mood),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(row),
	})
}

func (h *Handler) handleMoodPick(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery == nil {
		return
	}
	if user.ActiveCharacterID == nil {
		h.answerCallback(ctx, b, update, "No active character")
		return
	}
	mood := strings.TrimPrefix(update.CallbackQuery.Data, "mood_")

	if err := h.characterService.SetMood(ctx, user, *user.ActiveCharacterID, mood); err != nil {
		h.answerCallback(ctx, b, update, "Couldn't change the mood")
		slog.Error("set mood", "error", err, "mood", mood)
		return
	}
	h.answerCallback(ctx, b, update, "Mood changed to "+mood)
}
