package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/domain"
	"github.com/softmind/personabot/internal/middleware"
	"github.com/softmind/personabot/internal/service"
	tg "github.com/softmind/personabot/internal/telegram"
)

func (h *Handler) handleNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	reply, err := h.characterService.StartCreation(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrCharacterLimit) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ You've reached the character limit. Delete one first: /characters",
			})
			return
		}
		slog.Error("start creation", "error", err)
		return
	}
	h.sendStepReply(ctx, b, chatID, reply)
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	if !user.InCreationFlow() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Nothing to cancel.",
		})
		return
	}
	if err := h.characterService.Cancel(ctx, user); err != nil {
		slog.Error("cancel creation", "error", err)
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Character creation cancelled.",
	})
}

// handleCreationInput routes plain text messages while the creation flow is
// active. Called from the text handler.
func (h *Handler) handleCreationInput(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, text string) {
	reply, err := h.characterService.HandleInput(ctx, user, text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidName) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "That name won't work. Something short, no slashes.",
			})
			return
		}
		slog.Error("creation input", "error", err, "step", user.PendingAction)
		return
	}
	h.sendStepReply(ctx, b, chatID, reply)
}

func (h *Handler) handleArchetypePick(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery == nil {
		return
	}
	key := strings.TrimPrefix(update.CallbackQuery.Data, "arch_")
	chatID := callbackChatID(update)

	reply, err := h.characterService.ChooseArchetype(ctx, user, key)
	if err != nil {
		h.answerCallback(ctx, b, update, "That didn't work, try /new again")
		slog.Error("choose archetype", "error", err, "key", key)
		return
	}
	h.answerCallback(ctx, b, update, "")
	h.sendStepReply(ctx, b, chatID, reply)
}

func (h *Handler) handleCreateConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery == nil {
		return
	}
	chatID := callbackChatID(update)

	reply, err := h.characterService.Confirm(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrCharacterLimit) {
			h.answerCallback(ctx, b, update, "Character limit reached")
			return
		}
		h.answerCallback(ctx, b, update, "Creation failed")
		slog.Error("confirm creation", "error", err)
		return
	}
	h.answerCallback(ctx, b, update, "Character created")

	char := reply.Character
	h.tgLogger.LogCharacterCreated(user.TelegramID, char.Name, char.Archetype)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ *%s* is ready and waiting.\nShare: t.me/%s?start=c_%d",
			char.Name, h.botUsername, char.ID),
		ParseMode: models.ParseModeMarkdownV1,
	})
	h.openCharacter(ctx, b, chatID, user, char.ID)
}

func (h *Handler) handleCreateCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery == nil {
		return
	}
	if err := h.characterService.Cancel(ctx, user); err != nil {
		slog.Error("cancel creation", "error", err)
	}
	h.answerCallback(ctx, b, update, "Cancelled")
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: callbackChatID(update),
		Text:   "Character creation cancelled.",
	})
}

// sendStepReply renders a creation StepReply with the right keyboard.
func (h *Handler) sendStepReply(ctx context.Context, b *bot.Bot, chatID int64, reply *service.StepReply) {
	if reply == nil || reply.Done {
		return
	}

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      reply.Text,
		ParseMode: models.ParseModeMarkdownV1,
	}
	switch {
	case reply.AskArchetype:
		var rows [][]models.InlineKeyboardButton
		for _, a := range h.characterService.Catalog().List() {
			rows = append(rows, tg.ButtonRow(tg.InlineButton(a.Title, "arch_"+a.Key)))
		}
		params.ReplyMarkup = tg.InlineKeyboard(rows...)
	case reply.AskConfirm:
		params.ReplyMarkup = tg.InlineKeyboard(tg.ButtonRow(
			tg.InlineButton("✅ Create", "create_ok"),
			tg.InlineButton("❌ Cancel", "create_no"),
		))
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		params.ParseMode = ""
		b.SendMessage(ctx, params)
	}
}
