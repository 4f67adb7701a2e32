package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
	"github.com/softmind/personabot/internal/middleware"
	tg "github.com/softmind/personabot/internal/telegram"
)

func (h *Handler) handleCharacters(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	h.sendCharacterList(ctx, b, update.Message.Chat.ID, user, 0)
}

func (h *Handler) sendCharacterList(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, page int) {
	characters, err := h.characterService.ListByOwner(ctx, user.ID)
	if err != nil {
		slog.Error("list characters", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't load characters."})
		return
	}

	if len(characters) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "You don't have any characters yet. Use /new to create one.",
		})
		return
	}

	totalPages := (len(characters) + config.CharactersPerPage - 1) / config.CharactersPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	from := page * config.CharactersPerPage
	to := from + config.CharactersPerPage
	if to > len(characters) {
		to = len(characters)
	}

	var rows [][]models.InlineKeyboardButton
	for _, c := range characters[from:to] {
		label := fmt.Sprintf("%s (%s)", c.Name, c.Archetype)
		if user.ActiveCharacterID != nil && *user.ActiveCharacterID == c.ID {
			label = "▸ " + label
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(label, fmt.Sprintf("char_open_%d", c.ID)),
			tg.InlineButton("🗑", fmt.Sprintf("char_del_%d", c.ID)),
		))
	}
	if totalPages > 1 {
		rows = append(rows, tg.PaginationRow(page, totalPages, "char_page"))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🎭 *Your characters:*\nTap one to start talking.",
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleCharacterOpen(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery == nil {
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(update.CallbackQuery.Data, "char_open_"), 10, 64)
	if err != nil {
		return
	}
	h.answerCallback(ctx, b, update, "")
	h.openCharacter(ctx, b, callbackChatID(update), user, id)
}

// openCharacter makes the character active and opens (or resumes) its dialog.
func (h *Handler) openCharacter(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, characterID int64) {
	char, err := h.characterService.GetOwned(ctx, user, characterID)
	if err != nil {
		if errors.Is(err, domain.ErrCharacterNotFound) || errors.Is(err, domain.ErrAccessDenied) {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Character not found."})
			return
		}
		slog.Error("get character", "error", err)
		return
	}

	if err := h.userService.SetActiveCharacter(ctx, user.ID, &char.ID); err != nil {
		slog.Error("set active character", "error", err)
		return
	}
	user.ActiveCharacterID = &char.ID

	dialog, err := h.dialogService.GetOrCreate(ctx, chatID, user, char.ID)
	if err != nil {
		slog.Error("get or create dialog", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't open the dialog."})
		return
	}

	count, err := h.dialogService.CountMessages(ctx, dialog.ID)
	if err != nil {
		slog.Error("count messages", "error", err)
	}

	// Fresh dialog: the character says hello first.
	if count == 0 {
		greeting := h.characterService.Greeting(char, user.DisplayName())
		if _, err := h.dialogService.AddMessage(ctx, dialog.ID, greeting, false, nil); err != nil {
			slog.Error("save greeting", "error", err)
		}
		tg.SendLongMessage(ctx, b, chatID, greeting, nil)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("🎭 Resumed your dialog with *%s*.", char.Name),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) handleCharacterDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery == nil {
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(update.CallbackQuery.Data, "char_del_"), 10, 64)
	if err != nil {
		return
	}
	chatID := callbackChatID(update)

	if err := h.characterService.Delete(ctx, user, id); err != nil {
		h.answerCallback(ctx, b, update, "Couldn't delete the character")
		slog.Error("delete character", "error", err, "character_id", id)
		return
	}
	// The rows cascade away with the character; this flushes the history cache.
	if err := h.dialogService.DeactivateByCharacter(ctx, id); err != nil {
		slog.Error("deactivate dialogs", "error", err, "character_id", id)
	}
	if user.ActiveCharacterID != nil && *user.ActiveCharacterID == id {
		h.userService.SetActiveCharacter(ctx, user.ID, nil)
		user.ActiveCharacterID = nil
	}

	h.answerCallback(ctx, b, update, "Character deleted")
	h.sendCharacterList(ctx, b, chatID, user, 0)
}

func (h *Handler) handleCharacterPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.CallbackQuery == nil {
		return
	}
	page, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, "char_page_"))
	if err != nil {
		return
	}
	h.answerCallback(ctx, b, update, "")
	h.sendCharacterList(ctx, b, callbackChatID(update), user, page)
}
