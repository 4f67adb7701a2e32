package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/characters", bot.MatchTypePrefix, h.handleCharacters)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNew)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypePrefix, h.handleCancel)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypePrefix, h.handleReset)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mood", bot.MatchTypePrefix, h.handleMood)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, h.handleAdminStats)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/block", bot.MatchTypePrefix, h.handleBlock)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unblock", bot.MatchTypePrefix, h.handleUnblock)

	// Character callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "char_open_", bot.MatchTypePrefix, h.handleCharacterOpen)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "char_del_", bot.MatchTypePrefix, h.handleCharacterDelete)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "char_page_", bot.MatchTypePrefix, h.handleCharacterPage)

	// Creation flow callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "arch_", bot.MatchTypePrefix, h.handleArchetypePick)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "create_ok", bot.MatchTypeExact, h.handleCreateConfirm)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "create_no", bot.MatchTypeExact, h.handleCreateCancel)

	// Mood callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "mood_", bot.MatchTypePrefix, h.handleMoodPick)

	// Pagination indicator
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "noop", bot.MatchTypeExact, h.handleNoop)
}

// handleNoop acknowledges callbacks from non-interactive inline buttons.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

// answerCallback acknowledges a callback query, optionally with a toast.
func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	})
}

func callbackChatID(update *models.Update) int64 {
	if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
		return update.CallbackQuery.Message.Message.Chat.ID
	}
	return 0
}
