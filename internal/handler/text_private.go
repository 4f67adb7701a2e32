package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
	"github.com/softmind/personabot/internal/middleware"
	"github.com/softmind/personabot/internal/service"
	tg "github.com/softmind/personabot/internal/telegram"
)

// HandleTextPrivate drives the persona reply pipeline for private text messages.
func (h *Handler) HandleTextPrivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	msg := update.Message
	if strings.HasPrefix(msg.Text, "/") || msg.Text == "" {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := msg.Chat.ID

	// Creation flow intercepts plain text until it finishes.
	if user.InCreationFlow() {
		h.handleCreationInput(ctx, b, chatID, user, msg.Text)
		return
	}

	// 1. One request per chat at a time.
	if !h.active.TryAcquire(chatID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Wait for the previous reply to finish.",
		})
		return
	}
	defer h.active.Release(chatID)

	// 2. Cooldown.
	cooldown := config.CooldownRegular
	if user.IsAdmin {
		cooldown = config.CooldownAdmin
	}
	if since := time.Since(user.LastInteraction); since < cooldown {
		remaining := cooldown - since
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("⏳ Wait %d seconds.", int(remaining.Seconds())+1),
		})
		return
	}

	// 3. Need an active character.
	if !user.HasActiveCharacter() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Pick a character first: /characters (or create one with /new).",
		})
		return
	}
	char, err := h.characterService.Get(ctx, *user.ActiveCharacterID)
	if err != nil {
		if errors.Is(err, domain.ErrCharacterNotFound) {
			h.userService.SetActiveCharacter(ctx, user.ID, nil)
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "That character is gone. Pick another: /characters",
			})
			return
		}
		slog.Error("get character", "error", err)
		return
	}

	h.userService.UpdateLastInteraction(ctx, user.ID)

	// 4. Dialog and history.
	dialog, err := h.dialogService.GetOrCreate(ctx, chatID, user, char.ID)
	if err != nil {
		slog.Error("get or create dialog", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't open the dialog."})
		return
	}

	history, err := h.dialogService.History(ctx, dialog.ID, config.HistoryWindow)
	if err != nil {
		slog.Error("load history", "error", err)
		return
	}

	// 5. Pick the next technique and check the story rules.
	technique, err := h.techniqueService.Pick(ctx, dialog.ID)
	if err != nil {
		slog.Error("pick technique", "error", err)
		technique = domain.TechniqueValidation
	}

	event, err := h.storyService.Check(ctx, dialog.ID)
	if err != nil {
		slog.Error("story check", "error", err)
	}
	if event != nil {
		h.tgLogger.LogStoryEvent(dialog.ID, event.Key)
	}

	// 6. Call the model.
	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	messages := service.BuildChatMessages(char, user.DisplayName(), history, msg.Text, technique, event)

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	temperature := char.Temperature
	resp, err := h.llm.Chat(reqCtx, messages, &temperature)
	if err != nil {
		h.reportLLMError(ctx, b, chatID, reqCtx, err)
		return
	}
	responseText := resp.Text()

	// 7. Persist both sides, with usage on the reply.
	cost := service.CompletionCost(
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
		h.cfg.LLMPromptPricePerM, h.cfg.LLMCompletionPricePerM,
	)
	if _, err := h.dialogService.AddMessage(ctx, dialog.ID, msg.Text, true, nil); err != nil {
		slog.Error("save user message", "error", err)
	}
	meta := map[string]any{
		"technique":         string(technique),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"cost":              cost.String(),
	}
	if event != nil {
		meta["story_event"] = event.Key
	}
	if _, err := h.dialogService.AddMessage(ctx, dialog.ID, responseText, false, meta); err != nil {
		slog.Error("save bot message", "error", err)
	}
	if err := h.techniqueService.Record(ctx, dialog.ID, technique); err != nil {
		slog.Error("record technique", "error", err)
	}
	if err := h.userService.AddUsageCost(ctx, user.ID, cost); err != nil {
		slog.Error("record usage cost", "error", err)
	}

	// 8. Reply.
	if err := tg.SendLongMessage(ctx, b, chatID, responseText, nil); err != nil {
		slog.Error("send reply", "error", err)
		h.tgLogger.LogError(err, "send reply")
	}
}

func (h *Handler) reportLLMError(ctx context.Context, b *bot.Bot, chatID int64, reqCtx context.Context, err error) {
	slog.Error("llm chat", "error", err)

	text := "❌ Something went wrong generating the reply."
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		text = "⏳ The model is overloaded. Try again in a minute."
	case errors.Is(err, domain.ErrProviderDown):
		text = "❌ The model service is temporarily unavailable."
	case reqCtx.Err() != nil:
		text = "⏳ The reply took too long and was cancelled."
	default:
		h.tgLogger.LogError(err, "llm chat")
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

// NotifyStoryEvent delivers a re-engagement event fired by the inactivity
// sweep: the character writes first.
func (h *Handler) NotifyStoryEvent(ctx context.Context, dialog *domain.Dialog, event domain.StoryEvent) {
	user, err := h.userService.GetByTelegramID(ctx, dialog.TelegramID)
	if err != nil {
		// Group dialogs key on the chat, not a user; skip those.
		slog.Debug("story event: no user for chat", "telegram_id", dialog.TelegramID)
		return
	}
	char, err := h.characterService.Get(ctx, dialog.CharacterID)
	if err != nil {
		slog.Error("story event: get character", "error", err)
		return
	}
	history, err := h.dialogService.History(ctx, dialog.ID, config.HistoryWindow)
	if err != nil {
		slog.Error("story event: load history", "error", err)
		return
	}

	messages := []service.ChatMessage{{
		Role:    "system",
		Content: service.BuildSystemPrompt(char, user.DisplayName(), "", &event),
	}}
	for _, m := range history {
		messages = append(messages, service.ChatMessage{Role: m.Role(), Content: m.Content})
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	temperature := char.Temperature
	resp, err := h.llm.Chat(reqCtx, messages, &temperature)
	if err != nil {
		slog.Error("story event: llm chat", "error", err)
		return
	}

	meta := map[string]any{"story_event": event.Key}
	if _, err := h.dialogService.AddMessage(ctx, dialog.ID, resp.Text(), false, meta); err != nil {
		slog.Error("story event: save message", "error", err)
	}
	if err := tg.SendLongMessage(ctx, h.bot, dialog.TelegramID, resp.Text(), nil); err != nil {
		slog.Error("story event: send", "error", err)
	}
	h.tgLogger.LogStoryEvent(dialog.ID, event.Key)
}
