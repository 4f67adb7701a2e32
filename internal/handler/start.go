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
	tg "github.com/softmind/personabot/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	// Deep link payload: /start c_<characterID> opens a dialog with that
	// character straight away.
	parts := strings.SplitN(update.Message.Text, " ", 2)
	if len(parts) > 1 && strings.HasPrefix(parts[1], "c_") {
		id, err := strconv.ParseInt(strings.TrimPrefix(parts[1], "c_"), 10, 64)
		if err == nil {
			h.openCharacter(ctx, b, chatID, user, id)
			return
		}
	}

	welcome := fmt.Sprintf(
		"👋 Hi, *%s*!\n\n"+
			"I host character personas you can talk to.\n\n"+
			"📋 *Commands:*\n"+
			"/characters — Your characters\n"+
			"/new — Create a character\n"+
			"/mood — Change the character's mood\n"+
			"/history — Recent messages\n"+
			"/reset — Close the current dialog\n"+
			"/cancel — Abort character creation\n\n"+
			"Create a character and just start typing!",
		user.DisplayName(),
	)

	if err := tg.SendLongMessage(ctx, b, chatID, welcome, nil); err != nil {
		slog.Error("send welcome", "error", err)
	}
}
