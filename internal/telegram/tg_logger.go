package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/softmind/personabot/internal/config"
)

// TelegramLogger mirrors notable events into an ops chat, one forum topic
// per event type.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeRegistration LogType = "registration"
	LogTypeCharacter    LogType = "character"
	LogTypeStoryEvent   LogType = "storyEvent"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogRegistration(telegramID int64, name, username string) {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*ID:* `%d`\n*Name:* %s\n*Username:* @%s",
		telegramID, name, username)
	l.Log(LogTypeRegistration, msg)
}

func (l *TelegramLogger) LogCharacterCreated(telegramID int64, name, archetype string) {
	msg := fmt.Sprintf("🎭 *Character Created*\n\n*User:* `%d`\n*Name:* %s\n*Archetype:* %s",
		telegramID, name, archetype)
	l.Log(LogTypeCharacter, msg)
}

func (l *TelegramLogger) LogStoryEvent(dialogID int64, eventKey string) {
	msg := fmt.Sprintf("📖 *Story Event*\n\n*Dialog:* `%d`\n*Event:* %s",
		dialogID, eventKey)
	l.Log(LogTypeStoryEvent, msg)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRegistration:
		return l.cfg.LogTopicRegistration
	case LogTypeCharacter:
		return l.cfg.LogTopicCharacter
	case LogTypeStoryEvent:
		return l.cfg.LogTopicStoryEvent
	default:
		return 0
	}
}
