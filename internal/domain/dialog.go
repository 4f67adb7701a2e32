package domain

import (
	"time"
)

// Dialog is a conversation thread between a Telegram chat and a character.
// At most one dialog per (telegram_id, character_id) pair is active.
type Dialog struct {
	ID          int64
	TelegramID  int64
	UserID      int64
	CharacterID int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Message struct {
	ID         int64
	DialogID   int64
	ExternalID string
	Content    string
	IsFromUser bool
	Metadata   map[string]any
	CreatedAt  time.Time
}

// Role returns the chat-completion role for the message author.
func (m *Message) Role() string {
	if m.IsFromUser {
		return "user"
	}
	return "assistant"
}
