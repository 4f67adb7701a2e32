package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingAction marks which step of a multi-step flow the user is in.
type PendingAction string

const (
	PendingNone          PendingAction = ""
	PendingCharName      PendingAction = "char_name"
	PendingCharArchetype PendingAction = "char_archetype"
	PendingCharBackstory PendingAction = "char_backstory"
	PendingCharConfirm   PendingAction = "char_confirm"
)

type User struct {
	ID                int64
	TelegramID        int64
	FirstName         string
	Username          string
	IsAdmin           bool
	IsBlocked         bool
	ActiveCharacterID *int64
	PendingAction     PendingAction
	PendingDraft      []byte
	UsageCost         decimal.Decimal
	LastInteraction   time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u *User) HasActiveCharacter() bool {
	return u.ActiveCharacterID != nil
}

func (u *User) InCreationFlow() bool {
	switch u.PendingAction {
	case PendingCharName, PendingCharArchetype, PendingCharBackstory, PendingCharConfirm:
		return true
	}
	return false
}

// DisplayName prefers the Telegram first name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "friend"
}
