package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/softmind/personabot/internal/domain"
)

// Store interfaces are satisfied by the pgx repositories in
// internal/repository and by in-memory stubs in tests.

type UserStore interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Create(ctx context.Context, telegramID int64, firstName, username string, isAdmin bool) (*domain.User, error)
	UpdateInfo(ctx context.Context, id int64, firstName, username string) error
	UpdateLastInteraction(ctx context.Context, id int64) error
	SetActiveCharacter(ctx context.Context, id int64, characterID *int64) error
	SetPending(ctx context.Context, id int64, action domain.PendingAction, draft []byte) error
	SetBlocked(ctx context.Context, telegramID int64, blocked bool) error
	AddUsageCost(ctx context.Context, id int64, cost decimal.Decimal) error
	Count(ctx context.Context) (int64, error)
}

type CharacterStore interface {
	Create(ctx context.Context, c *domain.Character) (*domain.Character, error)
	GetByID(ctx context.Context, id int64) (*domain.Character, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Character, error)
	ListPublic(ctx context.Context, limit, offset int) ([]domain.Character, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, personality, backstory string, needs []string) error
	SetMood(ctx context.Context, id int64, mood string) error
}

type DialogStore interface {
	GetActive(ctx context.Context, telegramID, characterID int64) (*domain.Dialog, error)
	Create(ctx context.Context, telegramID, userID, characterID int64) (*domain.Dialog, error)
	Deactivate(ctx context.Context, id int64) error
	DeactivateByTelegramID(ctx context.Context, telegramID int64) error
	DeactivateByCharacter(ctx context.Context, characterID int64) error
	Touch(ctx context.Context, id int64) error
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.Dialog, error)
}

type MessageStore interface {
	Insert(ctx context.Context, dialogID int64, content string, isFromUser bool, metadata map[string]any) (*domain.Message, error)
	ListRecent(ctx context.Context, dialogID int64, limit int) ([]domain.Message, error)
	CountByDialog(ctx context.Context, dialogID int64) (int64, error)
}

type StatsStore interface {
	Get(ctx context.Context, dialogID int64) (*domain.DialogStats, error)
	BumpMessage(ctx context.Context, dialogID int64, fromUser bool) error
	RecordTechnique(ctx context.Context, dialogID int64, t domain.Technique) error
	RecordEvent(ctx context.Context, dialogID int64, eventKey string, at time.Time) error
}
