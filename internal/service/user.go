package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/softmind/personabot/internal/domain"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// FindOrCreate loads the user by Telegram ID, creating a record on first
// contact and refreshing name/username on revisits.
func (s *UserService) FindOrCreate(ctx context.Context, telegramID int64, firstName, username string, isAdmin bool) (*domain.User, bool, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err == nil {
		if user.FirstName != firstName || user.Username != username {
			if err := s.users.UpdateInfo(ctx, user.ID, firstName, username); err != nil {
				return nil, false, fmt.Errorf("update user info: %w", err)
			}
			user.FirstName = firstName
			user.Username = username
		}
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	user, err = s.users.Create(ctx, telegramID, firstName, username, isAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

func (s *UserService) UpdateLastInteraction(ctx context.Context, userID int64) error {
	return s.users.UpdateLastInteraction(ctx, userID)
}

func (s *UserService) SetActiveCharacter(ctx context.Context, userID int64, characterID *int64) error {
	return s.users.SetActiveCharacter(ctx, userID, characterID)
}

func (s *UserService) Block(ctx context.Context, telegramID int64) error {
	return s.users.SetBlocked(ctx, telegramID, true)
}

func (s *UserService) Unblock(ctx context.Context, telegramID int64) error {
	return s.users.SetBlocked(ctx, telegramID, false)
}

func (s *UserService) AddUsageCost(ctx context.Context, userID int64, cost decimal.Decimal) error {
	if cost.IsZero() {
		return nil
	}
	return s.users.AddUsageCost(ctx, userID, cost)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}
