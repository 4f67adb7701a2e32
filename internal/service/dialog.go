package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
)

type DialogService struct {
	dialogs  DialogStore
	messages MessageStore
	stats    StatsStore
	cache    *historyCache
}

func NewDialogService(dialogs DialogStore, messages MessageStore, stats StatsStore) *DialogService {
	return &DialogService{
		dialogs:  dialogs,
		messages: messages,
		stats:    stats,
		cache:    newHistoryCache(config.DialogCacheTTL),
	}
}

// GetOrCreate returns the active dialog for (telegramID, characterID),
// creating one if needed. A chat has one active dialog at a time, so
// creating a dialog with a new character closes any other active dialog
// in the same chat.
func (s *DialogService) GetOrCreate(ctx context.Context, telegramID int64, user *domain.User, characterID int64) (*domain.Dialog, error) {
	dialog, err := s.dialogs.GetActive(ctx, telegramID, characterID)
	if err == nil {
		return dialog, nil
	}
	if !errors.Is(err, domain.ErrDialogNotFound) {
		return nil, fmt.Errorf("get active dialog: %w", err)
	}

	if err := s.dialogs.DeactivateByTelegramID(ctx, telegramID); err != nil {
		return nil, fmt.Errorf("deactivate dialogs: %w", err)
	}
	dialog, err = s.dialogs.Create(ctx, telegramID, user.ID, characterID)
	if err != nil {
		return nil, err
	}
	s.cache.Clear()
	return dialog, nil
}

// StatsByParticipant resolves the active dialog for the pair and returns its
// counters. Backs the REST stats endpoint.
func (s *DialogService) StatsByParticipant(ctx context.Context, telegramID, characterID int64) (*domain.DialogStats, error) {
	dialog, err := s.dialogs.GetActive(ctx, telegramID, characterID)
	if err != nil {
		return nil, err
	}
	return s.Stats(ctx, dialog.ID)
}

// History returns the last limit messages of a dialog in chronological
// order, served from the cache when fresh.
func (s *DialogService) History(ctx context.Context, dialogID int64, limit int) ([]domain.Message, error) {
	if cached, ok := s.cache.Get(dialogID); ok && len(cached) >= limit {
		return cached[len(cached)-limit:], nil
	}

	messages, err := s.messages.ListRecent(ctx, dialogID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	s.cache.Set(dialogID, messages)
	return messages, nil
}

// HistoryByParticipant resolves the active dialog for the pair and returns
// its history. Backs the REST history endpoint.
func (s *DialogService) HistoryByParticipant(ctx context.Context, telegramID, characterID int64, limit int) ([]domain.Message, error) {
	dialog, err := s.dialogs.GetActive(ctx, telegramID, characterID)
	if err != nil {
		return nil, err
	}
	return s.History(ctx, dialog.ID, limit)
}

// AddMessage persists a message, bumps the dialog statistics and flushes
// the history cache.
func (s *DialogService) AddMessage(ctx context.Context, dialogID int64, content string, isFromUser bool, metadata map[string]any) (*domain.Message, error) {
	msg, err := s.messages.Insert(ctx, dialogID, content, isFromUser, metadata)
	if err != nil {
		return nil, err
	}
	// The message is persisted from here on, so the cache is stale even
	// when the bookkeeping below fails.
	defer s.cache.Clear()
	if err := s.stats.BumpMessage(ctx, dialogID, isFromUser); err != nil {
		return nil, fmt.Errorf("bump stats: %w", err)
	}
	if err := s.dialogs.Touch(ctx, dialogID); err != nil {
		return nil, fmt.Errorf("touch dialog: %w", err)
	}
	return msg, nil
}

func (s *DialogService) Deactivate(ctx context.Context, dialogID int64) error {
	if err := s.dialogs.Deactivate(ctx, dialogID); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// Reset closes every active dialog in the chat.
func (s *DialogService) Reset(ctx context.Context, telegramID int64) error {
	if err := s.dialogs.DeactivateByTelegramID(ctx, telegramID); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

// DeactivateByCharacter closes all dialogs bound to a character, used when
// the character is deleted.
func (s *DialogService) DeactivateByCharacter(ctx context.Context, characterID int64) error {
	if err := s.dialogs.DeactivateByCharacter(ctx, characterID); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

func (s *DialogService) CountMessages(ctx context.Context, dialogID int64) (int64, error) {
	return s.messages.CountByDialog(ctx, dialogID)
}

// Stats returns the dialog counters, zero-valued when nothing has been
// recorded yet.
func (s *DialogService) Stats(ctx context.Context, dialogID int64) (*domain.DialogStats, error) {
	stats, err := s.stats.Get(ctx, dialogID)
	if err != nil {
		if errors.Is(err, domain.ErrStatsNotFound) {
			return &domain.DialogStats{DialogID: dialogID}, nil
		}
		return nil, err
	}
	return stats, nil
}
