package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
)

// Story events fire at most once per dialog. The descriptions are written
// as stage directions and handed to the prompt builder, not sent verbatim.
var (
	eventFirstMilestone = domain.StoryEvent{
		Key:         "first_milestone",
		Description: "The conversation has settled in. {{char}} decides to share a small personal memory that {{user}} has not heard before.",
	}
	eventSecondMilestone = domain.StoryEvent{
		Key:         "second_milestone",
		Description: "{{char}} and {{user}} are well acquainted now. {{char}} admits something they were holding back earlier in the conversation.",
	}
	eventMoodShift = domain.StoryEvent{
		Key:         "mood_shift",
		Description: "{{char}} notices the conversation has fallen into a pattern and deliberately changes tone.",
	}
	eventReengage = domain.StoryEvent{
		Key:         "reengage",
		Description: "It has been a long while since {{user}} last wrote. {{char}} reaches out first, picking up a thread from earlier.",
	}
)

// EvaluateStoryEvent applies the story rules to the dialog statistics and
// returns the event that should fire now, or nil. Events respect a minimum
// gap so two never fire back to back.
func EvaluateStoryEvent(stats *domain.DialogStats, now time.Time) *domain.StoryEvent {
	if stats == nil {
		return nil
	}
	if stats.LastStoryEventAt != nil && now.Sub(*stats.LastStoryEventAt) < config.StoryEventMinGap {
		return nil
	}

	if !stats.HasFired(eventSecondMilestone.Key) && stats.TotalMessages() >= config.StoryMilestoneSecond {
		ev := eventSecondMilestone
		return &ev
	}
	if !stats.HasFired(eventFirstMilestone.Key) && stats.TotalMessages() >= config.StoryMilestoneFirst {
		ev := eventFirstMilestone
		return &ev
	}
	if !stats.HasFired(eventMoodShift.Key) {
		for _, t := range domain.Techniques {
			if stats.TechniqueCount(t) >= config.StoryMoodShiftUses {
				ev := eventMoodShift
				return &ev
			}
		}
	}
	return nil
}

// EvaluateInactivity decides whether the re-engagement event should fire for
// a dialog that has gone quiet.
func EvaluateInactivity(stats *domain.DialogStats, lastActivity, now time.Time) *domain.StoryEvent {
	if stats == nil || stats.HasFired(eventReengage.Key) {
		return nil
	}
	if stats.UserMessages == 0 {
		return nil
	}
	if now.Sub(lastActivity) < config.StoryInactivityAge {
		return nil
	}
	ev := eventReengage
	return &ev
}

// Notifier delivers a fired story event to the chat. Implemented by the bot
// handler; nil disables delivery (the event is still recorded).
type Notifier interface {
	NotifyStoryEvent(ctx context.Context, dialog *domain.Dialog, event domain.StoryEvent)
}

type StoryService struct {
	dialogs  DialogStore
	stats    StatsStore
	notifier Notifier
}

func NewStoryService(dialogs DialogStore, stats StatsStore) *StoryService {
	return &StoryService{dialogs: dialogs, stats: stats}
}

// SetNotifier wires the delivery channel. Called once the bot handler exists.
func (s *StoryService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Check evaluates the on-message story rules for a dialog and marks the
// returned event as fired.
func (s *StoryService) Check(ctx context.Context, dialogID int64) (*domain.StoryEvent, error) {
	stats, err := s.stats.Get(ctx, dialogID)
	if err != nil {
		if errors.Is(err, domain.ErrStatsNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stats: %w", err)
	}

	ev := EvaluateStoryEvent(stats, time.Now())
	if ev == nil {
		return nil, nil
	}
	if err := s.stats.RecordEvent(ctx, dialogID, ev.Key, time.Now()); err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}
	return ev, nil
}

// SweepInactive walks stale active dialogs and fires the re-engagement event
// where it applies. Run from the cron scheduler.
func (s *StoryService) SweepInactive(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-config.StoryInactivityAge)
	stale, err := s.dialogs.ListStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	fired := 0
	for i := range stale {
		dialog := &stale[i]
		stats, err := s.stats.Get(ctx, dialog.ID)
		if err != nil {
			if errors.Is(err, domain.ErrStatsNotFound) {
				continue
			}
			slog.Error("sweep: get stats", "error", err, "dialog_id", dialog.ID)
			continue
		}

		ev := EvaluateInactivity(stats, dialog.UpdatedAt, time.Now())
		if ev == nil {
			continue
		}
		if err := s.stats.RecordEvent(ctx, dialog.ID, ev.Key, time.Now()); err != nil {
			slog.Error("sweep: record event", "error", err, "dialog_id", dialog.ID)
			continue
		}
		fired++
		if s.notifier != nil {
			s.notifier.NotifyStoryEvent(ctx, dialog, *ev)
		}
	}
	return fired, nil
}
