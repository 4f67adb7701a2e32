package service

import (
	"context"
	"testing"
	"time"

	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
)

func TestEvaluateStoryEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-config.StoryEventMinGap / 2)
	longAgo := now.Add(-config.StoryEventMinGap * 2)

	tests := []struct {
		name  string
		stats *domain.DialogStats
		want  string // event key, "" for none
	}{
		{
			name:  "nil stats",
			stats: nil,
			want:  "",
		},
		{
			name:  "quiet dialog fires nothing",
			stats: &domain.DialogStats{UserMessages: 2, BotMessages: 2},
			want:  "",
		},
		{
			name:  "first milestone at ten messages",
			stats: &domain.DialogStats{UserMessages: 5, BotMessages: 5},
			want:  "first_milestone",
		},
		{
			name: "first milestone fires only once",
			stats: &domain.DialogStats{
				UserMessages: 6, BotMessages: 6,
				FiredEvents: []string{"first_milestone"},
			},
			want: "",
		},
		{
			name: "second milestone takes precedence",
			stats: &domain.DialogStats{
				UserMessages: 25, BotMessages: 25,
				FiredEvents: []string{"first_milestone"},
			},
			want: "second_milestone",
		},
		{
			name: "second milestone can fire before the first",
			stats: &domain.DialogStats{
				UserMessages: 30, BotMessages: 30,
			},
			want: "second_milestone",
		},
		{
			name: "mood shift after heavy technique use",
			stats: &domain.DialogStats{
				UserMessages: 4, BotMessages: 4,
				TechniqueCounts: map[domain.Technique]int64{
					domain.TechniqueValidation: config.StoryMoodShiftUses,
				},
			},
			want: "mood_shift",
		},
		{
			name: "minimum gap suppresses the next event",
			stats: &domain.DialogStats{
				UserMessages: 25, BotMessages: 25,
				FiredEvents:      []string{"first_milestone"},
				LastStoryEventAt: &recent,
			},
			want: "",
		},
		{
			name: "gap elapsed allows the next event",
			stats: &domain.DialogStats{
				UserMessages: 25, BotMessages: 25,
				FiredEvents:      []string{"first_milestone"},
				LastStoryEventAt: &longAgo,
			},
			want: "second_milestone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateStoryEvent(tt.stats, now)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("EvaluateStoryEvent() = %q, want none", got.Key)
			case tt.want != "" && got == nil:
				t.Errorf("EvaluateStoryEvent() = none, want %q", tt.want)
			case tt.want != "" && got.Key != tt.want:
				t.Errorf("EvaluateStoryEvent() = %q, want %q", got.Key, tt.want)
			}
		})
	}
}

func TestEvaluateInactivity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-config.StoryInactivityAge - time.Hour)
	fresh := now.Add(-time.Hour)

	stats := &domain.DialogStats{UserMessages: 3, BotMessages: 3}

	if got := EvaluateInactivity(stats, stale, now); got == nil || got.Key != "reengage" {
		t.Errorf("stale dialog: got %v, want reengage", got)
	}
	if got := EvaluateInactivity(stats, fresh, now); got != nil {
		t.Errorf("fresh dialog: got %q, want none", got.Key)
	}

	fired := &domain.DialogStats{UserMessages: 3, FiredEvents: []string{"reengage"}}
	if got := EvaluateInactivity(fired, stale, now); got != nil {
		t.Errorf("already fired: got %q, want none", got.Key)
	}

	empty := &domain.DialogStats{}
	if got := EvaluateInactivity(empty, stale, now); got != nil {
		t.Errorf("dialog with no user messages: got %q, want none", got.Key)
	}
}

type stubDialogStore struct {
	active map[int64]*domain.Dialog // keyed by character ID for simplicity
	stale  []domain.Dialog

	created        []int64
	deactivatedTID []int64
	touched        []int64
}

func (s *stubDialogStore) GetActive(ctx context.Context, telegramID, characterID int64) (*domain.Dialog, error) {
	if d, ok := s.active[characterID]; ok {
		return d, nil
	}
	return nil, domain.ErrDialogNotFound
}

func (s *stubDialogStore) GetByID(ctx context.Context, id int64) (*domain.Dialog, error) {
	for _, d := range s.active {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrDialogNotFound
}

func (s *stubDialogStore) Create(ctx context.Context, telegramID, userID, characterID int64) (*domain.Dialog, error) {
	d := &domain.Dialog{
		ID:          int64(len(s.created) + 100),
		TelegramID:  telegramID,
		UserID:      userID,
		CharacterID: characterID,
		IsActive:    true,
	}
	if s.active == nil {
		s.active = map[int64]*domain.Dialog{}
	}
	s.active[characterID] = d
	s.created = append(s.created, d.ID)
	return d, nil
}

func (s *stubDialogStore) Deactivate(ctx context.Context, id int64) error { return nil }

func (s *stubDialogStore) DeactivateByTelegramID(ctx context.Context, telegramID int64) error {
	s.deactivatedTID = append(s.deactivatedTID, telegramID)
	return nil
}

func (s *stubDialogStore) DeactivateByCharacter(ctx context.Context, characterID int64) error {
	delete(s.active, characterID)
	return nil
}

func (s *stubDialogStore) Touch(ctx context.Context, id int64) error {
	s.touched = append(s.touched, id)
	return nil
}

func (s *stubDialogStore) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Dialog, error) {
	return s.stale, nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) NotifyStoryEvent(ctx context.Context, dialog *domain.Dialog, event domain.StoryEvent) {
	n.events = append(n.events, event.Key)
}

func TestStoryServiceCheck(t *testing.T) {
	stats := &stubStatsStore{stats: map[int64]*domain.DialogStats{
		7: {DialogID: 7, UserMessages: 5, BotMessages: 5},
	}}
	svc := NewStoryService(&stubDialogStore{}, stats)

	ev, err := svc.Check(context.Background(), 7)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if ev == nil || ev.Key != "first_milestone" {
		t.Fatalf("Check() = %v, want first_milestone", ev)
	}
	if len(stats.events) != 1 || stats.events[0] != "first_milestone" {
		t.Errorf("recorded events = %v, want [first_milestone]", stats.events)
	}

	// A dialog without stats fires nothing.
	ev, err = svc.Check(context.Background(), 99)
	if err != nil {
		t.Fatalf("Check() on unknown dialog error = %v", err)
	}
	if ev != nil {
		t.Errorf("Check() on unknown dialog = %q, want none", ev.Key)
	}
}

func TestStoryServiceSweepInactive(t *testing.T) {
	old := time.Now().Add(-config.StoryInactivityAge * 2)
	dialogs := &stubDialogStore{stale: []domain.Dialog{
		{ID: 1, TelegramID: 10, CharacterID: 1, UpdatedAt: old},
		{ID: 2, TelegramID: 20, CharacterID: 2, UpdatedAt: old},
	}}
	stats := &stubStatsStore{stats: map[int64]*domain.DialogStats{
		1: {DialogID: 1, UserMessages: 4},
		// Dialog 2 has no stats row and is skipped.
	}}
	notifier := &recordingNotifier{}

	svc := NewStoryService(dialogs, stats)
	svc.SetNotifier(notifier)

	fired, err := svc.SweepInactive(context.Background())
	if err != nil {
		t.Fatalf("SweepInactive() error = %v", err)
	}
	if fired != 1 {
		t.Errorf("SweepInactive() fired = %d, want 1", fired)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "reengage" {
		t.Errorf("notified events = %v, want [reengage]", notifier.events)
	}
}
