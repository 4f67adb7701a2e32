package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/softmind/personabot/internal/domain"
)

var errDialogBoom = errors.New("store unavailable")

type stubMessageStore struct {
	messages map[int64][]domain.Message
	nextID   int64
	listed   int // ListRecent call count, shows cache hits
}

func (s *stubMessageStore) Insert(ctx context.Context, dialogID int64, content string, isFromUser bool, metadata map[string]any) (*domain.Message, error) {
	if s.messages == nil {
		s.messages = map[int64][]domain.Message{}
	}
	s.nextID++
	m := domain.Message{
		ID:         s.nextID,
		DialogID:   dialogID,
		ExternalID: fmt.Sprintf("msg-%d", s.nextID),
		Content:    content,
		IsFromUser: isFromUser,
		Metadata:   metadata,
	}
	s.messages[dialogID] = append(s.messages[dialogID], m)
	return &m, nil
}

func (s *stubMessageStore) ListRecent(ctx context.Context, dialogID int64, limit int) ([]domain.Message, error) {
	s.listed++
	msgs := s.messages[dialogID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *stubMessageStore) CountByDialog(ctx context.Context, dialogID int64) (int64, error) {
	return int64(len(s.messages[dialogID])), nil
}

func newDialogFixture() (*DialogService, *stubDialogStore, *stubMessageStore, *stubStatsStore) {
	dialogs := &stubDialogStore{}
	messages := &stubMessageStore{}
	stats := &stubStatsStore{stats: map[int64]*domain.DialogStats{}}
	return NewDialogService(dialogs, messages, stats), dialogs, messages, stats
}

func TestDialogServiceGetOrCreate(t *testing.T) {
	svc, dialogs, _, _ := newDialogFixture()
	user := &domain.User{ID: 1, TelegramID: 42}

	first, err := svc.GetOrCreate(context.Background(), 42, user, 7)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !first.IsActive || first.CharacterID != 7 {
		t.Errorf("GetOrCreate() = %+v, want active dialog with character 7", first)
	}
	// Creating deactivates other dialogs in the chat first.
	if len(dialogs.deactivatedTID) != 1 || dialogs.deactivatedTID[0] != 42 {
		t.Errorf("deactivated = %v, want [42]", dialogs.deactivatedTID)
	}

	// Second call returns the same dialog without creating another.
	again, err := svc.GetOrCreate(context.Background(), 42, user, 7)
	if err != nil {
		t.Fatalf("GetOrCreate() second call error = %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("GetOrCreate() returned dialog %d, want existing %d", again.ID, first.ID)
	}
	if len(dialogs.created) != 1 {
		t.Errorf("created %d dialogs, want 1", len(dialogs.created))
	}
}

func TestDialogServiceHistoryUsesCache(t *testing.T) {
	svc, _, messages, _ := newDialogFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := messages.Insert(ctx, 1, fmt.Sprintf("m%d", i), i%2 == 0, nil); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.History(ctx, 1, 3); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	got, err := svc.History(ctx, 1, 3)
	if err != nil {
		t.Fatalf("History() second call error = %v", err)
	}
	if messages.listed != 1 {
		t.Errorf("store queried %d times, want 1 (second call cached)", messages.listed)
	}
	if len(got) != 3 || got[len(got)-1].Content != "m4" {
		t.Errorf("History() = %v, want last 3 messages ending in m4", got)
	}

	// Asking for more than the cached window goes back to the store.
	if _, err := svc.History(ctx, 1, 5); err != nil {
		t.Fatalf("History() wide call error = %v", err)
	}
	if messages.listed != 2 {
		t.Errorf("store queried %d times, want 2 after wider window", messages.listed)
	}
}

func TestDialogServiceAddMessageInvalidatesCache(t *testing.T) {
	svc, dialogs, messages, stats := newDialogFixture()
	ctx := context.Background()

	if _, err := messages.Insert(ctx, 1, "hello", true, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.History(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AddMessage(ctx, 1, "reply", false, map[string]any{"technique": "validation"}); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	if len(dialogs.touched) != 1 {
		t.Errorf("dialog touched %d times, want 1", len(dialogs.touched))
	}
	_ = stats

	got, err := svc.History(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if messages.listed != 2 {
		t.Errorf("store queried %d times, want 2 (cache flushed on write)", messages.listed)
	}
	if len(got) != 2 || got[1].Content != "reply" {
		t.Errorf("History() after write = %v, want 2 messages ending in reply", got)
	}
}

func TestDialogServiceAddMessageFlushesCacheOnBumpError(t *testing.T) {
	svc, _, messages, stats := newDialogFixture()
	ctx := context.Background()

	if _, err := messages.Insert(ctx, 1, "hello", true, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.History(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}

	stats.bumpErr = errDialogBoom
	if _, err := svc.AddMessage(ctx, 1, "reply", false, nil); err == nil {
		t.Fatal("AddMessage() expected error when the stats bump fails")
	}

	// The insert went through, so the cache must not keep serving the
	// pre-write history.
	got, err := svc.History(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if messages.listed != 2 {
		t.Errorf("store queried %d times, want 2 (cache flushed despite failed bump)", messages.listed)
	}
	if len(got) != 2 || got[1].Content != "reply" {
		t.Errorf("History() = %v, want the persisted reply visible", got)
	}
}

func TestDialogServiceStatsZeroValue(t *testing.T) {
	svc, _, _, _ := newDialogFixture()

	stats, err := svc.Stats(context.Background(), 99)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.DialogID != 99 || stats.TotalMessages() != 0 {
		t.Errorf("Stats() = %+v, want zero counters for dialog 99", stats)
	}
}
