package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
)

// The creation flow walks the user through name → archetype → backstory →
// confirm. The step lives in users.pending_action and the accumulated draft
// in users.pending_draft, so the flow survives restarts.

// StepReply is what a creation step tells the handler to do next.
type StepReply struct {
	Text         string
	AskArchetype bool // show the archetype keyboard
	AskConfirm   bool // show the confirm/cancel keyboard
	Done         bool
	Character    *domain.Character
}

func (s *CharacterService) StartCreation(ctx context.Context, user *domain.User) (*StepReply, error) {
	count, err := s.characters.CountByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count characters: %w", err)
	}
	if count >= config.MaxCharactersPerUser {
		return nil, domain.ErrCharacterLimit
	}

	if err := s.setStep(ctx, user, domain.PendingCharName, domain.CharacterDraft{}); err != nil {
		return nil, err
	}
	return &StepReply{Text: "What should the character be called?"}, nil
}

// HandleInput advances the flow on a plain text message.
func (s *CharacterService) HandleInput(ctx context.Context, user *domain.User, text string) (*StepReply, error) {
	text = strings.TrimSpace(text)

	switch user.PendingAction {
	case domain.PendingCharName:
		return s.handleName(ctx, user, text)
	case domain.PendingCharArchetype:
		// Archetypes are picked from the keyboard; nudge instead of parsing.
		return &StepReply{Text: "Pick an archetype from the buttons above, or /cancel.", AskArchetype: true}, nil
	case domain.PendingCharBackstory:
		return s.handleBackstory(ctx, user, text)
	case domain.PendingCharConfirm:
		return &StepReply{Text: "Use the buttons to confirm or cancel.", AskConfirm: true}, nil
	default:
		return nil, fmt.Errorf("unexpected creation step %q", user.PendingAction)
	}
}

func (s *CharacterService) handleName(ctx context.Context, user *domain.User, name string) (*StepReply, error) {
	if name == "" || utf8.RuneCountInString(name) > config.MaxCharacterNameLen || strings.HasPrefix(name, "/") {
		return nil, domain.ErrInvalidName
	}

	draft := domain.CharacterDraft{Name: name}
	if err := s.setStep(ctx, user, domain.PendingCharArchetype, draft); err != nil {
		return nil, err
	}
	return &StepReply{
		Text:         fmt.Sprintf("*%s* it is. Now pick an archetype:", name),
		AskArchetype: true,
	}, nil
}

// ChooseArchetype handles the archetype keyboard callback.
func (s *CharacterService) ChooseArchetype(ctx context.Context, user *domain.User, key string) (*StepReply, error) {
	if user.PendingAction != domain.PendingCharArchetype {
		return nil, fmt.Errorf("unexpected creation step %q", user.PendingAction)
	}
	archetype, err := s.catalog.Get(key)
	if err != nil {
		return nil, err
	}

	draft, err := s.loadDraft(user)
	if err != nil {
		return nil, err
	}
	draft.Archetype = archetype.Key
	draft.Needs = append([]string(nil), archetype.Needs...)

	if err := s.setStep(ctx, user, domain.PendingCharBackstory, draft); err != nil {
		return nil, err
	}
	return &StepReply{
		Text: fmt.Sprintf(
			"*%s* (%s).\n\nNow send a backstory: a few sentences, a link to a page to draw from, or \"skip\".",
			draft.Name, archetype.Title,
		),
	}, nil
}

func (s *CharacterService) handleBackstory(ctx context.Context, user *domain.User, text string) (*StepReply, error) {
	draft, err := s.loadDraft(user)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.EqualFold(text, "skip"):
		draft.Backstory = ""
	case isURL(text):
		if s.importer == nil {
			return &StepReply{Text: "Link import is not available. Send the backstory as text, or \"skip\"."}, nil
		}
		extracted, err := s.importer.Extract(ctx, text)
		if err != nil {
			return &StepReply{Text: "Couldn't read that page. Send the backstory as text, or \"skip\"."}, nil
		}
		draft.Backstory = extracted
		draft.SourceURL = text
	default:
		if utf8.RuneCountInString(text) > config.MaxBackstoryLen {
			runes := []rune(text)
			text = string(runes[:config.MaxBackstoryLen])
		}
		draft.Backstory = text
	}

	if err := s.setStep(ctx, user, domain.PendingCharConfirm, draft); err != nil {
		return nil, err
	}

	archetype, _ := s.catalog.Get(draft.Archetype)
	summary := fmt.Sprintf("*%s* — %s", draft.Name, archetype.Title)
	if draft.SourceURL != "" {
		summary += fmt.Sprintf("\nBackstory imported from %s", draft.SourceURL)
	} else if draft.Backstory != "" {
		summary += "\nBackstory: " + snippet(draft.Backstory, 200)
	}
	return &StepReply{
		Text:       summary + "\n\nCreate this character?",
		AskConfirm: true,
	}, nil
}

// Confirm finishes the flow and creates the character.
func (s *CharacterService) Confirm(ctx context.Context, user *domain.User) (*StepReply, error) {
	if user.PendingAction != domain.PendingCharConfirm {
		return nil, fmt.Errorf("unexpected creation step %q", user.PendingAction)
	}
	draft, err := s.loadDraft(user)
	if err != nil {
		return nil, err
	}

	char, err := s.CreateFromArchetype(ctx, user, draft)
	if err != nil {
		return nil, err
	}
	if err := s.clearStep(ctx, user); err != nil {
		return nil, err
	}
	return &StepReply{Done: true, Character: char}, nil
}

// Cancel abandons the flow at any step.
func (s *CharacterService) Cancel(ctx context.Context, user *domain.User) error {
	return s.clearStep(ctx, user)
}

func (s *CharacterService) setStep(ctx context.Context, user *domain.User, step domain.PendingAction, draft domain.CharacterDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.users.SetPending(ctx, user.ID, step, raw); err != nil {
		return fmt.Errorf("save creation step: %w", err)
	}
	user.PendingAction = step
	user.PendingDraft = raw
	return nil
}

func (s *CharacterService) clearStep(ctx context.Context, user *domain.User) error {
	if err := s.users.SetPending(ctx, user.ID, domain.PendingNone, nil); err != nil {
		return fmt.Errorf("clear creation step: %w", err)
	}
	user.PendingAction = domain.PendingNone
	user.PendingDraft = nil
	return nil
}

func (s *CharacterService) loadDraft(user *domain.User) (domain.CharacterDraft, error) {
	var draft domain.CharacterDraft
	if len(user.PendingDraft) == 0 {
		return draft, domain.ErrNoDraft
	}
	if err := json.Unmarshal(user.PendingDraft, &draft); err != nil {
		return draft, fmt.Errorf("unmarshal draft: %w", err)
	}
	return draft, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
