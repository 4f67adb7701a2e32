package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
)

// jsonCompleter is the slice of the LLM client the character service needs.
type jsonCompleter interface {
	ChatJSON(ctx context.Context, messages []ChatMessage, out any) (*ChatResponse, error)
}

// textExtractor fetches backstory material from a URL.
type textExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

type CharacterService struct {
	characters CharacterStore
	users      UserStore
	catalog    *ArchetypeCatalog
	enricher   jsonCompleter
	importer   textExtractor
}

func NewCharacterService(characters CharacterStore, users UserStore, catalog *ArchetypeCatalog, enricher jsonCompleter, importer textExtractor) *CharacterService {
	return &CharacterService{
		characters: characters,
		users:      users,
		catalog:    catalog,
		enricher:   enricher,
		importer:   importer,
	}
}

func (s *CharacterService) Catalog() *ArchetypeCatalog {
	return s.catalog
}

func (s *CharacterService) Get(ctx context.Context, id int64) (*domain.Character, error) {
	return s.characters.GetByID(ctx, id)
}

// GetOwned returns the character only when it belongs to the user.
func (s *CharacterService) GetOwned(ctx context.Context, user *domain.User, id int64) (*domain.Character, error) {
	char, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if char.OwnerID != user.ID && !char.IsPublic && !user.IsAdmin {
		return nil, domain.ErrAccessDenied
	}
	return char, nil
}

func (s *CharacterService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Character, error) {
	return s.characters.ListByOwner(ctx, ownerID)
}

func (s *CharacterService) ListPublic(ctx context.Context, limit, offset int) ([]domain.Character, error) {
	return s.characters.ListPublic(ctx, limit, offset)
}

// CreateFromArchetype builds a character seeded from an archetype preset.
// Used both by the confirm step of the creation flow and directly by tests.
func (s *CharacterService) CreateFromArchetype(ctx context.Context, owner *domain.User, draft domain.CharacterDraft) (*domain.Character, error) {
	archetype, err := s.catalog.Get(draft.Archetype)
	if err != nil {
		return nil, err
	}

	count, err := s.characters.CountByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("count characters: %w", err)
	}
	if count >= config.MaxCharactersPerUser {
		return nil, domain.ErrCharacterLimit
	}

	char := &domain.Character{
		OwnerID:     owner.ID,
		Name:        draft.Name,
		Archetype:   archetype.Key,
		Personality: archetype.Personality,
		Backstory:   draft.Backstory,
		Needs:       append([]string(nil), archetype.Needs...),
		Mood:        "neutral",
		Temperature: config.DefaultTemperature,
	}
	if len(draft.Needs) > 0 {
		char.Needs = append([]string(nil), draft.Needs...)
	}

	// LLM enrichment is best effort: the archetype seed already makes a
	// usable character.
	if s.enricher != nil {
		if profile, err := s.enrich(ctx, draft, archetype); err != nil {
			slog.Warn("character enrichment failed", "error", err, "name", draft.Name)
		} else {
			if profile.Personality != "" {
				char.Personality = profile.Personality
			}
			if len(profile.Needs) > 0 {
				char.Needs = profile.Needs
			}
		}
	}

	created, err := s.characters.Create(ctx, char)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActiveCharacter(ctx, owner.ID, &created.ID); err != nil {
		return nil, fmt.Errorf("set active character: %w", err)
	}
	return created, nil
}

type enrichedProfile struct {
	Personality string   `json:"personality"`
	Needs       []string `json:"needs"`
}

func (s *CharacterService) enrich(ctx context.Context, draft domain.CharacterDraft, archetype domain.Archetype) (*enrichedProfile, error) {
	var profile enrichedProfile
	if _, err := s.enricher.ChatJSON(ctx, BuildEnrichMessages(draft, archetype), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Delete removes an owned character. The caller is responsible for closing
// its dialogs first.
func (s *CharacterService) Delete(ctx context.Context, user *domain.User, id int64) error {
	char, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if char.OwnerID != user.ID && !user.IsAdmin {
		return domain.ErrAccessDenied
	}
	return s.characters.Delete(ctx, id)
}

func (s *CharacterService) SetMood(ctx context.Context, user *domain.User, id int64, mood string) error {
	if !domain.IsValidMood(mood) {
		return fmt.Errorf("invalid mood %q", mood)
	}
	char, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if char.OwnerID != user.ID && !user.IsAdmin {
		return domain.ErrAccessDenied
	}
	return s.characters.SetMood(ctx, id, mood)
}

// Greeting renders the archetype greeting for a character, falling back to a
// neutral opener for characters whose archetype left the catalog.
func (s *CharacterService) Greeting(char *domain.Character, userName string) string {
	archetype, err := s.catalog.Get(char.Archetype)
	if err != nil || archetype.Greeting == "" {
		return fmt.Sprintf("Hello, %s.", userName)
	}
	return domain.ReplacePlaceholders(archetype.Greeting, userName, char.Name)
}
