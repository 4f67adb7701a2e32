package domain

import (
	"strings"
	"time"
)

type Character struct {
	ID          int64
	OwnerID     int64
	Name        string
	Archetype   string
	Personality string
	Backstory   string
	Needs       []string
	Mood        string
	Temperature float64
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Moods a character can be switched to from the /mood menu.
var Moods = []string{"neutral", "cheerful", "melancholic", "playful", "stern"}

func IsValidMood(mood string) bool {
	for _, m := range Moods {
		if m == mood {
			return true
		}
	}
	return false
}

// CharacterDraft is the in-progress state of the creation flow,
// persisted as JSON in users.pending_draft between steps.
type CharacterDraft struct {
	Name      string   `json:"name"`
	Archetype string   `json:"archetype"`
	Backstory string   `json:"backstory"`
	Needs     []string `json:"needs,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
}

// ReplacePlaceholders substitutes {{user}} and {{char}} markers in persona text.
func ReplacePlaceholders(text, userName, charName string) string {
	text = strings.ReplaceAll(text, "{{user}}", userName)
	text = strings.ReplaceAll(text, "{{char}}", charName)
	return text
}
