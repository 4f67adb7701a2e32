package service

import (
	"strings"
	"testing"

	"github.com/softmind/personabot/internal/domain"
)

func testCharacter() *domain.Character {
	return &domain.Character{
		Name:        "Marcus",
		Archetype:   "sage",
		Personality: "Calm and measured. {{char}} listens to {{user}} carefully.",
		Backstory:   "A retired lighthouse keeper.",
		Needs:       []string{"quiet", "depth"},
		Mood:        "neutral",
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(testCharacter(), "Ada", domain.TechniqueOpenQuestion, nil)

	for _, want := range []string{
		"You are Marcus",
		"Ada",
		"lighthouse keeper",
		"quiet, depth",
		"Current mood: neutral",
		"Never mention being an AI",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Errorf("prompt left placeholders unresolved:\n%s", prompt)
	}
	if !strings.Contains(prompt, TechniqueDirective(domain.TechniqueOpenQuestion)) {
		t.Error("prompt missing the technique directive")
	}
}

func TestBuildSystemPromptWithEvent(t *testing.T) {
	event := &domain.StoryEvent{
		Key:         "first_milestone",
		Description: "{{char}} shares a memory with {{user}}.",
	}
	prompt := BuildSystemPrompt(testCharacter(), "Ada", domain.TechniqueValidation, event)

	if !strings.Contains(prompt, "Marcus shares a memory with Ada.") {
		t.Errorf("event not rendered into prompt:\n%s", prompt)
	}
}

func TestBuildChatMessages(t *testing.T) {
	history := []domain.Message{
		{Content: "hi", IsFromUser: true},
		{Content: "hello there", IsFromUser: false},
	}
	msgs := BuildChatMessages(testCharacter(), "Ada", history, "how are you?", domain.TechniqueReflection, nil)

	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("first message role = %q, want system", msgs[0].Role)
	}
	if msgs[1].Role != "user" || msgs[2].Role != "assistant" {
		t.Errorf("history roles = %q/%q, want user/assistant", msgs[1].Role, msgs[2].Role)
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || last.Content != "how are you?" {
		t.Errorf("last message = %+v, want the new user message", last)
	}
}
