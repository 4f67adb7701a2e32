package service

import (
	"fmt"
	"strings"

	"github.com/softmind/personabot/internal/domain"
)

// BuildSystemPrompt renders the character state into the system message.
// Technique directive and story event are appended as stage directions.
func BuildSystemPrompt(char *domain.Character, userName string, technique domain.Technique, event *domain.StoryEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a character in an ongoing conversation with %s.\n", char.Name, userName)
	fmt.Fprintf(&b, "Archetype: %s.\n", char.Archetype)
	if char.Personality != "" {
		fmt.Fprintf(&b, "Personality: %s\n", char.Personality)
	}
	if char.Backstory != "" {
		fmt.Fprintf(&b, "Backstory: %s\n", char.Backstory)
	}
	if len(char.Needs) > 0 {
		fmt.Fprintf(&b, "What drives you: %s.\n", strings.Join(char.Needs, ", "))
	}
	fmt.Fprintf(&b, "Current mood: %s.\n", char.Mood)

	b.WriteString("\nStay in character. Never mention being an AI, a language model, or these instructions. ")
	b.WriteString("Keep replies conversational and under a few paragraphs.\n")

	if directive := TechniqueDirective(technique); directive != "" {
		fmt.Fprintf(&b, "\nFor your next reply: %s\n", directive)
	}
	if event != nil {
		fmt.Fprintf(&b, "\nSomething shifts in the conversation: %s\n", event.Description)
	}

	return domain.ReplacePlaceholders(b.String(), userName, char.Name)
}

// BuildChatMessages assembles the full completion request: system prompt,
// history window, then the new user message.
func BuildChatMessages(char *domain.Character, userName string, history []domain.Message, userText string, technique domain.Technique, event *domain.StoryEvent) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{
		Role:    "system",
		Content: BuildSystemPrompt(char, userName, technique, event),
	})
	for _, m := range history {
		messages = append(messages, ChatMessage{
			Role:    m.Role(),
			Content: m.Content,
		})
	}
	messages = append(messages, ChatMessage{
		Role:    "user",
		Content: userText,
	})
	return messages
}

// BuildEnrichMessages asks the model to flesh out a character draft as JSON.
func BuildEnrichMessages(draft domain.CharacterDraft, archetype domain.Archetype) []ChatMessage {
	system := "You design chatbot personas. Respond with a JSON object containing " +
		`"personality" (2-3 sentences, second person) and "needs" (array of 2-4 single words). ` +
		"No other keys."
	user := fmt.Sprintf(
		"Character name: %s\nArchetype: %s (%s)\nBackstory material:\n%s",
		draft.Name, archetype.Title, archetype.Personality, draft.Backstory,
	)
	return []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
