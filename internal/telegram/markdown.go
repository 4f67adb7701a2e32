package telegram

import (
	"strings"
)

// SplitMessage splits a message into chunks of at most maxLen runes,
// preferring newline boundaries. All indexing is in rune space; byte
// offsets would tear multibyte text apart.
func SplitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(runes) > maxLen {
		splitAt := maxLen
		// Split at the last newline in the chunk when it sits past the midpoint.
		for i := maxLen - 1; i > maxLen/2; i-- {
			if runes[i] == '\n' {
				splitAt = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:splitAt]))
		runes = runes[splitAt:]
	}
	return append(parts, string(runes))
}

// FixMarkdown attempts to fix common markdown issues.
func FixMarkdown(text string) string {
	// Fix unclosed code blocks
	codeBlockCount := strings.Count(text, "```")
	if codeBlockCount%2 != 0 {
		text += "\n```"
	}

	// Fix unclosed inline code (outside of code blocks)
	result := fixInlineCode(text)
	return result
}

func fixInlineCode(text string) string {
	var builder strings.Builder
	inCodeBlock := false
	inlineOpen := false

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		// Check for code blocks
		if i+2 < len(runes) && string(runes[i:i+3]) == "```" {
			if inlineOpen {
				builder.WriteRune('`')
				inlineOpen = false
			}
			inCodeBlock = !inCodeBlock
			builder.WriteString("```")
			i += 2
			continue
		}

		if !inCodeBlock && runes[i] == '`' {
			inlineOpen = !inlineOpen
		}

		builder.WriteRune(runes[i])
	}

	if inlineOpen {
		builder.WriteRune('`')
	}

	return builder.String()
}
