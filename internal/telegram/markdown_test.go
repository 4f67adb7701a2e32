package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessage(t *testing.T) {
	t.Run("short message stays whole", func(t *testing.T) {
		parts := SplitMessage("hello", 100)
		if len(parts) != 1 || parts[0] != "hello" {
			t.Errorf("SplitMessage() = %v", parts)
		}
	})

	t.Run("long message splits under the limit", func(t *testing.T) {
		text := strings.Repeat("a", 250)
		parts := SplitMessage(text, 100)
		if len(parts) != 3 {
			t.Fatalf("got %d parts, want 3", len(parts))
		}
		var total int
		for _, p := range parts {
			if utf8.RuneCountInString(p) > 100 {
				t.Errorf("part is %d runes, max 100", utf8.RuneCountInString(p))
			}
			total += utf8.RuneCountInString(p)
		}
		if total != 250 {
			t.Errorf("parts total %d runes, want 250", total)
		}
	})

	t.Run("prefers newline boundaries", func(t *testing.T) {
		text := strings.Repeat("x", 80) + "\n" + strings.Repeat("y", 80)
		parts := SplitMessage(text, 100)
		if len(parts) != 2 {
			t.Fatalf("got %d parts, want 2", len(parts))
		}
		if !strings.HasSuffix(parts[0], "\n") {
			t.Errorf("first part should end at the newline, got %q...", parts[0][:20])
		}
	})

	t.Run("multibyte text splits at the newline without panicking", func(t *testing.T) {
		// Byte offsets of a Cyrillic newline land past the rune count.
		text := strings.Repeat("д", 80) + "\n" + strings.Repeat("ж", 20)
		parts := SplitMessage(text, 100)
		if len(parts) != 2 {
			t.Fatalf("got %d parts, want 2", len(parts))
		}
		if !strings.HasSuffix(parts[0], "\n") {
			t.Errorf("first part should end at the newline")
		}
		if strings.Join(parts, "") != text {
			t.Errorf("parts do not reassemble the original text")
		}
		for _, p := range parts {
			if !utf8.ValidString(p) || utf8.RuneCountInString(p) > 100 {
				t.Errorf("part is %d runes (valid=%v), max 100", utf8.RuneCountInString(p), utf8.ValidString(p))
			}
		}
	})
}

func TestFixMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"balanced text untouched", "plain *bold* text", "plain *bold* text"},
		{"closes dangling code block", "look:\n```go\nfunc main()", "look:\n```go\nfunc main()\n```"},
		{"closes dangling inline code", "use `go test and see", "use `go test and see`"},
		{"balanced code block untouched", "```\nx\n```", "```\nx\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixMarkdown(tt.in); got != tt.want {
				t.Errorf("FixMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
