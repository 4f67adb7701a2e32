package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/softmind/personabot/internal/domain"
)

func completionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChat(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{
		"choices": [{"message": {"content": "hello from the model"}}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 5}
	}`)
	client := NewLLMClient("test-key", srv.URL, "test-model")

	resp, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Text() != "hello from the model" {
		t.Errorf("Text() = %q", resp.Text())
	}
	if resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 5 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, "", domain.ErrRateLimited},
		{"provider down", http.StatusServiceUnavailable, "", domain.ErrProviderDown},
		{"empty choices", http.StatusOK, `{"choices": []}`, domain.ErrEmptyCompletion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, tt.status, tt.body)
			client := NewLLMClient("test-key", srv.URL, "test-model")

			_, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Chat() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChatJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v, want json_object", req.ResponseFormat)
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "{\"personality\": \"calm\", \"needs\": [\"quiet\"]}"}}]}`))
	}))
	defer srv.Close()
	client := NewLLMClient("test-key", srv.URL, "test-model")

	var profile enrichedProfile
	if _, err := client.ChatJSON(context.Background(), []ChatMessage{{Role: "user", Content: "design"}}, &profile); err != nil {
		t.Fatalf("ChatJSON() error = %v", err)
	}
	if profile.Personality != "calm" || len(profile.Needs) != 1 {
		t.Errorf("profile = %+v", profile)
	}
}

func TestCompletionCost(t *testing.T) {
	// 1M prompt tokens at $0.15 plus 1M completion tokens at $0.60.
	cost := CompletionCost(1_000_000, 1_000_000, 0.15, 0.60)
	if got := cost.StringFixed(2); got != "0.75" {
		t.Errorf("CompletionCost() = %s, want 0.75", got)
	}

	if !CompletionCost(0, 0, 0.15, 0.60).IsZero() {
		t.Error("zero tokens should cost nothing")
	}
}
