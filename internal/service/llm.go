package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
)

// LLMClient talks to an OpenAI-compatible chat completion API.
type LLMClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewLLMClient(apiKey, baseURL, model string) *LLMClient {
	return &LLMClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Text returns the first choice content.
func (r *ChatResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Chat runs a plain text completion.
func (c *LLMClient) Chat(ctx context.Context, messages []ChatMessage, temperature *float64) (*ChatResponse, error) {
	return c.complete(ctx, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
}

// ChatJSON runs a completion in JSON mode and unmarshals the first choice
// into out.
func (c *LLMClient) ChatJSON(ctx context.Context, messages []ChatMessage, out any) (*ChatResponse, error) {
	resp, err := c.complete(ctx, chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resp.Text()), out); err != nil {
		return nil, fmt.Errorf("parse json completion: %w", err)
	}
	return resp, nil
}

func (c *LLMClient) complete(ctx context.Context, chatReq chatRequest) (*ChatResponse, error) {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case http.StatusServiceUnavailable:
		return nil, domain.ErrProviderDown
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, domain.ErrEmptyCompletion
	}
	return &chatResp, nil
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// CompletionCost prices a completion from per-million-token rates.
func CompletionCost(promptTokens, completionTokens int, promptPerM, completionPerM float64) decimal.Decimal {
	million := decimal.NewFromInt(1_000_000)
	prompt := decimal.NewFromInt(int64(promptTokens)).
		Mul(decimal.NewFromFloat(promptPerM)).Div(million)
	completion := decimal.NewFromInt(int64(completionTokens)).
		Mul(decimal.NewFromFloat(completionPerM)).Div(million)
	return prompt.Add(completion)
}
