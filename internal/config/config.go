package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// LLM provider (OpenAI-compatible)
	LLMAPIKey              string  `env:"LLM_API_KEY,required"`
	LLMBaseURL             string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel               string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMPromptPricePerM     float64 `env:"LLM_PROMPT_PRICE_PER_M" envDefault:"0.15"`
	LLMCompletionPricePerM float64 `env:"LLM_COMPLETION_PRICE_PER_M" envDefault:"0.60"`

	// Access control
	AdminIDs   []int64 `env:"ADMIN_IDS" envSeparator:","`
	AllowedIDs []int64 `env:"ALLOWED_IDS" envSeparator:","`

	// HTTP API
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	APIToken string `env:"API_TOKEN"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram ops logging
	LogTelegramChatID    int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError        int   `env:"LOG_TOPIC_ERROR"`
	LogTopicRegistration int   `env:"LOG_TOPIC_REGISTRATION"`
	LogTopicCharacter    int   `env:"LOG_TOPIC_CHARACTER"`
	LogTopicStoryEvent   int   `env:"LOG_TOPIC_STORY_EVENT"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// IsAllowed reports whether the Telegram user may talk to the bot.
// An empty allowlist makes the bot public; admins always pass.
func (c *Config) IsAllowed(telegramID int64) bool {
	if c.IsAdmin(telegramID) {
		return true
	}
	if len(c.AllowedIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
