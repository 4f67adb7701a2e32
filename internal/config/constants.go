package config

import "time"

const (
	// Request cooldowns
	CooldownRegular = 5 * time.Second
	CooldownAdmin   = 1 * time.Second

	// Dialog history window sent to the LLM
	HistoryWindow = 30

	// Dialog history cache
	DialogCacheTTL = 5 * time.Minute

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// LLM request timeout
	RequestTimeout = 90 * time.Second

	// Character limits
	MaxCharactersPerUser = 10
	MaxCharacterNameLen  = 48
	MaxBackstoryLen      = 4000

	// Story event thresholds
	StoryMilestoneFirst  = 10
	StoryMilestoneSecond = 50
	StoryMoodShiftUses   = 5
	StoryInactivityAge   = 48 * time.Hour
	StoryEventMinGap     = 12 * time.Hour

	// Inactivity sweep schedule
	StorySweepSpec = "@every 1h"

	// Rate limit (messages per minute per chat)
	RateLimitPerMinute = 10

	// Pagination
	CharactersPerPage = 5
	HistoryPageSize   = 20

	// Web import
	WebImportTimeout = 30 * time.Second
	WebImportMaxLen  = 3000

	// Default generation temperature
	DefaultTemperature = 1.0
)
