package handler

import (
	"github.com/go-telegram/bot"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/service"
	"github.com/softmind/personabot/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot              *bot.Bot
	cfg              *config.Config
	userService      *service.UserService
	characterService *service.CharacterService
	dialogService    *service.DialogService
	techniqueService *service.TechniqueService
	storyService     *service.StoryService
	llm              *service.LLMClient
	tgLogger         *telegram.TelegramLogger
	botUsername      string

	active *activeRequests
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot              *bot.Bot
	Cfg              *config.Config
	UserService      *service.UserService
	CharacterService *service.CharacterService
	DialogService    *service.DialogService
	TechniqueService *service.TechniqueService
	StoryService     *service.StoryService
	LLM              *service.LLMClient
	TgLogger         *telegram.TelegramLogger
	BotUsername      string
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:              deps.Bot,
		cfg:              deps.Cfg,
		userService:      deps.UserService,
		characterService: deps.CharacterService,
		dialogService:    deps.DialogService,
		techniqueService: deps.TechniqueService,
		storyService:     deps.StoryService,
		llm:              deps.LLM,
		tgLogger:         deps.TgLogger,
		botUsername:      deps.BotUsername,
		active:           newActiveRequests(),
	}
}
