package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/robfig/cron/v3"
	personabot "github.com/softmind/personabot"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/handler"
	"github.com/softmind/personabot/internal/httpapi"
	"github.com/softmind/personabot/internal/middleware"
	"github.com/softmind/personabot/internal/repository"
	"github.com/softmind/personabot/internal/service"
	"github.com/softmind/personabot/internal/telegram"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	migrationsFS, err := fs.Sub(personabot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	users := repository.NewUsers(pool)
	characters := repository.NewCharacters(pool)
	dialogs := repository.NewDialogs(pool)
	messages := repository.NewMessages(pool)
	stats := repository.NewStats(pool)

	// Services
	catalog, err := service.LoadArchetypes()
	if err != nil {
		slog.Error("failed to load archetype catalog", "error", err)
		os.Exit(1)
	}
	llm := service.NewLLMClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	userService := service.NewUserService(users)
	characterService := service.NewCharacterService(characters, users, catalog, llm, service.NewWebImporter())
	dialogService := service.NewDialogService(dialogs, messages, stats)
	techniqueService := service.NewTechniqueService(stats)
	storyService := service.NewStoryService(dialogs, stats)

	// Late-bound pointers for use in closures created before bot.New.
	var (
		h        *handler.Handler
		tgLogger *telegram.TelegramLogger
	)

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(),
			middleware.AccessControl(cfg),
			middleware.UserLoader(userService, cfg, func(telegramID int64, name, username string) {
				if tgLogger != nil {
					tgLogger.LogRegistration(telegramID, name, username)
				}
			}),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	tgLogger = telegram.NewTelegramLogger(b, cfg)

	h = handler.New(handler.Deps{
		Bot:              b,
		Cfg:              cfg,
		UserService:      userService,
		CharacterService: characterService,
		DialogService:    dialogService,
		TechniqueService: techniqueService,
		StoryService:     storyService,
		LLM:              llm,
		TgLogger:         tgLogger,
		BotUsername:      me.Username,
	})
	h.Register()

	// Plain text goes through the persona pipeline.
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil || len(update.Message.Text) == 0 || update.Message.Text[0] == '/' {
			return
		}
		h.HandleTextPrivate(ctx, b, update)
	})

	// Re-engagement events from the inactivity sweep are delivered by the
	// handler itself.
	storyService.SetNotifier(h)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(config.StorySweepSpec, func() {
		fired, err := storyService.SweepInactive(ctx)
		if err != nil {
			slog.Error("inactivity sweep", "error", err)
			return
		}
		if fired > 0 {
			slog.Info("inactivity sweep fired events", "count", fired)
		}
	}); err != nil {
		slog.Error("failed to schedule inactivity sweep", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	api := httpapi.NewServer(cfg, userService, characterService, dialogService)
	go func() {
		if err := api.ListenAndServe(); err != nil {
			slog.Error("http api stopped", "error", err)
		}
	}()

	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		slog.Error("http api shutdown", "error", err)
	}
	slog.Info("bot stopped gracefully")
}
