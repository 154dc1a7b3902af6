package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-intake-bot/internal/application"
	"telegram-intake-bot/internal/config"
	"telegram-intake-bot/internal/domain/ports/repository"
	pg "telegram-intake-bot/internal/infra/db/postgres"
	httpapi "telegram-intake-bot/internal/infra/http"
	"telegram-intake-bot/internal/infra/i18n"
	"telegram-intake-bot/internal/infra/logging"
	"telegram-intake-bot/internal/infra/memory"
	"telegram-intake-bot/internal/infra/metrics"
	red "telegram-intake-bot/internal/infra/redis"
	tele "telegram-intake-bot/internal/infra/telegram"
	"telegram-intake-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logging, no sampling")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Lang)
	if err != nil {
		log.Fatal().Err(err).Str("lang", cfg.Lang).Msg("failed to load message catalog")
	}

	// ---- Session store and lock: Redis when configured, process memory otherwise ----
	var (
		states      repository.StateRepository
		locker      repository.SessionLocker
		rateLimiter *red.RateLimiter
	)
	if cfg.Redis.URL != "" {
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		states = red.NewStateRepo(client, cfg.Redis.TTL)
		locker = red.NewSessionLocker(client)
		rateLimiter = red.NewRateLimiter(client)
		log.Info().Msg("using redis session store")
	} else {
		states = memory.NewStateRepo()
		locker = memory.NewSessionLocker()
		log.Info().Msg("using in-memory session store")
	}

	// ---- Submission archive: Postgres when configured ----
	var apps repository.ApplicationRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		repo := pg.NewApplicationRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure schema")
		}
		apps = repo
		log.Info().Msg("using postgres submission archive")
	} else {
		apps = memory.NewApplicationRepo()
		log.Info().Msg("using in-memory submission archive")
	}

	// ---- Use cases and facade ----
	intakeUC := usecase.NewIntakeUseCase(states, locker, apps, tr, cfg.Bot.AdminChatID, log)
	moderationUC := usecase.NewModerationUseCase(apps, tr, cfg.Bot.AdminIDs, log)
	facade := application.NewBotFacade(intakeUC, moderationUC, log)

	// ---- Telegram ----
	bot, err := tele.NewBot(&cfg.Bot, facade, tr, rateLimiter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to telegram")
	}
	bot.StartWorkers(ctx, cfg.Bot.Workers)

	// ---- Webhook ingress ----
	srv := httpapi.NewServer(cfg, bot, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("webhook server failed")
		}
	}()

	if err := bot.RegisterWebhook(cfg.WebhookURL()); err != nil {
		log.Fatal().Err(err).Msg("failed to register webhook")
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")

	if err := bot.RemoveWebhook(); err != nil {
		log.Warn().Err(err).Msg("failed to remove webhook")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("webhook server shutdown failed")
	}
	bot.Stop()
	cancel()
}
