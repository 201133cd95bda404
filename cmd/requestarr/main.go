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

	"github.com/joho/godotenv"

	"github.com/requestarr/requestarr/internal/api"
	"github.com/requestarr/requestarr/internal/catalog/overseerr"
	"github.com/requestarr/requestarr/internal/completion/openai"
	"github.com/requestarr/requestarr/internal/config"
	"github.com/requestarr/requestarr/internal/database"
	"github.com/requestarr/requestarr/internal/history"
	"github.com/requestarr/requestarr/internal/logger"
	"github.com/requestarr/requestarr/internal/orchestrator"
	"github.com/requestarr/requestarr/internal/query"
	"github.com/requestarr/requestarr/internal/resolver"
	"github.com/requestarr/requestarr/internal/scheduler"
	"github.com/requestarr/requestarr/internal/transport/telegram"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Optional .env for local development; real deployments use env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	defer log.Close()

	log.Info().Str("version", version).Msg("Requestarr starting")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Requestarr exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	historyService := history.NewService(db.Conn(), log.Logger)

	overseerrClient := overseerr.NewClient(cfg.Overseerr, log.Logger)
	if overseerrClient.IsConfigured() {
		if err := overseerrClient.Test(ctx); err != nil {
			log.Warn().Err(err).Msg("Overseerr connectivity check failed")
		}
	} else {
		log.Warn().Msg("Overseerr is not configured; catalog operations will fail")
	}

	completionClient := openai.NewClient(cfg.OpenAI, log.Logger)
	if !completionClient.IsConfigured() {
		log.Warn().Msg("OpenAI is not configured; query extraction will fail")
	}

	extractor := query.NewExtractor(completionClient, log.Logger)
	catalogResolver := resolver.New(overseerrClient, log.Logger)
	core := orchestrator.NewService(extractor, catalogResolver, overseerrClient, historyService, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	pendingTTL := time.Duration(cfg.Pending.TTLMinutes) * time.Minute
	err = sched.RegisterTask(scheduler.TaskConfig{
		ID:          "pending-expiry",
		Name:        "Pending Action Expiry",
		Description: "Expires confirmation prompts that were never answered",
		Cron:        cfg.Pending.SweepCron,
		Func: func(ctx context.Context) error {
			core.ExpireStale(pendingTTL)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("register expiry task: %w", err)
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("Scheduler shutdown failed")
		}
	}()

	server := api.NewServer(version, api.Collaborators{
		Telegram:  cfg.Telegram.Token != "",
		Overseerr: overseerrClient.IsConfigured(),
		OpenAI:    completionClient.IsConfigured(),
	}, historyService, core, sched, log.Capture(), log.Logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	bot := telegram.New(cfg.Telegram, core, log.Logger)
	botErr := make(chan error, 1)
	if bot.IsConfigured() {
		go func() {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				botErr <- err
			}
		}()
	} else {
		log.Warn().Msg("Telegram is not configured; chat transport disabled")
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("API server: %w", err)
	case err := <-botErr:
		return fmt.Errorf("telegram transport: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API server shutdown failed")
	}

	log.Info().Msg("Requestarr stopped")
	return nil
}
