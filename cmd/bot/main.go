package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lexibot/word-of-the-day-bot/internal/config"
	sqlrepo "github.com/lexibot/word-of-the-day-bot/internal/dal/sql"
	"github.com/lexibot/word-of-the-day-bot/internal/schedule"
	"github.com/lexibot/word-of-the-day-bot/internal/subscription"
	"github.com/lexibot/word-of-the-day-bot/internal/telegram"
	"github.com/lexibot/word-of-the-day-bot/internal/words"
)

var (
	// Version is set via -ldflags at build time
	Version = "dev" //nolint:gochecknoglobals // must be global to be replaced at build time
	// BuildTime is set via -ldflags at build time
	BuildTime = "unknown" //nolint:gochecknoglobals // must be global to be replaced at build time
)

const (
	mirrorRefreshInterval = 1 * time.Minute

	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeStoreLoad
	exitCodeBotCreate
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	go func() {
		<-sigs
		cancel()
	}()
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	conf, err := config.GetBot(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // app logger is not configured yet
		return exitCodeConfigParse
	}

	log := mustLogger(conf.Dev)

	log.InfoContext(ctx, "starting bot",
		"version", Version,
		"build_time", BuildTime,
		"config", loggableConfig(conf),
	)
	defer log.InfoContext(ctx, "bot is stopped")

	db, err := sql.Open("sqlite", conf.DBPath)
	if err != nil {
		log.ErrorContext(ctx, "create database connection", "error", err)
		return exitCodeDBConnect
	}
	defer db.Close()

	repo := sqlrepo.NewRepository(ctx, db, log)
	if err := repo.Bootstrap(ctx); err != nil {
		log.ErrorContext(ctx, "bootstrap database", "error", err)
		return exitCodeDBConnect
	}

	store, err := subscription.NewStore(ctx, repo, conf.GroupCap, log)
	if err != nil {
		log.ErrorContext(ctx, "load subscriber store", "error", err)
		return exitCodeStoreLoad
	}
	go store.StartRefresh(ctx, mirrorRefreshInterval)

	wordSource := words.NewSource(repo, log)

	bot, err := telegram.NewBot(
		conf.TelegramToken,
		store,
		wordSource,
		repo,
		telegram.LinkSettings{BaseURL: conf.ConfigLink.BaseURL, TTL: conf.ConfigLink.TTL},
		conf.AdminIDs,
		log,
		telegram.Recover(log), telegram.LogErrors(log),
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to create bot", "error", err)
		return exitCodeBotCreate
	}

	dispatcher := schedule.NewDispatcher(bot, store, log,
		schedule.WithConcurrency(conf.Dispatch.Concurrency),
		schedule.WithSendTimeout(conf.Dispatch.SendTimeout),
	)
	scheduler := schedule.NewScheduler(store, wordSource, dispatcher, log)
	go scheduler.Run(ctx)

	go func() {
		<-ctx.Done()
		bot.Stop()
	}()

	log.InfoContext(ctx, "starting bot")
	bot.Start()

	return exitCodeOK
}

func mustLogger(dev bool) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	if dev {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

func loggableConfig(conf *config.Bot) map[string]any {
	return map[string]any{
		"dev":       conf.Dev,
		"db-path":   conf.DBPath,
		"group-cap": conf.GroupCap,
		"dispatch": map[string]any{
			"concurrency":  conf.Dispatch.Concurrency,
			"send-timeout": conf.Dispatch.SendTimeout.String(),
		},
		"config-link": map[string]any{
			"base-url": conf.ConfigLink.BaseURL,
			"ttl":      conf.ConfigLink.TTL.String(),
		},
	}
}
