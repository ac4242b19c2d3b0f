package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lexibot/word-of-the-day-bot/internal/api"
	"github.com/lexibot/word-of-the-day-bot/internal/config"
	sqlrepo "github.com/lexibot/word-of-the-day-bot/internal/dal/sql"
	"github.com/lexibot/word-of-the-day-bot/internal/subscription"
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
	shutdownTimeout       = 15 * time.Second

	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeStoreLoad
	exitCodeServerStart
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

	conf, err := config.NewAPI(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // app logger is not configured yet
		return exitCodeConfigParse
	}
	log := mustLogger(conf.Dev)

	db, err := sql.Open("sqlite", conf.DBPath)
	if err != nil {
		log.ErrorContext(ctx, "failed to create database connection pool", "error", err)
		return exitCodeDBConnect
	}
	defer db.Close()

	repo := sqlrepo.NewRepository(ctx, db, log)
	store, err := subscription.NewStore(ctx, repo, 0, log)
	if err != nil {
		log.ErrorContext(ctx, "load subscriber store", "error", err)
		return exitCodeStoreLoad
	}
	go store.StartRefresh(ctx, mirrorRefreshInterval)

	router := api.NewRouter(ctx, &conf, api.Dependencies{
		Links:  repo,
		Store:  store,
		Words:  words.NewSource(repo, log),
		Logger: log,
	})

	log.InfoContext(ctx, "starting api server",
		"version", Version,
		"build_time", BuildTime,
		"address", conf.Server.Addr,
	)

	server := &http.Server{
		ReadHeaderTimeout: conf.Server.ReadHeaderTimeout,
		Addr:              conf.Server.Addr,
		Handler:           router,
	}

	go func() {
		<-ctx.Done()
		cCtx, cCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cCancel()

		if sErr := server.Shutdown(cCtx); sErr != nil {
			log.ErrorContext(cCtx, "failed to shutdown api server", "error", sErr)
		}
	}()

	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "failed to start api server", "error", err)
		return exitCodeServerStart
	}

	log.InfoContext(ctx, "api server is stopped")

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
