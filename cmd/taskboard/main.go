package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"taskboard/internal/auth"
	"taskboard/internal/kanban"
	"taskboard/internal/reconcile"
	"taskboard/internal/server"
	"taskboard/internal/storage"
	"taskboard/internal/storage/postgres"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/util"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	addrFlag := flag.String("addr", util.EnvOrDefault("TASKBOARD_ADDR", ":8080"), "HTTP listen address")
	driverFlag := flag.String("driver", util.EnvOrDefault("TASKBOARD_DB_DRIVER", "sqlite"), "Database driver: sqlite or postgres")
	dbFlag := flag.String("db", util.EnvOrDefault("TASKBOARD_DB_PATH", "data/taskboard.db"), "Path to sqlite database file")
	dsnFlag := flag.String("dsn", util.EnvOrDefault("TASKBOARD_DATABASE_URL", ""), "PostgreSQL connection string")
	ttlFlag := flag.Duration("token-ttl", util.EnvDuration("TASKBOARD_TOKEN_TTL", 72*time.Hour), "Lifetime of issued tokens")
	corsFlag := flag.String("cors", util.EnvOrDefault("TASKBOARD_CORS_ORIGINS", "*"), "Comma separated allowed CORS origins")
	flag.Parse()

	logger := newLogger(util.EnvOrDefault("LOG_LEVEL", "info"), util.EnvOrDefault("LOG_FORMAT", "text"))
	slog.SetDefault(logger)
	logger.Info("task board backend starting", slog.String("driver", *driverFlag))

	store, err := openStore(*driverFlag, *dbFlag, *dsnFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	secret := os.Getenv("TASKBOARD_JWT_SECRET")
	if secret == "" {
		secret, err = auth.RandomSecret()
		if err != nil {
			logger.Error("unable to generate token secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Warn("TASKBOARD_JWT_SECRET is not set; tokens will not survive a restart")
	}
	tokens, err := auth.NewTokens(secret, *ttlFlag)
	if err != nil {
		logger.Error("invalid token settings", slog.String("error", err.Error()))
		os.Exit(1)
	}

	scheduler, err := startReconciler(store, logger)
	if err != nil {
		logger.Error("unable to schedule counter reconciliation", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(kanban.New(store, tokens, logger), logger, server.Options{
		CORSOrigins: util.SplitList(*corsFlag),
		Ping:        store.Ping,
	})

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}

	logger.Info("server stopped")
}

func openStore(driver, dbPath, dsn string, logger *slog.Logger) (*storage.Store, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return sqlite.Open(dbPath, logger)
	case "postgres", "postgresql":
		if dsn == "" {
			return nil, errors.New("TASKBOARD_DATABASE_URL is required for postgres")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return postgres.Open(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// startReconciler runs one counter repair pass and schedules the next ones.
// An explicitly empty schedule disables it.
func startReconciler(store *storage.Store, logger *slog.Logger) (*reconcile.Scheduler, error) {
	spec, ok := os.LookupEnv("COUNTER_RECONCILE_SCHEDULE")
	if !ok {
		spec = "@every 1h"
	}
	if strings.TrimSpace(spec) == "" {
		logger.Info("counter reconciliation disabled")
		return nil, nil
	}

	scheduler, err := reconcile.New(store, spec, logger)
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		logger.Warn("initial counter reconciliation failed", slog.String("error", err.Error()))
	}
	scheduler.Start()
	return scheduler, nil
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
