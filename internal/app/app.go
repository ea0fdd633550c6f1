// Package app assembles and runs the bot. The MTProto client factory is
// injected by the embedding binary; everything else is wired here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/config"
	"restrictedbot/internal/handler"
	"restrictedbot/internal/remote"
	"restrictedbot/internal/repository/postgres"
	"restrictedbot/internal/service"
)

// Run starts the bot and blocks until an interrupt arrives
func Run(factory remote.Factory) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Starting bot")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Info("Configuration loaded successfully")

	db, err := ConnectDatabase(cfg.DSN(), logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := RunMigrations(db, "file://migrations", logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed")

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	statsRepo := postgres.NewStatsRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)

	// Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	logger.Info("Telegram bot initialized")

	// Services
	sessions := remote.NewSessionStore(cfg.SessionDir)
	sender := handler.NewSender(bot)
	quotas := service.NewQuotaGate(cfg.Limits, cfg.AdminIDs)
	authService := service.NewAuthService(factory, sessions, userRepo, cfg.AdminIDs, logger)
	sessionService := service.NewSessionService(factory, sessions, logger)
	transferService := service.NewTransferService(
		sessionService, quotas, userRepo, statsRepo, sender, cfg.DownloadDir, logger)
	premiumService := service.NewPremiumService(
		paymentRepo, userRepo, statsRepo, sender, cfg.PaymentMethods, logger)

	h := handler.NewHandler(
		bot,
		authService,
		sessionService,
		transferService,
		premiumService,
		quotas,
		cfg.RequiredChannels,
		cfg.AdminIDs,
		logger,
	)
	h.RegisterHandlers()
	logger.Info("Handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweepDownloads(ctx, cfg.DownloadDir, logger)

	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")
	bot.Stop()
	cancel()
	logger.Info("Bot stopped gracefully")
	return nil
}

// ConnectDatabase connects to PostgreSQL with retries
func ConnectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// RunMigrations applies pending database migrations
func RunMigrations(db *sql.DB, sourceURL string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Info("No new migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations applied successfully")
	return nil
}

// sweepDownloads removes stale temp files the transfer path failed to clean
// up, for example after a crash mid-download.
func sweepDownloads(ctx context.Context, dir string, logger *zap.Logger) {
	const maxAge = time.Hour

	sweep := func() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("Failed to read download dir", zap.Error(err))
			return
		}
		cutoff := time.Now().Add(-maxAge)
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove stale file",
					zap.String("path", path),
					zap.Error(err))
			} else {
				logger.Info("Removed stale file", zap.String("path", path))
			}
		}
	}

	sweep()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Download sweeper stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
