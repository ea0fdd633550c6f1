package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"restrictedbot/internal/app"
	"restrictedbot/internal/config"
)

// Standalone migration runner for deployments where migrations are applied
// separately from the bot process.
func main() {
	source := flag.String("source", "file://migrations", "migration source URL")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := app.ConnectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := app.RunMigrations(db, *source, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Migrations up to date")
}
