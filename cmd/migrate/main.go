package main

import (
	"referral-rewards/internal/config"
	"referral-rewards/internal/database"
	"referral-rewards/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}

	log := logger.New(cfg.LogLevel)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	log.Info("applying ledger migrations")
	if err := database.AutoMigrate(); err != nil {
		log.Fatal("failed to apply migrations", "error", err)
	}

	log.Info("migrations applied")
}
