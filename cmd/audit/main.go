package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"referral-rewards/internal/audit"
	"referral-rewards/internal/config"
	"referral-rewards/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}

	log := logger.New(cfg.LogLevel)

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping database", "error", err)
	}

	findings, err := audit.Run(ctx, db)
	if err != nil {
		log.Fatal("ledger audit failed", "error", err)
	}

	for _, f := range findings {
		fmt.Printf("%s\t%s\n", f.Check, f.Detail)
	}

	if len(findings) > 0 {
		log.Warn("ledger audit found violations", "count", len(findings))
		os.Exit(1)
	}

	log.Info("ledger audit passed")
}
