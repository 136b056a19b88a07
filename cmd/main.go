package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"referral-rewards/internal/auth"
	"referral-rewards/internal/config"
	"referral-rewards/internal/database"
	"referral-rewards/internal/handlers"
	"referral-rewards/internal/jobs"
	"referral-rewards/internal/logger"
	"referral-rewards/internal/repository"
	"referral-rewards/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load configuration", "error", err)
	}

	log := logger.New(cfg.LogLevel)

	rewardPerPoint, err := cfg.RewardPerPoint()
	if err != nil {
		log.Fatal("invalid reward configuration", "error", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	repo := repository.NewRepository(database.GetDB())

	// Initialize services
	leaderboardService := services.NewLeaderboardService(repo, log, cfg.Leaderboard.RefreshInterval)
	referralService := services.NewReferralService(repo, log)
	referralService.OnAccepted(func(*services.AcceptResult) {
		leaderboardService.Invalidate()
	})
	userService := services.NewUserService(repo, leaderboardService, services.UserSettings{
		BaseURL:        cfg.App.BaseURL,
		RewardPerPoint: rewardPerPoint,
		QRSize:         cfg.App.QRSize,
		TopLimit:       cfg.Dashboard.TopLimit,
		RecentLimit:    cfg.Dashboard.RecentLimit,
	})

	// Start leaderboard refresh job
	leaderboardJob := jobs.NewLeaderboardJob(leaderboardService, log)
	if err := leaderboardJob.Start(cfg.Leaderboard.RefreshInterval); err != nil {
		log.Fatal("failed to start leaderboard job", "error", err)
	}

	allowedOrigins := []string{
		cfg.App.BaseURL,
		"http://localhost:3000", // Local development
		"http://127.0.0.1:3000",
	}
	// Add additional frontend URL from environment if provided
	if cfg.App.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.App.FrontendURL)
	}

	router := &handlers.Router{
		Referral:       handlers.NewReferralHandler(referralService),
		Leaderboard:    handlers.NewLeaderboardHandler(leaderboardService),
		User:           handlers.NewUserHandler(userService, services.NewSocialShareService(userService)),
		AllowedOrigins: allowedOrigins,
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(gin.Default()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting", "port", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	if err := leaderboardJob.Stop(); err != nil {
		log.Error("leaderboard job shutdown failed", "error", err)
	}

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
