package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "rentzy/docs"

	"rentzy/internal/booking"
	"rentzy/internal/config"
	"rentzy/internal/db"
	"rentzy/internal/email"
	"rentzy/internal/logger"
	"rentzy/internal/promo"
	"rentzy/internal/server"
	"rentzy/internal/user"
	"rentzy/internal/vehicle"
	"rentzy/internal/wallet"
)

// @title Rentzy API
// @version 1.0
// @description API for a peer-to-peer vehicle rental marketplace.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting Rentzy application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	logger.Info("Email service initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emailService.Start(ctx)

	bookingService := booking.NewService(
		booking.NewRepository(database),
		vehicle.NewRepository(database),
		promo.NewRepository(database),
		wallet.NewRepository(database),
		user.NewRepository(database),
		emailService,
		cfg.Location(),
	)
	go expirePendingLoop(ctx, bookingService)

	srv := server.New(database, cfg, emailService)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

// expirePendingLoop releases reservation holds that were never paid.
func expirePendingLoop(ctx context.Context, svc booking.Service) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := svc.ExpirePending(ctx)
			if err != nil {
				logger.Errorf("Failed to expire pending bookings: %v", err)
				continue
			}
			if expired > 0 {
				logger.Infof("Expired %d pending bookings", expired)
			}
		}
	}
}
