package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/idalmas/chatterbox-be/internal/api"
	"github.com/idalmas/chatterbox-be/internal/auth"
	"github.com/idalmas/chatterbox-be/internal/config"
	"github.com/idalmas/chatterbox-be/internal/database"
	"github.com/idalmas/chatterbox-be/internal/logger"
	"github.com/idalmas/chatterbox-be/internal/mail"
	"github.com/idalmas/chatterbox-be/internal/monitoring"
	"github.com/idalmas/chatterbox-be/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the mail capability: Resend when configured, otherwise the dev
	// outbox that serves OTP previews over the dev mail endpoint.
	var mailer mail.Mailer
	var outbox *mail.Outbox
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		if cfg.IsProduction() {
			log.Fatal().Msg("RESEND_API_KEY is required in production")
		}
		log.Warn().Msg("No mail provider configured - OTP emails go to the in-memory dev outbox")
		outbox = mail.NewOutbox(cfg.PublicBaseURL)
		mailer = outbox
	}

	// Set up services
	userService := services.NewUserService(db)
	deviceService := services.NewDeviceService(db)
	otpService := services.NewOTPService(db, mailer)
	eventService := services.NewEventService(db)
	authService := services.NewAuthService(userService, deviceService, otpService, eventService)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.IsProduction())

	// Set up and run the background maintenance loop
	maintenance, err := monitoring.NewMaintenance(otpService, deviceService, eventService, cfg.MaintenanceCron)
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.MaintenanceCron).Msg("Invalid maintenance schedule")
	}
	go maintenance.Run()

	// Set up router
	router := api.NewRouter(cfg, tokens, authService, userService, eventService, outbox)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	maintenance.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
