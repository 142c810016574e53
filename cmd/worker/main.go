package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkxcel/config"
	"parkxcel/internal/database"
	"parkxcel/internal/jobs"
	"parkxcel/internal/jobs/tasks"
	"parkxcel/internal/logging"
	"parkxcel/internal/mail"
	"parkxcel/internal/services"
	"parkxcel/internal/storage/gormstore"
	"parkxcel/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.IsDevelopment())

	serviceName := cfg.OTelServiceName + "-worker"
	shutdownTelemetry, err := telemetry.Init(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	store := gormstore.New(db)
	reportService := services.NewReportService(store)

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFrom)
	} else {
		mailer = mail.NewConsole()
	}

	handlers := tasks.NewHandlers(reportService, store, mailer)

	redisAddr := parseRedisAddr(cfg.RedisURL)
	server := jobs.NewServer(redisAddr, 10, handlers)

	scheduler, err := jobs.NewScheduler(redisAddr)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to create scheduler")
	}

	go func() {
		if err := server.Start(); err != nil {
			logging.Logger().Fatal().Err(err).Msg("failed to start worker")
		}
	}()

	go func() {
		if err := scheduler.Start(); err != nil {
			logging.Logger().Fatal().Err(err).Msg("failed to start scheduler")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger().Info().Msg("shutting down worker")
	scheduler.Shutdown()
	server.Shutdown()
}

func parseRedisAddr(redisURL string) string {
	if len(redisURL) > 8 && redisURL[:8] == "redis://" {
		return redisURL[8:]
	}
	return redisURL
}
