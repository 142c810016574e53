package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkxcel/config"
	"parkxcel/internal/clock"
	"parkxcel/internal/database"
	"parkxcel/internal/handlers"
	"parkxcel/internal/jobs"
	"parkxcel/internal/logging"
	"parkxcel/internal/middleware"
	"parkxcel/internal/models"
	"parkxcel/internal/services"
	"parkxcel/internal/storage/gormstore"
	"parkxcel/internal/telemetry"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.IsDevelopment())

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
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

	if err := middleware.InitMetrics(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize metrics")
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to run database migrations")
	}

	if err := database.Seed(db, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to seed database")
	}

	redisAddr := parseRedisAddr(cfg.RedisURL)
	jobClient, err := jobs.NewClient(redisAddr)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to create job client")
	}
	defer jobClient.Close()

	store := gormstore.New(db)

	userService := services.NewUserService(store)
	authService := services.NewAuthService(store, cfg.JWTSecret, cfg.JWTExpiresIn)
	catalogService := services.NewCatalogService(store)
	allocationService := services.NewAllocationService(store, clock.New(), jobClient)
	reportService := services.NewReportService(store)

	healthHandler := handlers.NewHealthHandler(db, redisAddr)
	authHandler := handlers.NewAuthHandler(authService, userService)
	lotHandler := handlers.NewLotHandler(catalogService)
	parkingHandler := handlers.NewParkingHandler(catalogService, allocationService, reportService)
	reportHandler := handlers.NewReportHandler(reportService)

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(otelecho.Middleware(cfg.OTelServiceName, otelecho.WithSkipper(func(c echo.Context) bool {
		return c.Path() == "/api/health"
	})))
	e.Use(middleware.Metrics())
	e.HTTPErrorHandler = middleware.ErrorHandler

	if cfg.IsDevelopment() {
		e.Use(echomiddleware.Logger())
	}

	api := e.Group("/api")

	api.GET("/health", healthHandler.Check)

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	auth := api.Group("")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", authHandler.GetCurrentUser)
	auth.POST("/logout", authHandler.Logout)

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.POST("/lots", lotHandler.Create)
	admin.GET("/lots", lotHandler.List)
	admin.PUT("/lots/:id", lotHandler.Update)
	admin.DELETE("/lots/:id", lotHandler.Delete)
	admin.GET("/users", reportHandler.Users)
	admin.GET("/summary", reportHandler.Summary)
	admin.GET("/bookings", reportHandler.AllBookings)
	admin.GET("/revenue", reportHandler.Revenue)

	user := api.Group("/user")
	user.Use(middleware.JWTAuth(cfg.JWTSecret))
	user.Use(middleware.RequireRole(models.RoleUser))
	user.GET("/lots", parkingHandler.ViewLots)
	user.POST("/reservations", parkingHandler.Reserve)
	user.POST("/reservations/release", parkingHandler.Release)
	user.GET("/history", parkingHandler.History)
	user.GET("/summary", parkingHandler.Summary)
	user.GET("/history.csv", parkingHandler.ExportCSV)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logging.Logger().Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logging.Logger().Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("failed to shutdown server")
	}
}

func parseRedisAddr(redisURL string) string {
	if len(redisURL) > 8 && redisURL[:8] == "redis://" {
		return redisURL[8:]
	}
	return redisURL
}
