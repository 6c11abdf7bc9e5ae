package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/adapters/escrow"
	"github.com/neptunetech/storefront/internal/adapters/mail"
	"github.com/neptunetech/storefront/internal/adapters/storage"
	"github.com/neptunetech/storefront/internal/core/services"
	"github.com/neptunetech/storefront/internal/handlers"
	"github.com/neptunetech/storefront/internal/middleware"
	"github.com/neptunetech/storefront/internal/platform/config"
	"github.com/neptunetech/storefront/internal/repositories/database/pgsql"
	"github.com/neptunetech/storefront/internal/utils"
	"github.com/neptunetech/storefront/pkg/database"
	"github.com/spf13/pflag"
)

// @title Storefront API
// @version 1.0
// @description Storefront backend: catalog, image upload, escrow relay and account management.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token. Browsers can use the session cookie instead.
func main() {
	flags := pflag.NewFlagSet("storefront", pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfig(flags)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if cfg.SkipMigrations {
		logger.Info("Skipping database migrations.")
	} else {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			logger.Error("Failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	objectStorage, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize S3 storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.S3Bucket != "" {
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := objectStorage.CheckBucket(checkCtx); err != nil {
			logger.Warn("S3 bucket is not reachable, image uploads will fail", slog.String("error", err.Error()))
		}
		cancel()
	}

	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), services.Gateways{
		Mailer:  mail.NewSMTPMailer(cfg),
		Storage: objectStorage,
		Escrow:  escrow.NewHTTPClient(cfg, http.DefaultClient),
	})

	limiterStore, err := middleware.NewRateLimiterStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to initialize rate limiter store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	authLimiter, err := middleware.NewLimiter(limiterStore, "5-M")
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, authLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
