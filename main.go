// File: /main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"convoy-api/config"
	"convoy-api/database"
	"convoy-api/jobs"
	"convoy-api/middleware"
	"convoy-api/repositories"
	"convoy-api/routes"
	"convoy-api/services"
	"convoy-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		utils.Logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.InitLogger(cfg.IsProduction(), cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	dates := utils.NewDateFormatter(loc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedData(db); err != nil {
		utils.Logger.Warn("failed to seed database", "error", err)
	}

	storage, err := services.NewMinioStorage(cfg)
	if err != nil {
		return err
	}
	if err := storage.EnsureBuckets(ctx, cfg.PhotoBucket, cfg.CoverBucket); err != nil {
		// uploads fail per request until the store is reachable
		utils.Logger.Warn("object storage not ready", "error", err)
	}

	// Submission guard: redis when configured so every instance shares it
	var guard services.SubmissionGuard = services.NewMemorySubmissionGuard()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			utils.Logger.Warn("redis unreachable, submissions will fail until it recovers", "error", err)
		}
		guard = services.NewRedisSubmissionGuard(client, 2*cfg.SubmissionTimeout)
	}

	email := services.NewEmailService(cfg)
	if !email.Enabled() {
		utils.Logger.Info("SMTP_HOST is empty, e-mail is disabled")
	}

	eventRepo := repositories.NewEventRepository(db, cfg.AtomicActivation)
	registrationRepo := repositories.NewRegistrationRepository(db)

	uploads := services.NewUploadService(storage)
	confirmations := services.NewConfirmationService(services.DefaultConfirmationTTL)
	go confirmations.Run(ctx, time.Minute)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, 5)
	go limiter.Run(ctx, 10*time.Minute)

	audit := jobs.NewActiveEventAuditJob(eventRepo, email, cfg.AuditInterval)
	audit.Start()
	defer audit.Stop()

	svc := routes.Services{
		Events:        services.NewEventService(eventRepo, uploads, confirmations, dates, cfg.CoverBucket),
		Registrations: services.NewRegistrationService(eventRepo, registrationRepo, uploads, guard, email, dates, services.RegistrationServiceConfig{
			PhotoBucket:       cfg.PhotoBucket,
			DefaultEventSlug:  cfg.DefaultEventSlug,
			SubmissionTimeout: cfg.SubmissionTimeout,
		}),
		Admin:         services.NewRegistrationAdminService(registrationRepo, eventRepo, email, dates),
		Confirmations: confirmations,
		Limiter:       limiter,
		Ping:          sqlDB.PingContext,
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(routes.SetupCORS(cfg.CORSOriginList()))
	router.Use(middleware.ErrorHandler())

	routes.SetupRoutes(router, cfg, svc)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.Info("starting Convoy API server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
