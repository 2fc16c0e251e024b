package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sparklean/sparklean-api/cache"
	"github.com/sparklean/sparklean-api/config"
	"github.com/sparklean/sparklean-api/middleware"
	"github.com/sparklean/sparklean-api/models"
	"github.com/sparklean/sparklean-api/services"
	"github.com/sparklean/sparklean-api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		panic(err)
	}

	logger := config.NewLogger(cfg)
	logger.Info().Str("env", cfg.GoEnv).Msg("starting Sparklean API server")

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Booking{},
		&models.City{},
		&models.Service{},
		&models.Content{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Msg("database migration completed")

	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	staticCache := cache.New(redisClient, cfg.CacheTTL, logger)
	defer func() {
		if err := staticCache.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close cache")
		}
	}()

	st := store.New(db, staticCache, logger)
	identity := services.NewIdentityService(cfg)

	var images services.ImageService
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.NewS3Service(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize S3")
		}
		images = services.NewImageService(s3Service)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	router := newRouter(routerDeps{
		cfg:         cfg,
		logger:      logger,
		store:       st,
		identity:    identity,
		images:      images,
		sessionGate: middleware.EnsureSession(cfg),
		adminGate:   middleware.RequireRole(models.RoleAdmin),
		rateLimiter: rateLimiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}
