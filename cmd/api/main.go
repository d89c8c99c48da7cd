package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pageza/recipehub/backend/config"
	"github.com/pageza/recipehub/backend/internal/adapter"
	"github.com/pageza/recipehub/backend/internal/api"
	"github.com/pageza/recipehub/backend/internal/client"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/metrics"
	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/server"
	"github.com/pageza/recipehub/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.WithField("environment", config.GetEnvironment()).Info("configuration loaded")

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open audit database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg, log)
		if err != nil {
			// submissions are not rate limited without redis
			log.WithError(err).Warn("redis unavailable, rate limiting disabled")
			redisClient = nil
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	external := client.NewExternalClient(client.Options{
		BaseURL:      cfg.ExternalAPIURL,
		Timeout:      cfg.RequestTimeout,
		MaxRetryTime: cfg.RetryMaxElapsed,
		Limiter:      rate.NewLimiter(rate.Limit(cfg.ExternalRateLimit), cfg.ExternalBurst),
		Logger:       log,
	})
	backend := client.NewBackendClient(client.Options{
		BaseURL:      cfg.BackendURL,
		Timeout:      cfg.RequestTimeout,
		MaxRetryTime: cfg.RetryMaxElapsed,
		Logger:       log,
	})

	recipeAdapter := adapter.New(adapter.HostRewrite{From: cfg.ImageRewriteFrom, To: cfg.ImageRewriteTo})
	auditService := service.NewAuditService(db)

	imageStore, err := newImageStore(cfg, backend)
	if err != nil {
		log.WithError(err).Fatal("failed to configure image store")
	}

	srv := server.NewServer(cfg, server.Deps{
		DB:    db,
		Redis: redisClient,
		Services: api.Services{
			Auth:        service.NewAuthService(backend, cfg.JWTSecret, cfg.TokenTTL, log),
			Aggregation: service.NewAggregationService(external, backend, recipeAdapter, m, log),
			Recipes:     service.NewRecipeService(backend, recipeAdapter, m, log),
			Moderation:  service.NewModerationService(backend, recipeAdapter, auditService, m, log, cfg.RequestTimeout),
			Images:      service.NewImageService(imageStore, log),
			Audit:       auditService,
			RateLimiter: middleware.NewSubmissionRateLimiter(redisClient, cfg.SubmitLimitPerHour, log),
		},
		Metrics:  m,
		Gatherer: reg,
		Log:      log,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.WithError(err).Fatal("server error")
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("received signal")
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}

func newImageStore(cfg *config.Config, backend *client.BackendClient) (service.ImageStore, error) {
	if cfg.ImageStore != "s3" {
		return service.NewBackendImageStore(backend), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s3cfg, err := config.NewS3Config(ctx, cfg.S3BucketName)
	if err != nil {
		return nil, err
	}
	return service.NewS3ImageStore(s3cfg.Client, s3cfg.BucketName), nil
}
