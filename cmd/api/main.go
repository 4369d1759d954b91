package main

import (
	"context"
	"log"
	"time"

	"github.com/eidan66/wedding-album-sub000/config"
	"github.com/eidan66/wedding-album-sub000/internal/handler"
	"github.com/eidan66/wedding-album-sub000/internal/redis"
	"github.com/eidan66/wedding-album-sub000/internal/repository"
	"github.com/eidan66/wedding-album-sub000/internal/server"
	"github.com/eidan66/wedding-album-sub000/internal/services"
	"github.com/eidan66/wedding-album-sub000/internal/storage"
	"github.com/eidan66/wedding-album-sub000/pkg/database"
	"github.com/eidan66/wedding-album-sub000/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)
	defer func() {
		_ = l.Logger.Sync()
	}()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := database.ApplyRawMigrations(ctx, db, "migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redis.Initialize(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	cache := redis.NewCacheStore(redis.GetClient(), redis.DefaultCacheConfig())
	limiter := redis.NewRateLimiter(redis.GetClient(), redis.DefaultRateLimitConfig())

	store, err := storage.NewClient(ctx, storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PublicBase: cfg.S3PublicBase,
		PresignTTL: time.Duration(cfg.PresignExpiryMin) * time.Minute,
		PartURLTTL: time.Duration(cfg.PartURLExpiryMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	mediaRepo := repository.NewMediaRepository(db)
	mediaService := services.NewMediaService(mediaRepo, cache, l)
	presignService := services.NewPresignService(store, mediaService, cfg.UploadPrefix, cfg.MaxUploadBytes, l)
	accessService := services.NewAccessService(cfg.AccessCodeHash, cfg.SessionSecret, time.Duration(cfg.SessionExpiryMin)*time.Minute, limiter)

	janitor := services.NewJanitorService(store, cfg.UploadPrefix, time.Duration(cfg.JanitorMaxAgeMin)*time.Minute, l)
	go janitor.Run(ctx, time.Duration(cfg.JanitorIntervalMin)*time.Minute)

	srv := server.New(cfg, l, db)
	srv.SetupRoutes(&server.Handlers{
		Upload: handler.NewUploadHandler(presignService),
		Media:  handler.NewMediaHandler(mediaService),
		Access: handler.NewAccessHandler(accessService),
	})

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
