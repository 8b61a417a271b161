package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/makerhive/access-system/internal/api"
	"github.com/makerhive/access-system/internal/core/service"
	"github.com/makerhive/access-system/internal/infrastructure/crypto"
	mongodb "github.com/makerhive/access-system/internal/infrastructure/db/mongo"
	redisdb "github.com/makerhive/access-system/internal/infrastructure/db/redis"
	"github.com/makerhive/access-system/internal/pkg/config"
	"github.com/makerhive/access-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	userRepo := mongodb.NewUserRepository(db)
	deviceRepo := mongodb.NewDeviceRepository(db)
	toolRepo := mongodb.NewToolRepository(db)
	qualificationRepo := mongodb.NewQualificationRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"user_events":          userRepo.EnsureIndexes,
		"device_events":        deviceRepo.EnsureIndexes,
		"tool_events":          toolRepo.EnsureIndexes,
		"qualification_events": qualificationRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	cache := redisdb.NewProjectionCache(rdb, cfg.Redis.CacheTTL)
	publisher := service.NewEventPublisher(log)
	hasher := crypto.BcryptHasher{}

	// Listings are served from the projection cache; committed events
	// invalidate it through the publisher.
	cachedDevices := redisdb.NewCachedDeviceRepository(deviceRepo, cache, log)
	cachedTools := redisdb.NewCachedToolRepository(toolRepo, cache, log)
	cachedQualifications := redisdb.NewCachedQualificationRepository(qualificationRepo, cache, log)

	userService := service.NewUserService(userRepo, cachedQualifications, publisher, hasher, time.Now, uuid.NewString, log)
	deviceService := service.NewDeviceService(cachedDevices, cachedTools, publisher, time.Now, uuid.NewString, log)
	toolService := service.NewToolService(cachedTools, cachedQualifications, publisher, time.Now, uuid.NewString, log)
	qualificationService := service.NewQualificationService(cachedQualifications, publisher, time.Now, uuid.NewString, log)
	authService := service.NewAuthService(userRepo, deviceRepo, hasher, cfg.JWTSecret, cfg.TokenTTL)

	// Cascades and cache invalidation react to committed events.
	publisher.Register(service.NewDeviceCascadeHandler(deviceRepo, deviceService, log))
	publisher.Register(service.NewUserCascadeHandler(userRepo, userService, log))
	publisher.Register(service.NewCacheInvalidator(cache, log))

	e := api.NewRouter(api.Services{
		Users:          userService,
		Devices:        deviceService,
		Tools:          toolService,
		Qualifications: qualificationService,
		Auth:           authService,
	}, db, rdb, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
