package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sitso-en/photovault/internal/application"
	"github.com/sitso-en/photovault/internal/auth"
	"github.com/sitso-en/photovault/internal/cache"
	"github.com/sitso-en/photovault/internal/config"
	"github.com/sitso-en/photovault/internal/database"
	"github.com/sitso-en/photovault/internal/events"
	"github.com/sitso-en/photovault/internal/handler"
	"github.com/sitso-en/photovault/internal/health"
	"github.com/sitso-en/photovault/internal/kafka"
	"github.com/sitso-en/photovault/internal/logger"
	"github.com/sitso-en/photovault/internal/middleware"
	"github.com/sitso-en/photovault/internal/repository"
	"github.com/sitso-en/photovault/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "photovault")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting photovault",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.PhotoModel{},
			&repository.AlbumModel{},
			&repository.AlbumPhotoModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Connect to Redis. A dead cache backend is tolerated at runtime
	// (every read degrades to a miss) but flagged loudly at startup.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = redisClient.Close() }()

	backend := cache.NewRedisBackend(redisClient)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := backend.Ping(pingCtx); err != nil {
		log.Warn("cache backend unreachable, serving without cache", zap.Error(err))
	}
	pingCancel()

	cacheStore := cache.NewStore(backend, log)
	invalidator := cache.NewInvalidator(cacheStore, cfg.CacheConfig.PageWindow)

	// Initialize object store
	validator := storage.NewValidator(
		cfg.UploadConfig.MaxSizeBytes,
		cfg.UploadConfig.AllowedMIMETypes,
		cfg.UploadConfig.AllowedExtensions,
	)
	objectStore, err := storage.NewClient(cfg.StorageConfig, validator, log)
	if err != nil {
		log.Fatal("failed to initialize object store", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	photoRepo := repository.NewGormPhotoRepository(db)
	albumRepo := repository.NewGormAlbumRepository(db)

	// Initialize application services
	authService := application.NewAuthService(userRepo, jwtManager, kafkaProducer, log)
	photoService := application.NewPhotoService(
		photoRepo,
		albumRepo,
		objectStore,
		cacheStore,
		invalidator,
		kafkaProducer,
		cfg.CacheConfig,
		log,
	)
	albumService := application.NewAlbumService(
		albumRepo,
		photoRepo,
		cacheStore,
		invalidator,
		cfg.CacheConfig,
		log,
	)

	// Start the user event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "photovault"
	userConsumer := events.NewUserEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		log,
		photoService,
		albumService,
	)
	defer func() { _ = userConsumer.Close() }()

	go func() {
		if err := userConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("user event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	photoHandler := handler.NewPhotoHandler(photoService)
	albumHandler := handler.NewAlbumHandler(albumService)
	adminHandler := handler.NewAdminHandler(photoService, albumService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "photovault")
	healthHandler.RegisterRoutes(router)

	// Register routes
	authHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	photoHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	albumHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down photovault...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("photovault stopped")
}
