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
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/petmily/service-reservation/internal/application"
	"github.com/petmily/service-reservation/internal/blobstore"
	"github.com/petmily/service-reservation/internal/config"
	reservationEvents "github.com/petmily/service-reservation/internal/events"
	"github.com/petmily/service-reservation/internal/handler"
	"github.com/petmily/service-reservation/internal/platform/auth"
	"github.com/petmily/service-reservation/internal/platform/database"
	"github.com/petmily/service-reservation/internal/platform/health"
	"github.com/petmily/service-reservation/internal/platform/kafka"
	"github.com/petmily/service-reservation/internal/platform/logger"
	"github.com/petmily/service-reservation/internal/platform/middleware"
	"github.com/petmily/service-reservation/internal/repository"
)

const serviceName = "service-reservation"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("blob_driver", cfg.BlobConfig.Driver),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:            cfg.DBConfig.Host,
		Port:            cfg.DBConfig.Port,
		User:            cfg.DBConfig.User,
		Password:        cfg.DBConfig.Password,
		DBName:          cfg.DBConfig.DBName,
		SSLMode:         cfg.DBConfig.SSLMode,
		MaxOpenConns:    cfg.DBConfig.MaxOpenConns,
		MaxIdleConns:    cfg.DBConfig.MaxIdleConns,
		ConnMaxLifetime: cfg.DBConfig.ConnMaxLifetime,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.MemberModel{}, &repository.PetModel{}, &repository.ReservationModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.Issuer,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Initialize photo store
	var blobs blobstore.Store
	switch cfg.BlobConfig.Driver {
	case config.BlobDriverS3:
		s3Store, err := blobstore.NewS3Store(ctx, cfg.BlobConfig.S3)
		if err != nil {
			log.Fatal("failed to create s3 blob store", zap.Error(err))
		}
		blobs = s3Store
	default:
		fsStore := blobstore.NewFSStore(
			afero.NewOsFs(),
			cfg.BlobConfig.LocalRoot,
			cfg.BlobConfig.S3.Prefix,
			cfg.PublicBaseURL+cfg.BlobConfig.PublicPath,
		)
		router.StaticFS(cfg.BlobConfig.PublicPath, fsStore.HTTPFileSystem())
		blobs = fsStore
	}

	// Initialize repositories
	memberDirectory := repository.NewGormMemberDirectory(db)
	petRepo := repository.NewGormPetRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)

	// Initialize application services
	petService := application.NewPetService(
		petRepo,
		memberDirectory,
		blobs,
		kafkaProducer,
		log,
		cfg.MaxUploadBytes,
	)
	reservationService := application.NewReservationService(
		reservationRepo,
		petRepo,
		memberDirectory,
		kafkaProducer,
		log,
	)

	// Initialize and start journal/review event consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "reservation-service"
	linkConsumer := reservationEvents.NewJournalReviewConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		reservationService,
		log,
	)
	defer func() { _ = linkConsumer.Close() }()

	go func() {
		log.Info("starting journal/review event consumer")
		if err := linkConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("journal/review event consumer error", zap.Error(err))
		}
	}()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	handler.NewReservationHandler(reservationService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPetHandler(petService, cfg.MaxUploadBytes).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminReservationHandler(reservationService).RegisterRoutes(&router.RouterGroup, jwtManager)

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

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
