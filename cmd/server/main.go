package main

import (
	"log"
	"net/http"
	"os"
	"time"

	_ "campusshare/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"campusshare/internal/auth"
	"campusshare/internal/cache"
	"campusshare/internal/config"
	"campusshare/internal/db"
	"campusshare/internal/handler"
	"campusshare/internal/model"
	"campusshare/internal/notify"
	"campusshare/internal/repository"
	"campusshare/internal/router"
	"campusshare/internal/service"
	"campusshare/internal/storage"
)

// @title CampusShare API
// @version 1.0
// @description Campus community exchange API with identity verification, item listings, and transaction lifecycle.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Notification{},
			&model.Transaction{},
			&model.Verification{},
			&model.ItemImage{},
			&model.Item{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.ItemImage{},
		&model.Verification{},
		&model.Transaction{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Image storage: Cloudinary when configured, local disk otherwise
	var store storage.ImageStore
	if cfg.CloudinaryURL != "" {
		store, err = storage.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("cloudinary init: %v", err)
		}
	} else {
		store = storage.NewLocalStore(cfg.UploadDir)
	}

	// Kafka event mirror, optional
	var producer *notify.Producer
	if cfg.KafkaBroker != "" {
		producer = notify.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		defer producer.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	itemRepo := repository.NewItemRepository(gormDB)
	verificationRepo := repository.NewVerificationRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	clock := service.Clock(time.Now)
	sink := notify.NewSink(notificationRepo, producer)
	scorer := service.NewTrustScorer(cfg.InstitutionEmailDomain, cfg.InstitutionIDPattern, cfg.ApprovalThreshold, nil)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	verificationService := service.NewVerificationService(userRepo, verificationRepo, store, scorer, clock)
	rewardService := service.NewRewardService(userRepo, cfg.SilverThreshold, cfg.GoldThreshold)
	itemService := service.NewItemService(itemRepo, userRepo, store, service.NewAutoApproveScreener(), clock, cfg.MonthlyItemQuota, cfg.DefaultMeetupLocation)
	transactionService := service.NewTransactionService(transactionRepo, itemRepo, userRepo, rewardService, store, sink, clock, cfg.DonorPoints, cfg.ReceiverPoints)
	userService := service.NewUserService(userRepo, itemRepo, transactionRepo, store, cacheClient)
	notificationService := service.NewNotificationService(notificationRepo, clock)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	verificationHandler := handler.NewVerificationHandler(verificationService)
	itemHandler := handler.NewItemHandler(itemService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	userHandler := handler.NewUserHandler(userService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Register routes
	router.Register(
		e,
		cfg,
		userRepo,
		authHandler,
		verificationHandler,
		itemHandler,
		transactionHandler,
		userHandler,
		notificationHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
