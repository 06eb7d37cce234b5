package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"link-pago.backend/internal/config"
	"link-pago.backend/internal/infrastructure/gateway"
	"link-pago.backend/internal/infrastructure/identity"
	"link-pago.backend/internal/infrastructure/jobs"
	"link-pago.backend/internal/infrastructure/notifier"
	"link-pago.backend/internal/infrastructure/repositories"
	"link-pago.backend/internal/interfaces/http/handlers"
	"link-pago.backend/internal/interfaces/http/middleware"
	"link-pago.backend/internal/usecases"
	"link-pago.backend/pkg/jwt"
	"link-pago.backend/pkg/logger"
	"link-pago.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	sessionStore, err := newSessionStore(cfg.App.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	linkRepo := repositories.NewPaymentLinkRepository(db)
	txRepo := repositories.NewTransactionRepository(db)

	// External services
	webpayClient := gateway.NewWebpayClient(cfg.Webpay)
	googleProvider := identity.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret)
	emailNotifier := notifier.NewEmailNotifier(cfg.SMTP)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService, sessionStore, googleProvider, cfg.App.SessionTTL)
	linkUsecase := usecases.NewPaymentLinkUsecase(linkRepo, cfg.App.MaxLinkAmount)
	checkoutUsecase := usecases.NewCheckoutUsecase(linkRepo, txRepo, userRepo, webpayClient, emailNotifier, cfg.App.URL)

	// Handlers
	authHandler := handlers.NewAuthHandler(authUsecase, cfg.App.URL, int(cfg.App.SessionTTL.Seconds()))
	linkHandler := handlers.NewPaymentLinkHandler(linkUsecase, cfg.App.URL)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService, sessionStore)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expirySweep := jobs.NewLinkExpirySweep(linkRepo)
	go expirySweep.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.LoadHTMLGlob("web/templates/*.html")

	registerRoutes(r, routeDeps{
		authHandler:     authHandler,
		linkHandler:     linkHandler,
		checkoutHandler: checkoutHandler,
		authMiddleware:  authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		expirySweep.Stop()
		cancel()
	}()

	logger.Info(context.Background(), "Server starting", zap.String("port", cfg.Server.Port))
	return runServer(r, cfg.Server.Port)
}
