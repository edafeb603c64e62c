package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/internal/api/handlers"
	"github.com/peterkyalo/stock-inventory-sub002/internal/application"
	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	mongoRepo "github.com/peterkyalo/stock-inventory-sub002/internal/infrastructure/mongodb"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/auth"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/kafka"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/locks"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/metrics"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/middleware"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/mongodb"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/outbox"
	outboxMongo "github.com/peterkyalo/stock-inventory-sub002/pkg/outbox/mongodb"
)

const serviceName = "stockflow-api"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting stockflow API")

	config := loadConfig()
	ctx := context.Background()

	// Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	cbClient := mongodb.NewCircuitBreakerClient(mongoClient, logger, m)
	db := mongoClient.Database()

	// Kafka producer
	kafkaProducer := kafka.NewProducer(config.Kafka)
	defer kafkaProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Repositories
	movementRepo := mongoRepo.NewMovementRepository(db)
	stockIndexRepo := mongoRepo.NewStockIndexRepository(db)
	productRepo := mongoRepo.NewProductRepository(db)
	locationRepo := mongoRepo.NewLocationRepository(db)
	customerRepo := mongoRepo.NewCustomerRepository(db)
	purchaseRepo := mongoRepo.NewPurchaseRepository(db)
	saleRepo := mongoRepo.NewSaleRepository(db)
	transferRepo := mongoRepo.NewTransferRepository(db)
	counterRepo := mongoRepo.NewCounterRepository(db)
	auditRepo := mongoRepo.NewAuditRepository(db)
	operatorRepo := mongoRepo.NewOperatorRepository(db)
	settingsRepo := mongoRepo.NewSettingsRepository(db)
	outboxRepo := outboxMongo.NewRepository(db)

	unitOfWork := mongoRepo.NewUnitOfWork(cbClient)
	productLocks := locks.NewKeyedLocker()

	// Inventory settings. A settings file, when provided, replaces the
	// stored settings document on boot.
	if path := getEnv("SETTINGS_FILE", ""); path != "" {
		seeded, err := domain.LoadInventorySettings(path)
		if err != nil {
			logger.WithError(err).Error("Failed to read settings file", "path", path)
			os.Exit(1)
		}
		if err := settingsRepo.Save(ctx, seeded); err != nil {
			logger.WithError(err).Error("Failed to store settings")
			os.Exit(1)
		}
		logger.Info("Inventory settings seeded from file", "path", path)
	}
	settings, err := settingsRepo.Load(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to load inventory settings")
		os.Exit(1)
	}
	logger.Info("Inventory settings loaded", "negativeStock", settings.NegativeStock)

	// Outbox publisher
	outboxPublisher := outbox.NewPublisher(
		outboxRepo,
		kafkaProducer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Application services
	ledgerService := application.NewLedgerService(
		movementRepo, stockIndexRepo, productRepo, locationRepo, transferRepo,
		counterRepo, auditRepo, outboxRepo, unitOfWork, productLocks, *settings, logger, m)
	purchaseService := application.NewPurchaseService(
		ledgerService, purchaseRepo, productRepo, counterRepo, auditRepo,
		unitOfWork, productLocks, *settings, logger, m)
	salesService := application.NewSalesService(
		ledgerService, saleRepo, customerRepo, productRepo, counterRepo, auditRepo,
		unitOfWork, productLocks, *settings, logger, m)
	authService := application.NewAuthService(operatorRepo, config.JWT, logger)

	// Seed the initial admin operator when the operators collection is empty
	if err := authService.EnsureAdminOperator(ctx, config.AdminUsername, config.AdminPassword); err != nil {
		logger.WithError(err).Error("Failed to seed admin operator")
		os.Exit(1)
	}

	// Router
	router := gin.New()
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return cbClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	handlers.NewAuthHandlers(authService, logger).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.Authentication(config.JWT))
	handlers.NewInventoryHandlers(ledgerService, logger).RegisterRoutes(protected)
	handlers.NewPurchaseHandlers(purchaseService, logger).RegisterRoutes(protected)
	handlers.NewSalesHandlers(salesService, logger).RegisterRoutes(protected)

	// Server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr    string
	MongoDB       *mongodb.Config
	Kafka         *kafka.Config
	JWT           auth.JWTConfig
	AdminUsername string
	AdminPassword string
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "stockflow"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		JWT: auth.JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			Issuer:            getEnv("JWT_ISSUER", "stockflow"),
			ExpirationMinutes: getEnvInt("JWT_EXPIRATION_MINUTES", 480),
		},
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
