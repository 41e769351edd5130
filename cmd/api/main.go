package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/api"
	"github.com/developerapptim/superkafe-multitenant-sub004/internal/application"
	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	mongoRepo "github.com/developerapptim/superkafe-multitenant-sub004/internal/infrastructure/mongodb"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/events"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/kafka"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/metrics"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/middleware"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/mongodb"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/outbox"
)

const serviceName = "pos-order-engine"

func main() {
	// Setup structured logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting pos-order-engine API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	// Initialize MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(config.Kafka)
	defer kafkaProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize event factory
	eventFactory := events.NewEventFactory("/" + serviceName)

	// Initialize repositories
	db := mongoClient.Database()
	orderRepo := mongoRepo.NewOrderRepository(db, eventFactory)
	historyRepo := mongoRepo.NewStockHistoryRepository(db)
	ingredientRepo := mongoRepo.NewIngredientRepository(db, historyRepo, m)
	shiftRepo := mongoRepo.NewShiftRepository(db, eventFactory)
	customerRepo := mongoRepo.NewCustomerRepository(db)
	catalogRepo := mongoRepo.NewCatalogRepository(db)
	txRunner := mongoRepo.NewTransactionRunner(mongoClient)

	// Start the outbox publisher. Orders and shifts share one outbox
	// collection, so a single publisher drains both.
	outboxPublisher := outbox.NewPublisher(
		orderRepo.GetOutboxRepository(),
		kafkaProducer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: config.OutboxInterval,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started", "interval", config.OutboxInterval)

	// Initialize application services
	costingService := application.NewCostingService(catalogRepo, ingredientRepo, logger)
	loyaltyService := application.NewLoyaltyService(customerRepo, config.Loyalty, logger, m)
	orderService := application.NewOrderService(
		orderRepo,
		ingredientRepo,
		shiftRepo,
		costingService,
		loyaltyService,
		catalogRepo,
		txRunner,
		config.StockPolicy,
		logger,
		m,
	)
	inventoryService := application.NewInventoryService(ingredientRepo, historyRepo, logger, m)
	shiftService := application.NewShiftService(shiftRepo, logger)

	// Setup Gin router with the standard middleware chain
	router := gin.New()
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health and metrics endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	handler := api.NewHandler(orderService, inventoryService, shiftService, loyaltyService, logger)
	handler.RegisterRoutes(router.Group("/api/v1"))

	// Start server
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
	logger.Info("Server started", "addr", config.ServerAddr, "stockPolicy", string(config.StockPolicy))

	// Wait for interrupt signal
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
	ServerAddr     string
	MongoDB        *mongodb.Config
	Kafka          *kafka.Config
	StockPolicy    domain.StockPolicy
	Loyalty        domain.LoyaltyConfig
	OutboxInterval time.Duration
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "superkafe"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ConsumerGroup: serviceName,
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
		},
		StockPolicy: domain.StockPolicy(getEnv("STOCK_POLICY", string(domain.StockPolicyPermissive))),
		Loyalty: domain.LoyaltyConfig{
			SilverThreshold: getEnvFloat("LOYALTY_SILVER_THRESHOLD", 500_000),
			GoldThreshold:   getEnvFloat("LOYALTY_GOLD_THRESHOLD", 2_000_000),
			PointRatio:      getEnvFloat("LOYALTY_POINT_RATIO", 10_000),
		},
		OutboxInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
