package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/callsight-io/callsight/pkg/validator"

	"github.com/callsight-io/callsight/internal/adapter/handler"
	"github.com/callsight-io/callsight/internal/adapter/repository"
	"github.com/callsight-io/callsight/internal/infrastructure/cache"
	"github.com/callsight-io/callsight/internal/infrastructure/database"
	"github.com/callsight-io/callsight/internal/infrastructure/kafka"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
	"github.com/callsight-io/callsight/internal/usecase/aggregate"
	"github.com/callsight-io/callsight/internal/usecase/classify"
	"github.com/callsight-io/callsight/internal/usecase/escalation"
	"github.com/callsight-io/callsight/internal/usecase/ingest"
	"github.com/callsight-io/callsight/internal/usecase/insights"
	"github.com/callsight-io/callsight/pkg/config"
	"github.com/callsight-io/callsight/pkg/jwt"
)

// @title           CallSight API
// @version         1.0
// @description     Real-time call-center utterance analytics: ingestion, classification, aggregation, and agent-assist read APIs.

// @contact.name   API Support
// @contact.email  support@callsight.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	metrics.Init()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize cache store: Redis when enabled, in-memory fallback
	// for single-node development setups.
	var cacheStore cache.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cacheStore = cache.NewRedisStore(redisClient)
	} else {
		log.Println("⚠️  Redis disabled, using in-memory cache store")
		cacheStore = cache.NewMemoryStore()
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	utteranceRepo := repository.NewUtteranceRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	rollupRepo := repository.NewRollupRepository(db)

	// Initialize ingestion pipeline
	log.Println("🎙️  Initializing ingestion pipeline...")
	gate := classify.NewQualityGate(logger)
	classifier := classify.NewClassifier()
	ingestService := ingest.NewService(gate, classifier, utteranceRepo, logger)

	// Initialize aggregation pipeline
	log.Println("📊 Initializing aggregation pipeline...")
	locks := aggregate.NewKeyLocks()
	callAggregator := aggregate.NewCallAggregator(utteranceRepo, summaryRepo, locks, logger)
	rollupAggregator := aggregate.NewRollupAggregator(summaryRepo, rollupRepo, locks, logger)
	scheduler := aggregate.NewScheduler(
		utteranceRepo,
		callAggregator,
		rollupAggregator,
		cfg.Pipeline.QuietPeriod,
		cfg.Pipeline.AggregateInterval,
		logger,
	)
	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start aggregation scheduler: %v", err)
	}
	log.Println("✅ Aggregation scheduler started")

	// Initialize read layer
	log.Println("🔎 Initializing read layer...")
	scorer := escalation.NewScorer()
	readCache := cache.NewReadCache(cacheStore, cfg, logger)
	insightsService := insights.NewService(utteranceRepo, rollupRepo, scorer, readCache, logger)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	ingestHandler := handler.NewIngestHandler(ingestService, logger)
	insightsHandler := handler.NewInsightsHandler(insightsService, scheduler, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, ingestHandler, insightsHandler, jwtManager)
	router.Setup(e)

	// Start Kafka consumer for the utterance bus
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		log.Printf("📨 Starting Kafka consumer on topic %s...", cfg.Kafka.UtterancesTopic)
		consumer = kafka.NewConsumer(cfg, ingestService, logger)
		consumer.Start(context.Background())
	} else {
		log.Println("⚠️  Kafka disabled, HTTP ingest only")
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Printf("❌ Kafka consumer close error: %v", err)
		}
	}
	scheduler.Stop()

	log.Println("✅ Server stopped gracefully")
}
