package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"seatmap/api/routes"
	"seatmap/internal/notifications"
	"seatmap/internal/shared/config"
	"seatmap/internal/shared/database"
	"seatmap/internal/shared/middleware"
	"seatmap/pkg/logger"
	"seatmap/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	if envErr != nil {
		if cfg.IsProduction() || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}
	appLogger.Info("Starting seat map service", "version", Version, "build_time", BuildTime, "commit", GitCommit)

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize databases")
		os.Exit(1)
	}
	defer db.Close()

	publisher := newPublisher(cfg, appLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.WithError(err).Error("Failed to close seat event publisher")
		}
	}()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			HoldRequests:    cfg.RateLimit.HoldRequests,
			RenderRequests:  cfg.RateLimit.RenderRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			"window", cfg.RateLimit.WindowDuration.String(),
			"default_requests", cfg.RateLimit.DefaultRequests,
			"hold_requests", cfg.RateLimit.HoldRequests,
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	appRouter := routes.NewRouter(cfg, db, publisher, appLogger)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go appRouter.RunBackground(bgCtx)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        setupEngine(cfg, appRouter, rateLimiter, appLogger),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			"address", cfg.GetServerAddress(),
			"health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port),
			"api_base", cfg.GetAPIBasePath(),
			"hold_store", cfg.Holds.Store,
			"broker", cfg.Messaging.Broker,
			"redis", db.Redis != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Error("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}

	appLogger.Info("Server exited gracefully")
}

// newPublisher connects to the configured seat event broker. A broker that
// cannot be reached degrades to dropping events.
func newPublisher(cfg *config.Config, log *logger.Logger) notifications.Publisher {
	switch cfg.Messaging.Broker {
	case "kafka":
		kafkaCfg := notifications.DefaultKafkaPublisherConfig()
		kafkaCfg.Brokers = cfg.Messaging.KafkaBrokers
		kafkaCfg.Topic = cfg.Messaging.KafkaTopic
		p, err := notifications.NewKafkaPublisher(kafkaCfg, log)
		if err != nil {
			log.WithError(err).Error("Kafka unavailable, seat events will be dropped")
			return notifications.NewNoopPublisher()
		}
		log.Info("Publishing seat events to Kafka", "topic", kafkaCfg.Topic)
		return p
	case "rabbitmq":
		p, err := notifications.NewAMQPPublisher(cfg.Messaging.AMQPURL, cfg.Messaging.AMQPExchange)
		if err != nil {
			log.WithError(err).Error("RabbitMQ unavailable, seat events will be dropped")
			return notifications.NewNoopPublisher()
		}
		log.Info("Publishing seat events to RabbitMQ", "exchange", cfg.Messaging.AMQPExchange)
		return p
	default:
		return notifications.NewNoopPublisher()
	}
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, log *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RequestLogger(log), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}
