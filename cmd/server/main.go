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

	"member-lookup/config"
	"member-lookup/internal/api"
	"member-lookup/internal/broker"
	"member-lookup/internal/redisclient"
	"member-lookup/internal/service"
	"member-lookup/internal/store"
	"member-lookup/internal/util"
	"member-lookup/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting member lookup service")

	tp, err := util.InitTracer("member-lookup", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.DSN(), store.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	rateLimit := api.RateLimit{Limit: cfg.Search.RateLimitPerMinute, Window: time.Minute}
	if cfg.Search.RateLimitPerMinute > 0 {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, search rate limiting disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			rateLimit.Limiter = redisClient
			logger.Info("Redis connected")
		}
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var (
		audit       service.AuditPublisher
		auditWorker *worker.AuditWorker
	)
	if cfg.Search.AuditEnabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAudit)
		defer producer.Close()
		audit = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicAudit))

		auditConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAudit, cfg.Kafka.ConsumerGroup)
		auditWorker = worker.NewAuditWorker(auditConsumer)
		go func() {
			if err := auditWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Audit worker error", zap.Error(err))
			}
		}()
	}

	lookupService := service.NewLookupService(db, audit, service.Options{
		NameCandidateLimit:     cfg.Search.NameCandidateLimit,
		ResultLimit:            cfg.Search.ResultLimit,
		PromotionConcurrency:   cfg.Search.PromotionConcurrency,
		CouponContainsFallback: cfg.Search.CouponContainsFallback,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(lookupService, db, rateLimit)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if auditWorker != nil {
		auditWorker.Stop()
	}

	logger.Info("Server exited")
}
