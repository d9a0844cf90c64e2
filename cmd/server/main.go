package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/config"
	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/cache"
	"github.com/qs-lzh/yamdb/internal/handler"
	"github.com/qs-lzh/yamdb/internal/mq"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/util"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := util.NewLogger(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		redisCache, err = cache.NewRedisCache(cfg.CacheURL)
		if err != nil {
			logger.Fatal("Failed to create redis cache", zap.Error(err))
		}
		if err := redisCache.Ping(); err != nil {
			logger.Fatal("Failed to reach redis", zap.Error(err))
		}
	} else {
		logger.Warn("CACHE_URL not set, title ratings are not cached")
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		mqConn, err = mq.NewMQConn(cfg.MQURL)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
	} else {
		logger.Warn("RABBIT_MQ_URL not set, confirmation mails are sent inline")
	}

	application, err := app.New(cfg, db, redisCache, mqConn, logger)
	if err != nil {
		logger.Fatal("Failed to create app", zap.Error(err))
	}
	defer application.Close()

	if err := application.Init(); err != nil {
		logger.Fatal("Failed to init app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", zap.Error(err))
	}
}
