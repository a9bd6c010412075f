package main

import (
	"context"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-service/internal/config"
	"order-service/internal/controllers/http"
	"order-service/internal/infra"
	mmysql "order-service/internal/infra/mysql"
	"order-service/internal/infra/rabbitmq"
	mysqlrepo "order-service/internal/repository/mysql"
	"order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := mmysql.NewMySQL(cfg)
	if err != nil {
		logger.Fatal("db: connect", zap.Error(err))
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	repo := mysqlrepo.NewOrderRepository(db)

	timeout := cfg.Services.Timeout
	authClient := infra.NewAuthClient(cfg.Services.AuthURL, timeout)
	walletClient := infra.NewWalletClient(cfg.Services.WalletURL, timeout)
	summaryClient := infra.NewSummaryClient(cfg.Services.SummaryURL, timeout)

	publisher, err := rabbitmq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange, logger)
	if err != nil {
		logger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	s := services.NewOrderService(repo, walletClient, summaryClient, publisher, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Host + ":6379",
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	s.SetRedisClient(redisClient)

	handler := http.NewHandler(s, redisClient, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(http.RequestID())
	r.Use(http.Logger(logger))

	handler.RegisterRoutes(r, authClient)

	srv := &nethttp.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("starting order service", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			logger.Fatal("server run", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
