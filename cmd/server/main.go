package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/candleshop/pkg/auth"
	"github.com/example/candleshop/pkg/config"
	"github.com/example/candleshop/pkg/discovery"
	"github.com/example/candleshop/pkg/payment"
	"github.com/example/candleshop/pkg/repository"
	"github.com/example/candleshop/pkg/service"
	"github.com/example/candleshop/server"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting candleshop API",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// MongoDB
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx := context.Background()
	if err := mongoRepo.Ping(ctx); err != nil {
		logger.Fatal("MongoDB ping failed", zap.Error(err))
	}
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}
	logger.Info("MongoDB connected successfully")

	// Redis
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	// Services
	gateway := payment.NewClient(&cfg.Razorpay)
	authSvc := auth.NewService(mongoRepo.Users(), redisRepo, cfg.Session.TTL, logger)
	orderSvc := service.NewOrderService(mongoRepo.Orders(), mongoRepo.Tracking(), redisRepo, logger)
	paymentSvc := service.NewPaymentService(
		mongoRepo.Orders(), mongoRepo.Payments(), mongoRepo.Tracking(),
		redisRepo, gateway, &cfg.Razorpay, logger)
	adminSvc := service.NewAdminService(mongoRepo.Orders(), mongoRepo.Products())

	// Register instance in etcd so the edge proxy can find us
	registry, err := discovery.NewRegistry(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without registration", zap.Error(err))
		registry = nil
	}

	instance := &discovery.Instance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if registry != nil {
		if err := registry.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register instance", zap.Error(err))
		} else {
			logger.Info("Instance registered in etcd",
				zap.String("address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)))
		}
	}

	// HTTP server
	srv := server.NewServer(cfg, logger, authSvc, orderSvc, paymentSvc, adminSvc, mongoRepo.Products())
	srv.SetupRoutes()

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	logger.Info("Candleshop API started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	if registry != nil {
		if err := registry.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister instance", zap.Error(err))
		}
		registry.Close()
	}

	redisRepo.Close()

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoRepo.Close(closeCtx); err != nil {
		logger.Error("Failed to close MongoDB connection", zap.Error(err))
	}

	logger.Info("Candleshop API stopped")
}
