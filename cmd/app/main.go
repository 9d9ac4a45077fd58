package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/config"
	"FaceVerify/pkg/inference"
	"FaceVerify/pkg/log"
	"FaceVerify/pkg/oracle"
	"FaceVerify/pkg/redis"

	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Dimensions != face.EmbeddingDimensions {
		logger.Warnf("EMBEDDING_DIMENSIONS=%d ignored, the embedder produces %d", cfg.Dimensions, face.EmbeddingDimensions)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	inferenceClient := inference.New(cfg.Inference, logger)

	// Without REDIS_ADDRESS liveness sessions answer 503.
	var redisServer redis.IRedis
	if cfg.Redis.Address != "" {
		redisServer = redis.New(cfg.Redis)
	}

	var oracleClient oracle.IOracle
	if o, err := oracle.New(context.Background(), cfg.Oracle); err != nil {
		logger.Warnf("Liveness oracle disabled: %v", err)
	} else {
		oracleClient = o
		logger.Infof("Liveness oracle: %s/%s", o.Provider(), o.ModelName())
	}

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithEngineConfig(cfg),
		config.WithMiddleware(cfg.RateLimit),
		config.WithInference(inferenceClient),
		config.WithOracle(oracleClient),
		config.WithRedisServer(redisServer),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
