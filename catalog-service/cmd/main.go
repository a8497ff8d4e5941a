package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectre/catalog-service/internal/app/catalog/config"
	"spectre/catalog-service/internal/app/catalog/handler"
	"spectre/catalog-service/internal/app/catalog/repository"
	"spectre/catalog-service/internal/app/catalog/service"
	"spectre/catalog-service/internal/app/catalog/util"
	"spectre/pkg/logger"
)

const serviceName = "catalog-service"

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level, cfg.Log.Format)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	// === ПОДКЛЮЧЕНИЕ К MONGODB ===
	mongoClient, err := util.ConnectMongoDB(cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer util.DisconnectMongoDB(mongoClient)
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// кеш необязателен: без Redis список категорий читается из MongoDB
	var cache util.RedisCache
	if cfg.Redis.Enabled {
		redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, category cache disabled")
		} else {
			defer redisClient.Close()
			cache = redisClient
			logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")
		}
	}

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	// === ХРАНИЛИЩЕ ИЗОБРАЖЕНИЙ ===
	var images util.ImageUploader
	imageStore, err := util.NewS3ImageStore(util.S3Config(cfg.S3))
	switch {
	case err != nil:
		logger.Fatal().Err(err).Msg("Invalid S3 configuration")
	case imageStore == nil:
		logger.Warn().Msg("S3 is not configured, product images keep their source URLs")
	default:
		images = imageStore
		logger.Info().Str("bucket", cfg.S3.Bucket).Msg("Initialized S3 image store")
	}

	// === СЛОИ ПРИЛОЖЕНИЯ ===
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	categoryService := service.NewCategoryService(categoryRepo, productRepo, cache, cfg.Catalog.SlugLocale)
	productService := service.NewProductService(productRepo, categoryRepo, categoryService, kafkaProducer, images)
	queryService := service.NewQueryService(productRepo)

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	router := handler.SetupRoutes(
		handler.NewCategoryHandler(categoryService),
		handler.NewProductHandler(productService, queryService),
		authMiddleware,
	)

	// === HTTP СЕРВЕР ===
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // импорт с перезаливкой изображений
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}
