package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"spectre/pkg/logger"
	"spectre/quotes-service/internal/app/quotes/config"
	"spectre/quotes-service/internal/app/quotes/handler"
	catalogclient "spectre/quotes-service/internal/app/quotes/infrastructure/http"
	"spectre/quotes-service/internal/app/quotes/infrastructure/messaging"
	"spectre/quotes-service/internal/app/quotes/repository"
	"spectre/quotes-service/internal/app/quotes/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("quotes-service", cfg.Log.Level, cfg.Log.Format)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, "quotes-service", cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	// === MONGODB ===
	mongoClient, err := connectMongo(cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	// === KAFKA ===
	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	// === CATALOG ===
	catalogClient := catalogclient.NewCatalogClient(cfg.CatalogService.URL, cfg.CatalogService.Timeout)
	logger.Info().
		Str("url", cfg.CatalogService.URL).
		Msg("Initialized Catalog Service client")

	quoteRepo := repository.NewQuoteRepository(mongoClient.Database(cfg.MongoDB.Database))
	quoteService := service.NewQuoteService(quoteRepo, catalogClient, kafkaProducer)

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	router := handler.SetupRoutes(quoteHandler, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Quotes Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Quotes Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Quotes Service stopped gracefully")
}

// connectMongo: 10 попыток с паузой 3s, пока поднимается контейнер MongoDB
func connectMongo(uri string) (*mongo.Client, error) {
	var err error
	for i := 0; i < 10; i++ {
		var client *mongo.Client
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
			if err == nil {
				cancel()
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}
		cancel()

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
