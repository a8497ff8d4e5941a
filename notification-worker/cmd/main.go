package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectre/notification-worker/internal/app/notifications/config"
	"spectre/notification-worker/internal/app/notifications/entity"
	"spectre/notification-worker/internal/app/notifications/handler"
	"spectre/notification-worker/internal/app/notifications/processor"
	"spectre/notification-worker/internal/app/notifications/repository"
	"spectre/notification-worker/internal/app/notifications/service"
	"spectre/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("notification-worker", cfg.Log.Level, cfg.Log.Format)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, "notification-worker", cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.AutoMigrate(&entity.Notification{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate notifications table")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	// === REDIS ===
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

	// === СЕРВИСЫ ===
	notificationRepo := repository.NewNotificationRepository(db)
	deduplicator := repository.NewEventDeduplicator(redisClient, cfg.Redis.DedupTTL)

	renderer, err := service.NewRenderer(cfg.Notify.BusinessName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load email templates")
	}
	sender := service.NewSMTPSender(service.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout,
	})
	notificationSvc := service.NewNotificationService(
		notificationRepo,
		deduplicator,
		sender,
		renderer,
		cfg.Notify.AdminEmail,
		cfg.Notify.MaxAttempts,
	)
	if cfg.Notify.AdminEmail == "" {
		logger.Warn().Msg("ADMIN_NOTIFY_EMAIL is not set, admin notifications are disabled")
	}

	// === KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		notificationSvc,
	)
	kafkaConsumer.Start(ctx)

	// === CRON ===
	cronScheduler := processor.NewCronScheduler(notificationSvc)
	if err := cronScheduler.Start(ctx, cfg.Notify.RetrySchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}

	// === HEALTH / METRICS ===
	mux := http.NewServeMux()
	handler.NewHealthCheckHandler(db, redisClient).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Starting health HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Health HTTP server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("retry_schedule", cfg.Notify.RetrySchedule).
		Msg("Notification worker is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down notification worker")

	cancel()
	kafkaConsumer.Stop()
	cronScheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Health HTTP server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info().Msg("Notification worker stopped")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			if err = pingDB(db); err == nil {
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func pingDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	var err error
	for i := 0; i < 10; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to Redis, retrying")
		time.Sleep(3 * time.Second)
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts: %w", err)
}
