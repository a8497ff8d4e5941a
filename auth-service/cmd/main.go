package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"spectre/auth-service/internal/app/auth/config"
	"spectre/auth-service/internal/app/auth/handler"
	"spectre/auth-service/internal/app/auth/repository"
	"spectre/auth-service/internal/app/auth/service"
	"spectre/auth-service/internal/app/auth/util"
	"spectre/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("auth-service", cfg.Log.Level, cfg.Log.Format)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, "auth-service", cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	// === POSTGRESQL ===
	db, err := connectDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = repository.EnsureSchema(schemaCtx, db)
	schemaCancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare users table")
	}

	// === REDIS ===
	redisClient, err := connectRedis(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	jwtManager := util.NewJWTManager(
		cfg.JWT.SecretKey,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
	)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRedisTokenRepository(redisClient)

	authService := service.NewAuthService(userRepo, tokenRepo, jwtManager)
	userService := service.NewUserService(userRepo, tokenRepo)

	// === BOOTSTRAP ADMIN ===
	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to bootstrap admin user")
		}
		if created {
			logger.Info().Str("email", cfg.Admin.Email).Msg("Created initial admin user")
		}
	}

	authMiddleware := handler.NewAuthMiddleware(authService)
	router := handler.SetupRoutes(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		authMiddleware,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Auth Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Auth Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Auth Service stopped gracefully")
}

// connectDB: пул pgx, 10 попыток с паузой 3s
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to PostgreSQL, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	var err error
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return client, nil
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to Redis, retrying...")
		time.Sleep(3 * time.Second)
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
