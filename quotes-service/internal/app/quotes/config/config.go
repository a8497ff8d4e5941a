package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server         ServerConfig
	MongoDB        MongoDBConfig
	Kafka          KafkaConfig
	JWT            JWTConfig
	CatalogService CatalogServiceConfig
	Log            LogConfig
}

type ServerConfig struct {
	Host string // по умолчанию 0.0.0.0
	Port string // по умолчанию 8082
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string // QUOTE_RECEIVED, QUOTE_SENT
}

type JWTConfig struct {
	Secret string // должен совпадать с Auth Service
}

// CatalogServiceConfig - публичный API каталога для дополнения позиций заявки
type CatalogServiceConfig struct {
	URL     string
	Timeout time.Duration
}

type LogConfig struct {
	Level        string
	Format       string
	LogstashAddr string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	catalogTimeout, err := time.ParseDuration(getEnv("CATALOG_SERVICE_TIMEOUT", "3s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_SERVICE_TIMEOUT value: %w", err)
	}
	if catalogTimeout <= 0 {
		return nil, fmt.Errorf("CATALOG_SERVICE_TIMEOUT must be positive, got %s", catalogTimeout)
	}

	brokers := splitList(getEnv("KAFKA_BROKERS", "localhost:9092"))
	if len(brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is empty")
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8082"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "quotes"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   getEnv("KAFKA_TOPIC", "quote_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		CatalogService: CatalogServiceConfig{
			URL:     getEnv("CATALOG_SERVICE_URL", "http://localhost:8081"),
			Timeout: catalogTimeout,
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "json"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
