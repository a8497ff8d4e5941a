package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config - настройки Catalog Service из переменных окружения
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	S3      S3Config
	JWT     JWTConfig
	Catalog CatalogConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host string // по умолчанию 0.0.0.0
	Port string // по умолчанию 8081
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig - кеш списка категорий. REDIS_ENABLED=false отключает кеш.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
}

// S3Config - хранилище изображений. Без ключей изображения хранятся по исходным URL.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
	KeyPrefix string
}

type JWTConfig struct {
	Secret string // должен совпадать с Auth Service
}

type CatalogConfig struct {
	SlugLocale string // fr: "&" -> "et", en: "&" -> "and"
}

type LogConfig struct {
	Level        string
	Format       string // json или console
	LogstashAddr string
}

func Load() (*Config, error) {
	// .env необязателен, уже заданные переменные окружения не перезаписываются
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED value: %w", err)
	}

	locale := strings.ToLower(getEnv("SLUG_LOCALE", "fr"))
	if locale != "fr" && locale != "en" {
		return nil, fmt.Errorf("invalid SLUG_LOCALE value: %q", locale)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8081"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "catalog"),
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "product_events"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "catalog-images"),
			PublicURL: getEnv("S3_PUBLIC_URL", ""),
			KeyPrefix: getEnv("S3_KEY_PREFIX", "products"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Catalog: CatalogConfig{
			SlugLocale: locale,
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

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// splitList разбирает "a:9092, b:9092"
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
