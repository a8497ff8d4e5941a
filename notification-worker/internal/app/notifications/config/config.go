package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - настройки Notification Worker: журнал писем в PostgreSQL,
// дедупликация событий в Redis, Kafka consumer, SMTP и cron повторов
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
	Log      LogConfig
}

// ServerConfig - служебный HTTP (health, metrics)
type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	DedupTTL time.Duration // сколько помнить обработанный event_id
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// SMTPConfig - без SMTP_USERNAME письма уходят без AUTH
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type NotifyConfig struct {
	AdminEmail    string // пусто - письмо администратору не отправляется
	BusinessName  string
	MaxAttempts   int
	RetrySchedule string // cron, 5 полей
}

type LogConfig struct {
	Level        string
	Format       string
	LogstashAddr string
}

func Load() (*Config, error) {
	// .env необязателен, уже заданные переменные окружения не перезаписываются
	_ = godotenv.Load()

	dedupTTL, err := time.ParseDuration(getEnv("REDIS_DEDUP_TTL", "24h"))
	if err != nil || dedupTTL <= 0 {
		return nil, fmt.Errorf("invalid REDIS_DEDUP_TTL value %q", os.Getenv("REDIS_DEDUP_TTL"))
	}

	smtpTimeout, err := time.ParseDuration(getEnv("SMTP_TIMEOUT", "15s"))
	if err != nil || smtpTimeout <= 0 {
		return nil, fmt.Errorf("invalid SMTP_TIMEOUT value %q", os.Getenv("SMTP_TIMEOUT"))
	}

	maxAttempts := getEnvInt("NOTIFY_MAX_ATTEMPTS", 5)
	if maxAttempts < 1 {
		return nil, fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be at least 1, got %d", maxAttempts)
	}

	brokers := splitList(getEnv("KAFKA_BROKERS", "localhost:9092"))
	if len(brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is empty")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8083"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "notifications"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 2),
			DedupTTL: dedupTTL,
		},
		Kafka: KafkaConfig{
			Brokers:  brokers,
			Topic:    getEnv("KAFKA_TOPIC", "quote_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "notification-worker"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "soumissions@localhost"),
			Timeout:  smtpTimeout,
		},
		Notify: NotifyConfig{
			AdminEmail:    getEnv("ADMIN_NOTIFY_EMAIL", ""),
			BusinessName:  getEnv("BUSINESS_NAME", "Location d'événements"),
			MaxAttempts:   maxAttempts,
			RetrySchedule: getEnv("NOTIFY_RETRY_SCHEDULE", "*/15 * * * *"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "json"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN - строка подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
