package util

import (
	"context"
	"io"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"
)

// RedisCache - кеш списка категорий
type RedisCache interface {
	SetCategories(ctx context.Context, items []entity.CategoryListItem, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.CategoryListItem, error)
	DeleteCategories(ctx context.Context) error
}

// MessagePublisher - отправка сообщений в Kafka
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}

// ImageUploader - хостинг изображений товаров
type ImageUploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader, size int64) (*entity.ProductImage, error)
	Rehost(ctx context.Context, sourceURL string) (*entity.ProductImage, error)
}

var (
	_ RedisCache       = (*RedisClient)(nil)
	_ MessagePublisher = (*KafkaProducer)(nil)
	_ ImageUploader    = (*S3ImageStore)(nil)
)
