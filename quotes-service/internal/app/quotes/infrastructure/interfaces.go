package infrastructure

import (
	"context"
	"errors"

	"spectre/quotes-service/internal/app/quotes/entity"
)

var ErrCatalogProductNotFound = errors.New("product not found in catalog")

type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// CatalogServiceClient - чтение опубликованных товаров для дополнения позиций заявки
type CatalogServiceClient interface {
	GetProduct(ctx context.Context, productID string) (*entity.CatalogProduct, error)
}
