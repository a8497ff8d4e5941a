package mocks

import (
	"context"
	"time"

	"spectre/quotes-service/internal/app/quotes/entity"
	"spectre/quotes-service/internal/app/quotes/pricing"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockQuoteRepository мок для QuoteRepository
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quote), args.Error(1)
}

func (m *MockQuoteRepository) List(ctx context.Context, status entity.QuoteStatus, page, pageSize int) ([]entity.Quote, int64, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Quote), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuoteRepository) UpdateItems(ctx context.Context, id primitive.ObjectID, items []entity.QuoteItem) error {
	args := m.Called(ctx, id, items)
	return args.Error(0)
}

func (m *MockQuoteRepository) MarkSent(ctx context.Context, id primitive.ObjectID, seenAt time.Time, totals pricing.Totals, sentAt time.Time) error {
	args := m.Called(ctx, id, seenAt, totals, sentAt)
	return args.Error(0)
}

func (m *MockQuoteRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCatalogClient мок для CatalogServiceClient
type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) GetProduct(ctx context.Context, productID string) (*entity.CatalogProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CatalogProduct), args.Error(1)
}

// MockMessagePublisher мок для MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
