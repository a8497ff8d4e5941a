package mocks

import (
	"context"
	"io"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockCategoryRepository мок для CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByFullPath(ctx context.Context, fullPath string) (*entity.Category, error) {
	args := m.Called(ctx, fullPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpsertBySKU(ctx context.Context, product *entity.Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Find(ctx context.Context, filter entity.ProductFilter, page, pageSize int) ([]entity.Product, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) AddImage(ctx context.Context, id primitive.ObjectID, image entity.ProductImage) error {
	args := m.Called(ctx, id, image)
	return args.Error(0)
}

func (m *MockProductRepository) PullCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ListCategoryAssignments(ctx context.Context) ([]entity.ProductCategories, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductCategories), args.Error(1)
}

func (m *MockProductRepository) SetAllCategoryIDs(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error {
	args := m.Called(ctx, id, ids)
	return args.Error(0)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ReferencedCategoryIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

// MockRedisCache мок для кеша категорий
type MockRedisCache struct {
	mock.Mock
}

func (m *MockRedisCache) SetCategories(ctx context.Context, items []entity.CategoryListItem, ttl time.Duration) error {
	args := m.Called(ctx, items, ttl)
	return args.Error(0)
}

func (m *MockRedisCache) GetCategories(ctx context.Context) ([]entity.CategoryListItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CategoryListItem), args.Error(1)
}

func (m *MockRedisCache) DeleteCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka; сохраняет отправленные сообщения
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockImageUploader мок для хранилища изображений
type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) Upload(ctx context.Context, name, contentType string, body io.Reader, size int64) (*entity.ProductImage, error) {
	args := m.Called(ctx, name, contentType, body, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductImage), args.Error(1)
}

func (m *MockImageUploader) Rehost(ctx context.Context, sourceURL string) (*entity.ProductImage, error) {
	args := m.Called(ctx, sourceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductImage), args.Error(1)
}
