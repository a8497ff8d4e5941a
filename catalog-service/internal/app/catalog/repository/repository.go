package repository

import (
	"context"
	"errors"

	"spectre/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this path already exists")
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateSKU     = errors.New("product with this sku already exists")
)

const metricsService = "catalog-service"

// CategoryRepository - хранилище дерева категорий (MongoDB, коллекция categories)
type CategoryRepository interface {
	// Create возвращает ErrCategoryExists при нарушении full_path_uniq или parent_slug_uniq
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	GetByFullPath(ctx context.Context, fullPath string) (*entity.Category, error)
	// GetAll возвращает категории, отсортированные по full_path
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// ProductRepository - хранилище товаров (MongoDB, коллекция products)
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpsertBySKU вставляет или обновляет товар по sku, created=true при вставке
	UpsertBySKU(ctx context.Context, product *entity.Product) (created bool, err error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, filter entity.ProductFilter, page, pageSize int) ([]entity.Product, int64, error)
	AddImage(ctx context.Context, id primitive.ObjectID, image entity.ProductImage) error

	// PullCategory убирает категорию из category_ids и all_category_ids всех товаров
	PullCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	ListCategoryAssignments(ctx context.Context) ([]entity.ProductCategories, error)
	SetAllCategoryIDs(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	// ReferencedCategoryIDs - все категории, встречающиеся в all_category_ids
	ReferencedCategoryIDs(ctx context.Context) ([]primitive.ObjectID, error)
}
