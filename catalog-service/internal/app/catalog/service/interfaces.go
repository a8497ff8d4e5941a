package service

import (
	"context"
	"io"

	"spectre/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	Get(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	List(ctx context.Context) ([]entity.CategoryListItem, error)
	Update(ctx context.Context, id primitive.ObjectID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	Get(ctx context.Context, id primitive.ObjectID, publicOnly bool) (*entity.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, req *entity.UpdateProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddImageFromURL(ctx context.Context, id primitive.ObjectID, url string) (*entity.Product, error)
	AddImageFile(ctx context.Context, id primitive.ObjectID, filename, contentType string, body io.Reader, size int64) (*entity.Product, error)
	Import(ctx context.Context, rows []entity.ImportProductRow) *entity.ImportResult
}

type QueryServiceInterface interface {
	Search(ctx context.Context, params entity.ProductQueryParams, admin bool) (*entity.ProductListResponse, error)
}

var (
	_ CategoryServiceInterface = (*CategoryService)(nil)
	_ ProductServiceInterface  = (*ProductService)(nil)
	_ QueryServiceInterface    = (*QueryService)(nil)
	_ CategoryPathResolver     = (*CategoryService)(nil)
)
