package handler

import (
	"context"
	"io"
	"testing"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context) ([]entity.CategoryListItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CategoryListItem), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id primitive.ObjectID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id primitive.ObjectID, publicOnly bool) (*entity.Product, error) {
	args := m.Called(ctx, id, publicOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id primitive.ObjectID, req *entity.UpdateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) AddImageFromURL(ctx context.Context, id primitive.ObjectID, url string) (*entity.Product, error) {
	args := m.Called(ctx, id, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) AddImageFile(ctx context.Context, id primitive.ObjectID, filename, contentType string, body io.Reader, size int64) (*entity.Product, error) {
	args := m.Called(ctx, id, filename, contentType, body, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Import(ctx context.Context, rows []entity.ImportProductRow) *entity.ImportResult {
	args := m.Called(ctx, rows)
	return args.Get(0).(*entity.ImportResult)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Search(ctx context.Context, params entity.ProductQueryParams, admin bool) (*entity.ProductListResponse, error) {
	args := m.Called(ctx, params, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductListResponse), args.Error(1)
}

type testServer struct {
	router     *gin.Engine
	categories *MockCategoryService
	products   *MockProductService
	queries    *MockQueryService
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)

	s := &testServer{
		categories: new(MockCategoryService),
		products:   new(MockProductService),
		queries:    new(MockQueryService),
	}
	s.router = SetupRoutes(
		NewCategoryHandler(s.categories),
		NewProductHandler(s.products, s.queries),
		NewAuthMiddleware(testSecret),
	)
	return s
}

func signToken(t *testing.T, secret, role string, ttl time.Duration) string {
	t.Helper()

	claims := JWTClaims{
		UserID: "user-1",
		Email:  "staff@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
