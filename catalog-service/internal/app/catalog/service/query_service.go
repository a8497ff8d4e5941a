package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/repository"
	"spectre/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize - фиксированный размер страницы витрины
const PageSize = 24

type QueryService struct {
	productRepo repository.ProductRepository
}

func NewQueryService(productRepo repository.ProductRepository) *QueryService {
	return &QueryService{productRepo: productRepo}
}

// Search возвращает страницу товаров. admin=true снимает фильтр visible/published.
func (s *QueryService) Search(ctx context.Context, params entity.ProductQueryParams, admin bool) (*entity.ProductListResponse, error) {
	filter, page := NormalizeQuery(params)
	filter.IncludeHidden = admin

	items, total, err := s.productRepo.Find(ctx, filter, page, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	if items == nil {
		items = []entity.Product{}
	}

	return &entity.ProductListResponse{
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: pagination.TotalPages(total, PageSize),
		Items:      items,
	}, nil
}

// NormalizeQuery разбирает сырые параметры. Непарсящиеся значения
// не дают условия. Страница по умолчанию 1, сверху ограничена pagination.MaxPage.
func NormalizeQuery(params entity.ProductQueryParams) (entity.ProductFilter, int) {
	filter := entity.ProductFilter{
		Query:   strings.TrimSpace(params.Q),
		Brand:   strings.TrimSpace(params.Brand),
		InStock: strings.TrimSpace(params.InStock) == "true",
	}

	if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(params.CategoryID)); err == nil {
		filter.CategoryID = &id
	}
	filter.MinPrice = parsePrice(params.MinPrice)
	filter.MaxPrice = parsePrice(params.MaxPrice)

	return filter, pagination.ParsePage(params.Page)
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
