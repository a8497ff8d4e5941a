package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/repository"
	"spectre/catalog-service/internal/app/catalog/util"
	"spectre/pkg/logger"
	"spectre/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryPathResolver - get-or-create цепочки категорий при импорте
type CategoryPathResolver interface {
	CreateOrGetByPath(ctx context.Context, names []string) (primitive.ObjectID, []primitive.ObjectID, error)
}

// ProductService - запись товаров. Каждая запись, меняющая categoryIds,
// в том же запросе пересчитывает allCategoryIds.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	paths        CategoryPathResolver
	publisher    util.MessagePublisher
	images       util.ImageUploader
}

// NewProductService - publisher и images могут быть nil
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	paths CategoryPathResolver,
	publisher util.MessagePublisher,
	images util.ImageUploader,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		paths:        paths,
		publisher:    publisher,
		images:       images,
	}
}

func (s *ProductService) Create(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	categoryIDs, err := s.resolveCategoryIDs(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	closure, err := s.closureOf(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		SKU:              strings.TrimSpace(req.SKU),
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Brand:            strings.TrimSpace(req.Brand),
		RegularPrice:     req.RegularPrice,
		SalePrice:        req.SalePrice,
		SalePriceForSale: req.SalePriceForSale,
		Stock:            req.Stock,
		Visible:          boolOr(req.Visible, true),
		Published:        boolOr(req.Published, true),
		Images:           toImages(req.Images),
		CategoryIDs:      categoryIDs,
		AllCategoryIDs:   closure,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateSKU) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.CatalogProductsWritten.WithLabelValues("create").Inc()
	metrics.CatalogClosureSize.Observe(float64(len(closure)))

	s.publishEvent(ctx, entity.ProductEvent{
		EventType: entity.EventProductCreated,
		ProductID: product.ID.Hex(),
		SKU:       product.SKU,
		Name:      product.Name,
		NewPrice:  product.EffectivePrice(),
		Timestamp: time.Now().UTC(),
	})

	return product, nil
}

// Get - publicOnly скрывает невидимые и неопубликованные товары
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID, publicOnly bool) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if publicOnly && !product.IsPublic() {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Update - частичное обновление. Изменение цены публикует PRODUCT_UPDATED.
func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	oldPrice := copyFloat(product.EffectivePrice())

	if req.SKU != nil {
		product.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ShortDescription != nil {
		product.ShortDescription = *req.ShortDescription
	}
	if req.Brand != nil {
		product.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.RegularPrice != nil {
		product.RegularPrice = req.RegularPrice
	}
	if req.SalePrice != nil {
		product.SalePrice = req.SalePrice
	}
	if req.SalePriceForSale != nil {
		product.SalePriceForSale = req.SalePriceForSale
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Visible != nil {
		product.Visible = *req.Visible
	}
	if req.Published != nil {
		product.Published = *req.Published
	}
	if req.Images != nil {
		product.Images = toImages(*req.Images)
	}
	if req.CategoryIDs != nil {
		categoryIDs, err := s.resolveCategoryIDs(ctx, *req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		closure, err := s.closureOf(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}
		product.CategoryIDs = categoryIDs
		product.AllCategoryIDs = closure
		metrics.CatalogClosureSize.Observe(float64(len(closure)))
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrDuplicateSKU):
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	metrics.CatalogProductsWritten.WithLabelValues("update").Inc()

	newPrice := product.EffectivePrice()
	if !floatPtrEqual(oldPrice, newPrice) {
		s.publishEvent(ctx, entity.ProductEvent{
			EventType: entity.EventProductUpdated,
			ProductID: product.ID.Hex(),
			SKU:       product.SKU,
			Name:      product.Name,
			OldPrice:  oldPrice,
			NewPrice:  copyFloat(newPrice),
			Timestamp: time.Now().UTC(),
		})
	}

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	product, err := s.Get(ctx, id, false)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	metrics.CatalogProductsWritten.WithLabelValues("delete").Inc()

	s.publishEvent(ctx, entity.ProductEvent{
		EventType: entity.EventProductDeleted,
		ProductID: id.Hex(),
		SKU:       product.SKU,
		Name:      product.Name,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// AddImageFromURL перекладывает изображение в хранилище и добавляет его к товару.
// Без настроенного хранилища сохраняется исходный URL.
func (s *ProductService) AddImageFromURL(ctx context.Context, id primitive.ObjectID, url string) (*entity.Product, error) {
	if _, err := s.Get(ctx, id, false); err != nil {
		return nil, err
	}

	image := entity.ProductImage{URL: url}
	if s.images != nil {
		hosted, err := s.images.Rehost(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
		}
		image = *hosted
	}

	return s.appendImage(ctx, id, image)
}

// AddImageFile загружает файл из multipart формы
func (s *ProductService) AddImageFile(ctx context.Context, id primitive.ObjectID, filename, contentType string, body io.Reader, size int64) (*entity.Product, error) {
	if s.images == nil {
		return nil, ErrImageHostingDisabled
	}
	if _, err := s.Get(ctx, id, false); err != nil {
		return nil, err
	}

	hosted, err := s.images.Upload(ctx, filename, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
	}

	return s.appendImage(ctx, id, *hosted)
}

func (s *ProductService) appendImage(ctx context.Context, id primitive.ObjectID, image entity.ProductImage) (*entity.Product, error) {
	if err := s.productRepo.AddImage(ctx, id, image); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to add image: %w", err)
	}
	return s.Get(ctx, id, false)
}

// Import загружает строки каталога. Ошибка строки не прерывает пакет.
func (s *ProductService) Import(ctx context.Context, rows []entity.ImportProductRow) *entity.ImportResult {
	result := &entity.ImportResult{
		Total: len(rows),
		Rows:  make([]entity.ImportRowResult, 0, len(rows)),
	}

	for i := range rows {
		row := &rows[i]
		outcome := entity.ImportRowResult{Index: i, SKU: strings.TrimSpace(row.SKU)}

		product, created, err := s.importRow(ctx, row)
		switch {
		case err != nil:
			outcome.Status = entity.ImportStatusFailed
			outcome.Error = err.Error()
			result.Failed++
			logger.Warn().Err(err).Int("row", i).Str("sku", outcome.SKU).Msg("Import row failed")
		case created:
			outcome.Status = entity.ImportStatusCreated
			outcome.ProductID = product.ID.Hex()
			result.Created++
		default:
			outcome.Status = entity.ImportStatusUpdated
			outcome.ProductID = product.ID.Hex()
			result.Updated++
		}

		metrics.CatalogImportRows.WithLabelValues(outcome.Status).Inc()
		result.Rows = append(result.Rows, outcome)
	}

	logger.Info().
		Int("total", result.Total).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("Catalogue import finished")

	return result
}

func (s *ProductService) importRow(ctx context.Context, row *entity.ImportProductRow) (*entity.Product, bool, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return nil, false, errors.New("name is required")
	}

	categoryIDs := make([]primitive.ObjectID, 0, len(row.Categories))
	for _, chain := range row.Categories {
		leaf, _, err := s.paths.CreateOrGetByPath(ctx, chain)
		if err != nil {
			return nil, false, fmt.Errorf("category %q: %w", strings.Join(chain, " > "), err)
		}
		categoryIDs = appendUnique(categoryIDs, leaf)
	}

	closure, err := s.closureOf(ctx, categoryIDs)
	if err != nil {
		return nil, false, err
	}

	images := make([]entity.ProductImage, 0, len(row.Images))
	for _, url := range row.Images {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		images = append(images, s.rehostOrKeep(ctx, url))
	}

	product := &entity.Product{
		SKU:              strings.TrimSpace(row.SKU),
		Name:             name,
		Description:      row.Description,
		ShortDescription: row.ShortDescription,
		Brand:            strings.TrimSpace(row.Brand),
		RegularPrice:     row.RegularPrice,
		SalePrice:        row.SalePrice,
		SalePriceForSale: row.SalePriceForSale,
		Stock:            row.Stock,
		Visible:          boolOr(row.Visible, true),
		Published:        true,
		Images:           images,
		CategoryIDs:      categoryIDs,
		AllCategoryIDs:   closure,
	}

	if len(row.Raw) > 0 {
		raw, err := bson.Marshal(row.Raw)
		if err != nil {
			return nil, false, fmt.Errorf("invalid raw payload: %w", err)
		}
		product.Raw = raw
	}

	if product.SKU == "" {
		if err := s.productRepo.Create(ctx, product); err != nil {
			return nil, false, err
		}
		metrics.CatalogProductsWritten.WithLabelValues("import").Inc()
		return product, true, nil
	}

	created, err := s.productRepo.UpsertBySKU(ctx, product)
	if err != nil {
		return nil, false, err
	}
	metrics.CatalogProductsWritten.WithLabelValues("import").Inc()
	return product, created, nil
}

// rehostOrKeep - при ошибке хостинга остаётся исходный URL
func (s *ProductService) rehostOrKeep(ctx context.Context, url string) entity.ProductImage {
	if s.images == nil {
		return entity.ProductImage{URL: url}
	}
	hosted, err := s.images.Rehost(ctx, url)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("Image re-hosting failed, keeping original URL")
		return entity.ProductImage{URL: url}
	}
	return *hosted
}

// RecomputeAllClosures заново выводит allCategoryIds всех товаров из categoryIds.
// Категории читаются один раз; переписываются только изменившиеся товары.
func (s *ProductService) RecomputeAllClosures(ctx context.Context) (*entity.RecomputeResult, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	index := NewCategoryIndex(categories)

	rows, err := s.productRepo.ListCategoryAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	result := &entity.RecomputeResult{Scanned: len(rows)}
	for _, row := range rows {
		closure, err := BuildClosure(ctx, index, row.CategoryIDs)
		if err != nil {
			return result, err
		}
		if sameIDSet(closure, row.AllCategoryIDs) {
			continue
		}
		if err := s.productRepo.SetAllCategoryIDs(ctx, row.ID, closure); err != nil {
			return result, fmt.Errorf("failed to update product %s: %w", row.ID.Hex(), err)
		}
		result.Updated++
		metrics.CatalogClosuresRecomputed.Inc()
	}

	return result, nil
}

// resolveCategoryIDs разбирает hex ID, убирает повторы и проверяет существование
func (s *ProductService) resolveCategoryIDs(ctx context.Context, raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, value := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategoryID, value)
		}
		ids = appendUnique(ids, id)
	}

	for _, id := range ids {
		if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, id.Hex())
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
	}
	return ids, nil
}

func (s *ProductService) closureOf(ctx context.Context, categoryIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	closure, err := BuildClosure(ctx, NewRepositoryParentResolver(s.categoryRepo), categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build category closure: %w", err)
	}
	return closure, nil
}

func (s *ProductService) publishEvent(ctx context.Context, event entity.ProductEvent) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal product event")
		return
	}
	if err := s.publisher.PublishMessage(ctx, event.ProductID, data); err != nil {
		logger.Warn().Err(err).
			Str("event_type", event.EventType).
			Str("product_id", event.ProductID).
			Msg("Failed to publish product event")
	}
}

func toImages(in []entity.ProductImageRequest) []entity.ProductImage {
	out := make([]entity.ProductImage, 0, len(in))
	for _, img := range in {
		out = append(out, entity.ProductImage{URL: img.URL, PublicID: img.PublicID})
	}
	return out
}

func appendUnique(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
