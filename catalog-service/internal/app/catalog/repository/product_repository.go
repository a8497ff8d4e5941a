package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/pkg/logger"
	"spectre/pkg/metrics"
	"spectre/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает репозиторий товаров.
// sku уникален только среди документов, где он задан (partial index).
func NewProductRepository(db *mongo.Database) ProductRepository {
	collection := db.Collection(productsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().
				SetName("sku_uniq").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"sku": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "all_category_ids", Value: 1}},
			Options: options.Index().SetName("all_category_ids_idx"),
		},
		{
			Keys: bson.D{
				{Key: "visible", Value: 1},
				{Key: "published", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("storefront_listing_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", productsCollection).Msg("Failed to create indexes")
	}

	return &productRepository{collection: collection}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpInsert, productsCollection).Observe(&err)

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	normalizeSlices(product)

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"sku": sku})
}

func (r *productRepository) findOne(ctx context.Context, filter bson.M) (*entity.Product, error) {
	var product entity.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// typedFields - поля, которые пишет сервис; raw и created_at сюда не входят
func typedFields(p *entity.Product) (bson.M, bson.M) {
	set := bson.M{
		"name":              p.Name,
		"description":       p.Description,
		"short_description": p.ShortDescription,
		"stock":             p.Stock,
		"visible":           p.Visible,
		"published":         p.Published,
		"images":            p.Images,
		"category_ids":      p.CategoryIDs,
		"all_category_ids":  p.AllCategoryIDs,
		"updated_at":        p.UpdatedAt,
	}
	unset := bson.M{}

	optionalString := func(key, value string) {
		if value != "" {
			set[key] = value
		} else {
			unset[key] = ""
		}
	}
	optionalNumber := func(key string, value *float64) {
		if value != nil {
			set[key] = *value
		} else {
			unset[key] = ""
		}
	}

	optionalString("sku", p.SKU)
	optionalString("brand", p.Brand)
	optionalNumber("regular_price", p.RegularPrice)
	optionalNumber("sale_price", p.SalePrice)
	optionalNumber("sale_price_for_sale", p.SalePriceForSale)

	return set, unset
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpUpdate, productsCollection).Observe(&err)

	product.UpdatedAt = time.Now().UTC()
	normalizeSlices(product)

	set, unset := typedFields(product)
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) UpsertBySKU(ctx context.Context, product *entity.Product) (bool, error) {
	if product.SKU == "" {
		return false, fmt.Errorf("upsert requires sku")
	}

	now := time.Now().UTC()
	product.UpdatedAt = now
	normalizeSlices(product)

	set, unset := typedFields(product)
	if product.Raw != nil {
		set["raw"] = product.Raw
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"sku": product.SKU}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert product %s: %w", product.SKU, err)
	}

	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		product.ID = oid
		product.CreatedAt = now
		return true, nil
	}

	existing, err := r.GetBySKU(ctx, product.SKU)
	if err != nil {
		return false, err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	return false, nil
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Find возвращает страницу товаров и общее число совпадений
func (r *productRepository) Find(ctx context.Context, filter entity.ProductFilter, page, pageSize int) (items []entity.Product, total int64, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpFind, productsCollection).Observe(&err)

	query := buildProductFilter(filter)

	total, err = r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	skip, ok := pagination.Skip(page, pageSize, total)
	if !ok {
		return []entity.Product{}, total, nil
	}

	opts := options.Find().
		SetSort(productSort).
		SetSkip(skip).
		SetLimit(int64(pageSize)).
		SetProjection(bson.M{"raw": 0})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	items = []entity.Product{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	return items, total, nil
}

func (r *productRepository) AddImage(ctx context.Context, id primitive.ObjectID, image entity.ProductImage) error {
	update := bson.M{
		"$push": bson.M{"images": image},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to add image: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) PullCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"category_ids": categoryID},
		bson.M{"all_category_ids": categoryID},
	}}
	update := bson.M{
		"$pull": bson.M{"category_ids": categoryID, "all_category_ids": categoryID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to pull category from products: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *productRepository) ListCategoryAssignments(ctx context.Context) ([]entity.ProductCategories, error) {
	opts := options.Find().SetProjection(bson.M{"category_ids": 1, "all_category_ids": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list product categories: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []entity.ProductCategories
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode product categories: %w", err)
	}
	return rows, nil
}

func (r *productRepository) SetAllCategoryIDs(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	update := bson.M{"$set": bson.M{"all_category_ids": ids, "updated_at": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set closure: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"all_category_ids": categoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count products by category: %w", err)
	}
	return count, nil
}

func (r *productRepository) ReferencedCategoryIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "all_category_ids", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to collect referenced categories: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

// normalizeSlices - пустые массивы вместо null, чтобы $pull и фильтры работали единообразно
func normalizeSlices(p *entity.Product) {
	if p.Images == nil {
		p.Images = []entity.ProductImage{}
	}
	if p.CategoryIDs == nil {
		p.CategoryIDs = []primitive.ObjectID{}
	}
	if p.AllCategoryIDs == nil {
		p.AllCategoryIDs = []primitive.ObjectID{}
	}
}
