package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/pkg/logger"
	"spectre/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const categoriesCollection = "categories"

type categoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository создает репозиторий и уникальные индексы:
// full_path_uniq и parent_slug_uniq (slug уникален среди соседей)
func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	collection := db.Collection(categoriesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "full_path", Value: 1}},
			Options: options.Index().SetName("full_path_uniq").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().SetName("parent_slug_uniq").SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// индексы могли быть созданы ранее с другими опциями
		logger.Warn().Err(err).Str("collection", categoriesCollection).Msg("Failed to create indexes")
	}

	return &categoryRepository{collection: collection}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpInsert, categoriesCollection).Observe(&err)

	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	if category.Ancestors == nil {
		category.Ancestors = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCategoryExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *categoryRepository) GetByFullPath(ctx context.Context, fullPath string) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"full_path": fullPath})
}

func (r *categoryRepository) findOne(ctx context.Context, filter bson.M) (*entity.Category, error) {
	var category entity.Category
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) (categories []entity.Category, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpFind, categoriesCollection).Observe(&err)

	opts := options.Find().SetSort(bson.D{{Key: "full_path", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories = []entity.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// Update перезаписывает вычисляемые поля узла; потомки не затрагиваются
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	category.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":       category.Name,
			"slug":       category.Slug,
			"parent_id":  category.ParentID,
			"full_path":  category.FullPath,
			"depth":      category.Depth,
			"ancestors":  category.Ancestors,
			"updated_at": category.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCategoryExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"parent_id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return count, nil
}
