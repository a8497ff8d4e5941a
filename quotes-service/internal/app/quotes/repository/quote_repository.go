package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spectre/pkg/logger"
	"spectre/pkg/metrics"
	"spectre/pkg/pagination"
	"spectre/quotes-service/internal/app/quotes/entity"
	"spectre/quotes-service/internal/app/quotes/pricing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const quotesCollection = "quotes"

type quoteRepository struct {
	collection *mongo.Collection
}

// NewQuoteRepository создает репозиторий и индекс для списка по статусу
func NewQuoteRepository(db *mongo.Database) QuoteRepository {
	collection := db.Collection(quotesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("status_created_idx"),
	}
	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		logger.Warn().Err(err).Str("collection", quotesCollection).Msg("Failed to create indexes")
	}

	return &quoteRepository{collection: collection}
}

func (r *quoteRepository) Create(ctx context.Context, quote *entity.Quote) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpInsert, quotesCollection).Observe(&err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	quote.CreatedAt = now
	quote.UpdatedAt = now
	if quote.Items == nil {
		quote.Items = []entity.QuoteItem{}
	}

	result, err := r.collection.InsertOne(ctx, quote)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		quote.ID = oid
	}
	return nil
}

func (r *quoteRepository) GetByID(ctx context.Context, id primitive.ObjectID) (_ *entity.Quote, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpFind, quotesCollection).Observe(&err)

	var quote entity.Quote
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quote); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, status entity.QuoteStatus, page, pageSize int) (_ []entity.Quote, _ int64, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpFind, quotesCollection).Observe(&err)

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count quotes: %w", err)
	}

	skip, ok := pagination.Skip(page, pageSize, total)
	if !ok {
		return []entity.Quote{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer cursor.Close(ctx)

	quotes := make([]entity.Quote, 0, pageSize)
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, 0, fmt.Errorf("failed to decode quotes: %w", err)
	}
	return quotes, total, nil
}

func (r *quoteRepository) UpdateItems(ctx context.Context, id primitive.ObjectID, items []entity.QuoteItem) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpUpdate, quotesCollection).Observe(&err)

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"items": items, "updated_at": time.Now().UTC().Truncate(time.Millisecond)}},
	)
	if err != nil {
		return fmt.Errorf("failed to update quote items: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

func (r *quoteRepository) MarkSent(ctx context.Context, id primitive.ObjectID, seenAt time.Time, totals pricing.Totals, sentAt time.Time) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpUpdate, quotesCollection).Observe(&err)

	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":        id,
			"status":     entity.QuoteStatusReceived,
			"updated_at": seenAt.UTC().Truncate(time.Millisecond),
		},
		bson.M{"$set": bson.M{
			"status":     entity.QuoteStatusSent,
			"totals":     totals,
			"sent_at":    sentAt,
			"updated_at": sentAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark quote as sent: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	// не совпало условие: заявки нет, она уже отправлена или позиции менялись после чтения
	var current struct {
		Status entity.QuoteStatus `bson:"status"`
	}
	err = r.collection.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"status": 1})).Decode(&current)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("failed to check quote: %w", err)
	}
	if current.Status == entity.QuoteStatusSent {
		return ErrQuoteAlreadySent
	}
	return ErrQuoteModified
}

func (r *quoteRepository) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpDelete, quotesCollection).Observe(&err)

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrQuoteNotFound
	}
	return nil
}
