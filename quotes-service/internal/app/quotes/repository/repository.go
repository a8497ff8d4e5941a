package repository

import (
	"context"
	"errors"
	"time"

	"spectre/quotes-service/internal/app/quotes/entity"
	"spectre/quotes-service/internal/app/quotes/pricing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrQuoteNotFound    = errors.New("quote not found")
	ErrQuoteAlreadySent = errors.New("quote already sent")
	ErrQuoteModified    = errors.New("quote modified concurrently")
)

const metricsService = "quotes-service"

// QuoteRepository - заявки в MongoDB (коллекция quotes)
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Quote, error)
	// List - status "" означает все заявки; порядок created_at desc
	List(ctx context.Context, status entity.QuoteStatus, page, pageSize int) ([]entity.Quote, int64, error)
	UpdateItems(ctx context.Context, id primitive.ObjectID, items []entity.QuoteItem) error
	// MarkSent атомарно переводит received -> sent, если updated_at все еще равен seenAt.
	// ErrQuoteAlreadySent, если заявка уже отправлена; ErrQuoteModified, если позиции успели поменять.
	MarkSent(ctx context.Context, id primitive.ObjectID, seenAt time.Time, totals pricing.Totals, sentAt time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
