package service

import (
	"context"

	"spectre/quotes-service/internal/app/quotes/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuoteServiceInterface interface {
	Submit(ctx context.Context, req *entity.SubmitQuoteRequest) (*entity.Quote, error)
	List(ctx context.Context, params entity.QuoteListParams) (*entity.QuoteListResponse, error)
	Get(ctx context.Context, id primitive.ObjectID) (*entity.Quote, error)
	UpdateItems(ctx context.Context, id primitive.ObjectID, req *entity.UpdateItemsRequest) (*entity.Quote, error)
	Preview(ctx context.Context, id primitive.ObjectID) (*entity.QuotePreview, error)
	Send(ctx context.Context, id primitive.ObjectID) (*entity.Quote, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

var _ QuoteServiceInterface = (*QuoteService)(nil)
