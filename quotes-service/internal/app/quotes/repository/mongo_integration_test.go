//go:build integration

package repository

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"spectre/quotes-service/internal/app/quotes/entity"
	"spectre/quotes-service/internal/app/quotes/pricing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuoteRepositorySuite требует запущенный MongoDB (MONGODB_TEST_URI)
type QuoteRepositorySuite struct {
	suite.Suite
	client *mongo.Client
	db     *mongo.Database
	quotes QuoteRepository
}

func (s *QuoteRepositorySuite) SetupSuite() {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	s.Require().NoError(err)
	s.Require().NoError(client.Ping(ctx, nil))
	s.client = client
}

func (s *QuoteRepositorySuite) TearDownSuite() {
	_ = s.client.Disconnect(context.Background())
}

func (s *QuoteRepositorySuite) SetupTest() {
	s.db = s.client.Database(fmt.Sprintf("quotes_test_%d", time.Now().UnixNano()))
	s.quotes = NewQuoteRepository(s.db)
}

func (s *QuoteRepositorySuite) TearDownTest() {
	_ = s.db.Drop(context.Background())
}

func (s *QuoteRepositorySuite) newQuote(status entity.QuoteStatus) *entity.Quote {
	q := &entity.Quote{
		Customer: entity.Customer{Name: "Marie", Email: "marie@example.com"},
		Delivery: entity.Delivery{Method: entity.DeliveryMethodPickup},
		Items:    []entity.QuoteItem{{ProductID: "a", Name: "Chaise", Quantity: 2}},
		Status:   status,
	}
	s.Require().NoError(s.quotes.Create(context.Background(), q))
	return q
}

func (s *QuoteRepositorySuite) TestCreateAndGet_KeepsNullPrice() {
	q := s.newQuote(entity.QuoteStatusReceived)

	got, err := s.quotes.GetByID(context.Background(), q.ID)

	s.Require().NoError(err)
	s.False(got.ID.IsZero())
	s.Nil(got.Items[0].UnitPrice)
	s.Nil(got.Totals)
	s.Nil(got.SentAt)
}

func (s *QuoteRepositorySuite) TestMarkSent_OnlyOnce() {
	ctx := context.Background()
	q := s.newQuote(entity.QuoteStatusReceived)
	totals := pricing.Totals{Subtotal: 25, Tax1: 1.25, Tax2: 2.49375, Total: 28.74375}

	s.Require().NoError(s.quotes.MarkSent(ctx, q.ID, q.UpdatedAt, totals, time.Now().UTC()))
	err := s.quotes.MarkSent(ctx, q.ID, q.UpdatedAt, pricing.Totals{Total: 1}, time.Now().UTC())

	s.ErrorIs(err, ErrQuoteAlreadySent)
	got, err := s.quotes.GetByID(ctx, q.ID)
	s.Require().NoError(err)
	s.Equal(entity.QuoteStatusSent, got.Status)
	s.Require().NotNil(got.Totals)
	s.InDelta(28.74375, got.Totals.Total, 1e-9)
	s.NotNil(got.SentAt)
}

func (s *QuoteRepositorySuite) TestMarkSent_Missing() {
	err := s.quotes.MarkSent(context.Background(), primitive.NewObjectID(), time.Now(), pricing.Totals{}, time.Now())

	s.ErrorIs(err, ErrQuoteNotFound)
}

func (s *QuoteRepositorySuite) TestMarkSent_ItemsChangedAfterRead() {
	ctx := context.Background()
	q := s.newQuote(entity.QuoteStatusReceived)
	seen, err := s.quotes.GetByID(ctx, q.ID)
	s.Require().NoError(err)

	time.Sleep(5 * time.Millisecond)
	s.Require().NoError(s.quotes.UpdateItems(ctx, q.ID, []entity.QuoteItem{{ProductID: "a", Quantity: 5}}))
	err = s.quotes.MarkSent(ctx, q.ID, seen.UpdatedAt, pricing.Totals{Total: 10}, time.Now().UTC())

	s.ErrorIs(err, ErrQuoteModified)
	got, err := s.quotes.GetByID(ctx, q.ID)
	s.Require().NoError(err)
	s.Equal(entity.QuoteStatusReceived, got.Status)
	s.Nil(got.Totals)
}

func (s *QuoteRepositorySuite) TestList_FiltersByStatus() {
	ctx := context.Background()
	s.newQuote(entity.QuoteStatusReceived)
	s.newQuote(entity.QuoteStatusReceived)
	s.newQuote(entity.QuoteStatusSent)

	received, total, err := s.quotes.List(ctx, entity.QuoteStatusReceived, 1, 10)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(received, 2)

	all, total, err := s.quotes.List(ctx, "", 2, 2)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(all, 1)

	past, total, err := s.quotes.List(ctx, "", math.MaxInt, 20)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.NotNil(past)
	s.Empty(past)
}

func (s *QuoteRepositorySuite) TestUpdateItemsAndDelete() {
	ctx := context.Background()
	q := s.newQuote(entity.QuoteStatusReceived)
	price := 12.5

	s.Require().NoError(s.quotes.UpdateItems(ctx, q.ID, []entity.QuoteItem{{ProductID: "a", Quantity: 3, UnitPrice: &price}}))
	got, err := s.quotes.GetByID(ctx, q.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Items[0].UnitPrice)
	s.Equal(12.5, *got.Items[0].UnitPrice)

	s.Require().NoError(s.quotes.Delete(ctx, q.ID))
	s.ErrorIs(s.quotes.Delete(ctx, q.ID), ErrQuoteNotFound)
	s.ErrorIs(s.quotes.UpdateItems(ctx, q.ID, nil), ErrQuoteNotFound)
}

func TestQuoteRepositorySuite(t *testing.T) {
	suite.Run(t, new(QuoteRepositorySuite))
}
