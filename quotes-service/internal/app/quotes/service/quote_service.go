package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"spectre/pkg/logger"
	"spectre/pkg/metrics"
	"spectre/pkg/pagination"
	"spectre/quotes-service/internal/app/quotes/entity"
	"spectre/quotes-service/internal/app/quotes/infrastructure"
	"spectre/quotes-service/internal/app/quotes/pricing"
	"spectre/quotes-service/internal/app/quotes/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultPageSize = 20

// QuoteService - жизненный цикл заявки: приём списка желаний, ввод цен, отправка клиенту
type QuoteService struct {
	quoteRepo     repository.QuoteRepository
	catalogClient infrastructure.CatalogServiceClient
	publisher     infrastructure.MessagePublisher
	pageSize      int
}

// NewQuoteService - catalogClient и publisher могут быть nil
func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	catalogClient infrastructure.CatalogServiceClient,
	publisher infrastructure.MessagePublisher,
) *QuoteService {
	return &QuoteService{
		quoteRepo:     quoteRepo,
		catalogClient: catalogClient,
		publisher:     publisher,
		pageSize:      DefaultPageSize,
	}
}

// Submit сохраняет заявку клиента. Цены из запроса не принимаются:
// начальная цена позиции берётся из каталога, если он доступен.
func (s *QuoteService) Submit(ctx context.Context, req *entity.SubmitQuoteRequest) (*entity.Quote, error) {
	delivery, err := toDelivery(req.Delivery)
	if err != nil {
		return nil, err
	}

	items := make([]entity.QuoteItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, entity.QuoteItem{
			ProductID: strings.TrimSpace(it.ProductID),
			Name:      strings.TrimSpace(it.Name),
			Quantity:  pricing.NormalizeQuantity(it.Quantity),
			Image:     it.Image,
		})
	}
	s.enrichFromCatalog(ctx, items)

	quote := &entity.Quote{
		Customer: entity.Customer{
			Name:    strings.TrimSpace(req.Customer.Name),
			Email:   strings.ToLower(strings.TrimSpace(req.Customer.Email)),
			Phone:   strings.TrimSpace(req.Customer.Phone),
			Company: strings.TrimSpace(req.Customer.Company),
		},
		Delivery: delivery,
		Message:  strings.TrimSpace(req.Message),
		Items:    items,
		Status:   entity.QuoteStatusReceived,
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	metrics.QuotesSubmitted.Inc()
	logger.Info().
		Str("quote_id", quote.ID.Hex()).
		Int("items", len(quote.Items)).
		Msg("Quote received")

	s.publishEvent(ctx, entity.EventQuoteReceived, quote)
	return quote, nil
}

func (s *QuoteService) List(ctx context.Context, params entity.QuoteListParams) (*entity.QuoteListResponse, error) {
	status := entity.QuoteStatus(strings.TrimSpace(params.Status))
	if status != "" && status != entity.QuoteStatusReceived && status != entity.QuoteStatusSent {
		return nil, ErrInvalidQuoteStatus
	}

	page := pagination.ParsePage(params.Page)
	quotes, total, err := s.quoteRepo.List(ctx, status, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	if quotes == nil {
		quotes = []entity.Quote{}
	}

	return &entity.QuoteListResponse{
		Total:      total,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: pagination.TotalPages(total, s.pageSize),
		Items:      quotes,
	}, nil
}

func (s *QuoteService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

// UpdateItems заменяет позиции целиком. Для отправленной заявки
// сохранённые totals не пересчитываются.
func (s *QuoteService) UpdateItems(ctx context.Context, id primitive.ObjectID, req *entity.UpdateItemsRequest) (*entity.Quote, error) {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]entity.QuoteItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, entity.QuoteItem{
			ProductID: strings.TrimSpace(it.ProductID),
			Name:      strings.TrimSpace(it.Name),
			Quantity:  pricing.NormalizeQuantity(it.Quantity),
			UnitPrice: it.UnitPrice.Value,
			Image:     it.Image,
		})
	}

	if err := s.quoteRepo.UpdateItems(ctx, id, items); err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to update quote items: %w", err)
	}

	quote.Items = items
	quote.UpdatedAt = time.Now().UTC()
	return quote, nil
}

// Preview - суммы по текущим позициям без изменения заявки
func (s *QuoteService) Preview(ctx context.Context, id primitive.ObjectID) (*entity.QuotePreview, error) {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	totals, unpriced := pricing.Summarize(quote.Lines())
	return &entity.QuotePreview{
		Totals:    totals,
		Unpriced:  unpriced,
		CanBeSent: quote.Status == entity.QuoteStatusReceived && len(unpriced) == 0,
	}, nil
}

// Send переводит заявку received -> sent и фиксирует totals.
// Позиции без цены: *pricing.InvalidForSendError, статус не меняется.
func (s *QuoteService) Send(ctx context.Context, id primitive.ObjectID) (*entity.Quote, error) {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if quote.Status == entity.QuoteStatusSent {
		metrics.QuotesSent.WithLabelValues("conflict").Inc()
		return nil, ErrQuoteAlreadySent
	}

	totals, err := pricing.Compute(quote.Lines())
	if err != nil {
		metrics.QuotesSent.WithLabelValues("not_priced").Inc()
		return nil, err
	}

	sentAt := time.Now().UTC()
	if err := s.quoteRepo.MarkSent(ctx, id, quote.UpdatedAt, totals, sentAt); err != nil {
		switch {
		case errors.Is(err, repository.ErrQuoteAlreadySent):
			metrics.QuotesSent.WithLabelValues("conflict").Inc()
			return nil, ErrQuoteAlreadySent
		case errors.Is(err, repository.ErrQuoteModified):
			metrics.QuotesSent.WithLabelValues("conflict").Inc()
			return nil, ErrQuoteModified
		case errors.Is(err, repository.ErrQuoteNotFound):
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to mark quote as sent: %w", err)
	}

	quote.Status = entity.QuoteStatusSent
	quote.Totals = &totals
	quote.SentAt = &sentAt
	quote.UpdatedAt = sentAt

	metrics.QuotesSent.WithLabelValues("success").Inc()
	metrics.QuotesSentAmount.Add(totals.Total)
	logger.Info().
		Str("quote_id", quote.ID.Hex()).
		Float64("total", totals.Total).
		Msg("Quote sent")

	s.publishEvent(ctx, entity.EventQuoteSent, quote)
	return quote, nil
}

func (s *QuoteService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return nil
}

// enrichFromCatalog дополняет имя, изображение и начальную цену позиций.
// Ошибки каталога только логируются.
func (s *QuoteService) enrichFromCatalog(ctx context.Context, items []entity.QuoteItem) {
	if s.catalogClient == nil {
		return
	}

	seen := make(map[string]*entity.CatalogProduct)
	for i := range items {
		item := &items[i]
		if item.ProductID == "" {
			continue
		}

		product, ok := seen[item.ProductID]
		if !ok {
			p, err := s.catalogClient.GetProduct(ctx, item.ProductID)
			if err != nil {
				ev := logger.Warn()
				if errors.Is(err, infrastructure.ErrCatalogProductNotFound) {
					ev = logger.Info()
				}
				ev.Err(err).Str("product_id", item.ProductID).Msg("Catalog lookup failed, item kept as submitted")
			}
			seen[item.ProductID] = p
			product = p
		}
		if product == nil {
			continue
		}

		if item.Name == "" {
			item.Name = product.Name
		}
		if item.Image == "" && len(product.Images) > 0 {
			item.Image = product.Images[0].URL
		}
		if price := product.EffectivePrice(); price != nil {
			v := *price
			item.UnitPrice = &v
		}
	}
}

func (s *QuoteService) publishEvent(ctx context.Context, eventType string, quote *entity.Quote) {
	if s.publisher == nil {
		return
	}

	event := entity.QuoteEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		QuoteID:   quote.ID.Hex(),
		Quote:     *quote,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal quote event")
		return
	}
	if err := s.publisher.PublishMessage(ctx, event.QuoteID, data); err != nil {
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("quote_id", event.QuoteID).
			Msg("Failed to publish quote event")
	}
}

func toDelivery(req entity.DeliveryRequest) (entity.Delivery, error) {
	delivery := entity.Delivery{
		Method:    req.Method,
		EventDate: req.EventDate,
	}

	if req.Address != nil {
		delivery.Address = &entity.Address{
			Street:     strings.TrimSpace(req.Address.Street),
			City:       strings.TrimSpace(req.Address.City),
			PostalCode: strings.ToUpper(strings.TrimSpace(req.Address.PostalCode)),
			Province:   strings.TrimSpace(req.Address.Province),
		}
	}

	if req.Method == entity.DeliveryMethodDelivery && delivery.Address == nil {
		return entity.Delivery{}, ErrDeliveryAddressRequired
	}
	return delivery, nil
}
