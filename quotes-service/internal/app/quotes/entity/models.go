package entity

import (
	"time"

	"spectre/quotes-service/internal/app/quotes/pricing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuoteStatus - заявка переходит received -> sent один раз
type QuoteStatus string

const (
	QuoteStatusReceived QuoteStatus = "received"
	QuoteStatusSent     QuoteStatus = "sent"
)

const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

// Quote - заявка на аренду, собранная из списка желаний клиента
type Quote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Customer  Customer           `bson:"customer" json:"customer"`
	Delivery  Delivery           `bson:"delivery" json:"delivery"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	Items     []QuoteItem        `bson:"items" json:"items"`
	Status    QuoteStatus        `bson:"status" json:"status"`
	Totals    *pricing.Totals    `bson:"totals,omitempty" json:"totals"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
	SentAt    *time.Time         `bson:"sent_at,omitempty" json:"sentAt,omitempty"`
}

type Customer struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Company string `bson:"company,omitempty" json:"company,omitempty"`
}

type Delivery struct {
	Method    string   `bson:"method" json:"method"`
	Address   *Address `bson:"address,omitempty" json:"address,omitempty"`
	EventDate string   `bson:"event_date,omitempty" json:"eventDate,omitempty"` // YYYY-MM-DD
}

type Address struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
	Province   string `bson:"province" json:"province"`
}

// QuoteItem - позиция заявки. UnitPrice nil - цена ещё не назначена.
type QuoteItem struct {
	ProductID string   `bson:"product_id" json:"productId"`
	Name      string   `bson:"name" json:"name"`
	Quantity  int      `bson:"quantity" json:"quantity"`
	UnitPrice *float64 `bson:"unit_price" json:"unitPrice"`
	Image     string   `bson:"image,omitempty" json:"image,omitempty"`
}

// Lines - позиции в виде для расчёта сумм
func (q *Quote) Lines() []pricing.Line {
	lines := make([]pricing.Line, len(q.Items))
	for i, item := range q.Items {
		lines[i] = pricing.Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return lines
}

const (
	EventQuoteReceived = "QUOTE_RECEIVED"
	EventQuoteSent     = "QUOTE_SENT"
)

// QuoteEvent - сообщение топика quote_events; Quote - полный снимок на момент события
type QuoteEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	QuoteID   string    `json:"quote_id"`
	Quote     Quote     `json:"quote"`
	Timestamp time.Time `json:"timestamp"`
}

// CatalogProduct - ответ catalog-service GET /products/:id
type CatalogProduct struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	RegularPrice *float64       `json:"regularPrice"`
	SalePrice    *float64       `json:"salePrice"`
	Images       []CatalogImage `json:"images"`
}

type CatalogImage struct {
	URL string `json:"url"`
}

// EffectivePrice - salePrice, если задана, иначе regularPrice
func (p *CatalogProduct) EffectivePrice() *float64 {
	if p.SalePrice != nil {
		return p.SalePrice
	}
	return p.RegularPrice
}
