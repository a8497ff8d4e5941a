package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

const (
	KindQuoteReceivedAdmin    = "quote_received_admin"
	KindQuoteReceivedCustomer = "quote_received_customer"
	KindQuoteSent             = "quote_sent"
)

// Notification - одно письмо. Записывается до отправки, тело хранится целиком для повторов.
type Notification struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	EventID   string             `json:"event_id" gorm:"type:varchar(64);not null;index"`
	QuoteID   string             `json:"quote_id" gorm:"type:varchar(64);not null;index"`
	Kind      string             `json:"kind" gorm:"type:varchar(50);not null"`
	Recipient string             `json:"recipient" gorm:"type:varchar(320);not null"`
	Subject   string             `json:"subject" gorm:"type:varchar(300);not null"`
	Body      string             `json:"-" gorm:"type:text;not null"`
	Status    NotificationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Attempts  int                `json:"attempts" gorm:"not null"`
	LastError string             `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	EventTypeQuoteReceived = "QUOTE_RECEIVED"
	EventTypeQuoteSent     = "QUOTE_SENT"
)

// QuoteEvent - сообщение топика quote_events
type QuoteEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	QuoteID   string    `json:"quote_id"`
	Quote     Quote     `json:"quote"`
	Timestamp time.Time `json:"timestamp"`
}

// Quote - снимок заявки в событии, только нужные для писем поля
type Quote struct {
	ID       string      `json:"id"`
	Customer Customer    `json:"customer"`
	Delivery Delivery    `json:"delivery"`
	Message  string      `json:"message"`
	Items    []QuoteItem `json:"items"`
	Totals   *Totals     `json:"totals"`
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type Delivery struct {
	Method    string   `json:"method"`
	Address   *Address `json:"address"`
	EventDate string   `json:"eventDate"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
}

type QuoteItem struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice"`
	Image     string   `json:"image"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax1     float64 `json:"tax1"`
	Tax2     float64 `json:"tax2"`
	Total    float64 `json:"total"`
}

const RedisKeyPrefixEvent = "notifications:event:"

func GetRedisKeyForEvent(eventID string) string {
	return RedisKeyPrefixEvent + eventID
}
