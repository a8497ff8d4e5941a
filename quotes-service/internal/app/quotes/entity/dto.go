package entity

import "spectre/quotes-service/internal/app/quotes/pricing"

type CustomerRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Company string `json:"company" validate:"max=200"`
}

type AddressRequest struct {
	Street     string `json:"street" validate:"required,max=300"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Province   string `json:"province" validate:"max=50"`
}

// DeliveryRequest - для method=delivery адрес обязателен (проверяет сервис)
type DeliveryRequest struct {
	Method    string          `json:"method" validate:"required,oneof=pickup delivery"`
	Address   *AddressRequest `json:"address"`
	EventDate string          `json:"eventDate" validate:"omitempty,datetime=2006-01-02"`
}

// SubmitItemRequest - позиция из списка желаний. Цену назначает каталог или администратор.
type SubmitItemRequest struct {
	ProductID string  `json:"productId" validate:"required,max=64"`
	Name      string  `json:"name" validate:"max=300"`
	Quantity  float64 `json:"quantity"`
	Image     string  `json:"image" validate:"omitempty,url"`
}

// SubmitQuoteRequest - публичная отправка списка желаний
type SubmitQuoteRequest struct {
	Customer CustomerRequest     `json:"customer"`
	Delivery DeliveryRequest     `json:"delivery"`
	Message  string              `json:"message" validate:"max=5000"`
	Items    []SubmitItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// UpdateItemRequest - позиция при вводе цен администратором
type UpdateItemRequest struct {
	ProductID string        `json:"productId" validate:"required,max=64"`
	Name      string        `json:"name" validate:"max=300"`
	Quantity  float64       `json:"quantity"`
	UnitPrice pricing.Price `json:"unitPrice"`
	Image     string        `json:"image" validate:"omitempty,url"`
}

type UpdateItemsRequest struct {
	Items []UpdateItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

type QuoteListParams struct {
	Status string `form:"status"`
	Page   string `form:"page"`
}

type QuoteListResponse struct {
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
	Items      []Quote `json:"items"`
}

// QuotePreview - текущие суммы по позициям с ценой, состояние заявки не меняется
type QuotePreview struct {
	Totals    pricing.Totals         `json:"totals"`
	Unpriced  []pricing.UnpricedItem `json:"unpriced"`
	CanBeSent bool                   `json:"canBeSent"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
