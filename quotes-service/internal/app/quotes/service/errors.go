package service

import "errors"

var (
	ErrQuoteNotFound           = errors.New("quote not found")
	ErrQuoteAlreadySent        = errors.New("quote has already been sent")
	ErrQuoteModified           = errors.New("quote was modified while sending, reload and retry")
	ErrDeliveryAddressRequired = errors.New("delivery address is required for delivery method")
	ErrInvalidQuoteStatus      = errors.New("invalid quote status")
)
