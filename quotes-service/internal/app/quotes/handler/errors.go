package handler

import (
	"errors"
	"net/http"

	"spectre/pkg/logger"
	"spectre/quotes-service/internal/app/quotes/pricing"
	"spectre/quotes-service/internal/app/quotes/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CodeValidation     = "validation_error"
	CodeNotFound       = "not_found"
	CodeAlreadySent    = "quote_already_sent"
	CodeQuoteModified  = "quote_modified"
	CodeQuoteNotPriced = "quote_not_priced"
)

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Namespace() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

func parseQuoteID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid quote ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	var notPriced *pricing.InvalidForSendError
	switch {
	case errors.As(err, &notPriced):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Every item needs a unit price before the quote can be sent",
			"code":  CodeQuoteNotPriced,
			"items": notPriced.Items,
		})
	case errors.Is(err, service.ErrQuoteNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrQuoteAlreadySent):
		respondError(c, http.StatusConflict, CodeAlreadySent, err.Error())
	case errors.Is(err, service.ErrQuoteModified):
		respondError(c, http.StatusConflict, CodeQuoteModified, err.Error())
	case errors.Is(err, service.ErrDeliveryAddressRequired),
		errors.Is(err, service.ErrInvalidQuoteStatus):
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
	default:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
