package handler

import (
	"errors"
	"net/http"

	"spectre/catalog-service/internal/app/catalog/service"
	"spectre/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Машиночитаемые коды ошибок API
const (
	CodeValidation          = "validation_error"
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodeCategoryHasChildren = "category_has_children"
	CodeCategoryCycle       = "category_cycle"
	CodeImageHosting        = "image_hosting_unavailable"
)

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// parseObjectID читает :id; при ошибке ответ уже отправлен
func parseObjectID(c *gin.Context, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid "+what+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError переводит ошибки сервисов в HTTP ответы
func respondServiceError(c *gin.Context, err error, fallback string) {
	var hasChildren *service.HasChildrenError
	switch {
	case errors.As(err, &hasChildren):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    hasChildren.Error(),
			"code":     CodeCategoryHasChildren,
			"children": hasChildren.Children,
		})
	case errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrInvalidCategoryName),
		errors.Is(err, service.ErrEmptyCategoryPath),
		errors.Is(err, service.ErrInvalidCategoryID):
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, service.ErrCategoryCycle):
		respondError(c, http.StatusBadRequest, CodeCategoryCycle, err.Error())
	case errors.Is(err, service.ErrCategoryConflict),
		errors.Is(err, service.ErrDuplicateSKU):
		respondError(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, service.ErrImageHostingDisabled):
		respondError(c, http.StatusServiceUnavailable, CodeImageHosting, err.Error())
	case errors.Is(err, service.ErrImageUpload):
		respondError(c, http.StatusBadGateway, CodeImageHosting, service.ErrImageUpload.Error())
	default:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
