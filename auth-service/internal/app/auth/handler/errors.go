package handler

import (
	"errors"
	"net/http"

	"spectre/auth-service/internal/app/auth/service"
	"spectre/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
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

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrUserExists):
		respondError(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, service.ErrCannotDeleteSelf),
		errors.Is(err, service.ErrPasswordTooLong):
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
	default:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
