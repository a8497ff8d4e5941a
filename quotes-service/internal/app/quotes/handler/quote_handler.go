package handler

import (
	"net/http"

	"spectre/quotes-service/internal/app/quotes/entity"
	"spectre/quotes-service/internal/app/quotes/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type QuoteHandler struct {
	quoteService service.QuoteServiceInterface
	validator    *validator.Validate
}

func NewQuoteHandler(quoteService service.QuoteServiceInterface) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		validator:    validator.New(),
	}
}

// SubmitQuote - POST /quotes, публичная отправка списка желаний
func (h *QuoteHandler) SubmitQuote(c *gin.Context) {
	var req entity.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	quote, err := h.quoteService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to submit quote")
		return
	}
	c.JSON(http.StatusCreated, quote)
}

// ListQuotes - GET /quotes?status=&page=
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var params entity.QuoteListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid query parameters")
		return
	}

	resp, err := h.quoteService.List(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err, "Failed to list quotes")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to get quote")
		return
	}
	c.JSON(http.StatusOK, quote)
}

// UpdateItems - PUT /quotes/:id/items, ввод цен администратором
func (h *QuoteHandler) UpdateItems(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req entity.UpdateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	quote, err := h.quoteService.UpdateItems(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update quote items")
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetTotals - GET /quotes/:id/totals
func (h *QuoteHandler) GetTotals(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	preview, err := h.quoteService.Preview(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to compute quote totals")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// SendQuote - POST /quotes/:id/send
func (h *QuoteHandler) SendQuote(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.Send(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to send quote")
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	if err := h.quoteService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete quote")
		return
	}
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Quote deleted successfully"})
}
