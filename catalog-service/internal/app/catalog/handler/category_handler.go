package handler

import (
	"net/http"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CategoryHandler struct {
	categoryService service.CategoryServiceInterface
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService service.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
	}
}

// ListCategories - GET /categories, плоский список в порядке fullPath
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	items, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, entity.CategoryListResponse{Items: items})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseObjectID(c, "category")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to get category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory - PUT /categories/:id. Потомки не пересчитываются.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseObjectID(c, "category")
	if !ok {
		return
	}

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseObjectID(c, "category")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Category deleted successfully"})
}
