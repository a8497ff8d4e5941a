package handler

import (
	"net/http"
	"strings"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxImageUploadSize - лимит multipart загрузки изображения
const maxImageUploadSize = 10 << 20

type ProductHandler struct {
	productService service.ProductServiceInterface
	queryService   service.QueryServiceInterface
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductServiceInterface, queryService service.QueryServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		queryService:   queryService,
		validator:      validator.New(),
	}
}

// ListProducts - витрина: только видимые и опубликованные товары
func (h *ProductHandler) ListProducts(c *gin.Context) {
	h.search(c, false)
}

// ListAdminProducts - GET /admin/products, без фильтра видимости
func (h *ProductHandler) ListAdminProducts(c *gin.Context) {
	h.search(c, true)
}

func (h *ProductHandler) search(c *gin.Context, admin bool) {
	var params entity.ProductQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid query parameters")
		return
	}

	result, err := h.queryService.Search(c.Request.Context(), params, admin)
	if err != nil {
		respondServiceError(c, err, "Failed to search products")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseObjectID(c, "product")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id, true)
	if err != nil {
		respondServiceError(c, err, "Failed to get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseObjectID(c, "product")
	if !ok {
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseObjectID(c, "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Product deleted successfully"})
}

// AddImage - POST /products/:id/images.
// multipart поле "file" загружается в хранилище, JSON {url} перекладывается по ссылке.
func (h *ProductHandler) AddImage(c *gin.Context) {
	id, ok := parseObjectID(c, "product")
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.uploadImage(c, id)
		return
	}

	var req entity.AddImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	product, err := h.productService.AddImageFromURL(c.Request.Context(), id, req.URL)
	if err != nil {
		respondServiceError(c, err, "Failed to add image")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) uploadImage(c *gin.Context, id primitive.ObjectID) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "file is required")
		return
	}
	if fileHeader.Size > maxImageUploadSize {
		respondError(c, http.StatusRequestEntityTooLarge, CodeValidation, "file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Failed to read file")
		return
	}
	defer file.Close()

	product, err := h.productService.AddImageFile(
		c.Request.Context(), id,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"),
		file, fileHeader.Size,
	)
	if err != nil {
		respondServiceError(c, err, "Failed to upload image")
		return
	}
	c.JSON(http.StatusOK, product)
}

// ImportProducts - POST /products/import. Ошибки строк возвращаются в отчёте.
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	var req entity.ImportProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, formatValidationError(err))
		return
	}

	result := h.productService.Import(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, result)
}
