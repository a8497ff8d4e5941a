package entity

type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	ParentID string `json:"parentId" validate:"omitempty,len=24,hexadecimal"`
}

// UpdateCategoryRequest - ParentID "" переносит категорию в корень, nil оставляет на месте
type UpdateCategoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	ParentID *string `json:"parentId"` // формат проверяет CategoryService.Update
}

type CategoryListResponse struct {
	Items []CategoryListItem `json:"items"`
}

type ProductImageRequest struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"publicId"`
}

// CreateProductRequest - allCategoryIds намеренно отсутствует: поле вычисляется сервером
type CreateProductRequest struct {
	SKU              string                `json:"sku" validate:"omitempty,max=100"`
	Name             string                `json:"name" validate:"required,min=1,max=300"`
	Description      string                `json:"description" validate:"max=20000"`
	ShortDescription string                `json:"shortDescription" validate:"max=2000"`
	Brand            string                `json:"brand" validate:"max=200"`
	RegularPrice     *float64              `json:"regularPrice" validate:"omitempty,gte=0"`
	SalePrice        *float64              `json:"salePrice" validate:"omitempty,gte=0"`
	SalePriceForSale *float64              `json:"salePriceForSale" validate:"omitempty,gte=0"`
	Stock            int                   `json:"stock" validate:"gte=0"`
	Visible          *bool                 `json:"visible"`
	Published        *bool                 `json:"published"`
	Images           []ProductImageRequest `json:"images" validate:"dive"`
	CategoryIDs      []string              `json:"categoryIds"`
}

// UpdateProductRequest - частичное обновление, nil поля не меняются
type UpdateProductRequest struct {
	SKU              *string                `json:"sku" validate:"omitempty,max=100"`
	Name             *string                `json:"name" validate:"omitempty,min=1,max=300"`
	Description      *string                `json:"description" validate:"omitempty,max=20000"`
	ShortDescription *string                `json:"shortDescription" validate:"omitempty,max=2000"`
	Brand            *string                `json:"brand" validate:"omitempty,max=200"`
	RegularPrice     *float64               `json:"regularPrice" validate:"omitempty,gte=0"`
	SalePrice        *float64               `json:"salePrice" validate:"omitempty,gte=0"`
	SalePriceForSale *float64               `json:"salePriceForSale" validate:"omitempty,gte=0"`
	Stock            *int                   `json:"stock" validate:"omitempty,gte=0"`
	Visible          *bool                  `json:"visible"`
	Published        *bool                  `json:"published"`
	Images           *[]ProductImageRequest `json:"images"`
	CategoryIDs      *[]string              `json:"categoryIds"`
}

// ProductQueryParams - сырые параметры запроса GET /products
type ProductQueryParams struct {
	Q          string `form:"q"`
	CategoryID string `form:"categoryId"`
	MinPrice   string `form:"minPrice"`
	MaxPrice   string `form:"maxPrice"`
	InStock    string `form:"inStock"`
	Brand      string `form:"brand"`
	Page       string `form:"page"`
}

type ProductListResponse struct {
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
	Items      []Product `json:"items"`
}

// ImportProductRow - строка каталожного импорта.
// Categories - цепочки имён от корня к листу, например [["Mobilier","Chaises"]].
type ImportProductRow struct {
	SKU              string                 `json:"sku"`
	Name             string                 `json:"name" validate:"required"`
	Description      string                 `json:"description"`
	ShortDescription string                 `json:"shortDescription"`
	Brand            string                 `json:"brand"`
	RegularPrice     *float64               `json:"regularPrice"`
	SalePrice        *float64               `json:"salePrice"`
	SalePriceForSale *float64               `json:"salePriceForSale"`
	Stock            int                    `json:"stock"`
	Visible          *bool                  `json:"visible"`
	Categories       [][]string             `json:"categories"`
	Images           []string               `json:"images"`
	Raw              map[string]interface{} `json:"raw"`
}

type ImportProductsRequest struct {
	Items []ImportProductRow `json:"items" validate:"required,min=1,max=5000"`
}

const (
	ImportStatusCreated = "created"
	ImportStatusUpdated = "updated"
	ImportStatusFailed  = "failed"
)

type ImportRowResult struct {
	Index     int    `json:"index"`
	SKU       string `json:"sku,omitempty"`
	ProductID string `json:"productId,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type ImportResult struct {
	Total   int               `json:"total"`
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Failed  int               `json:"failed"`
	Rows    []ImportRowResult `json:"rows"`
}

type AddImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// RecomputeResult - итог массового пересчёта замыканий
type RecomputeResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
