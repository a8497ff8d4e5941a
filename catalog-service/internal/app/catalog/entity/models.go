package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category - узел дерева категорий.
// FullPath = slug предков + собственный slug через "/", Depth == len(Ancestors).
type Category struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Slug      string               `bson:"slug" json:"slug"`
	ParentID  *primitive.ObjectID  `bson:"parent_id" json:"parentId"`
	FullPath  string               `bson:"full_path" json:"fullPath"`
	Depth     int                  `bson:"depth" json:"depth"`
	Ancestors []primitive.ObjectID `bson:"ancestors" json:"ancestors"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
}

// CategoryListItem - категория с меткой для выпадающих списков ("— — Chaises")
type CategoryListItem struct {
	ID       primitive.ObjectID  `json:"id"`
	Name     string              `json:"name"`
	Slug     string              `json:"slug"`
	FullPath string              `json:"fullPath"`
	Depth    int                 `json:"depth"`
	ParentID *primitive.ObjectID `json:"parentId"`
	Label    string              `json:"label"`
}

type ProductImage struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id,omitempty" json:"publicId,omitempty"`
}

// Product - товар каталога.
// AllCategoryIDs всегда равен замыканию CategoryIDs по предкам и пишется только сервисом.
type Product struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	SKU              string               `bson:"sku,omitempty" json:"sku,omitempty"`
	Name             string               `bson:"name" json:"name"`
	Description      string               `bson:"description" json:"description"`
	ShortDescription string               `bson:"short_description" json:"shortDescription"`
	Brand            string               `bson:"brand,omitempty" json:"brand,omitempty"`
	RegularPrice     *float64             `bson:"regular_price,omitempty" json:"regularPrice"`
	SalePrice        *float64             `bson:"sale_price,omitempty" json:"salePrice"`
	SalePriceForSale *float64             `bson:"sale_price_for_sale,omitempty" json:"salePriceForSale"`
	Stock            int                  `bson:"stock" json:"stock"`
	Visible          bool                 `bson:"visible" json:"visible"`
	Published        bool                 `bson:"published" json:"published"`
	Images           []ProductImage       `bson:"images" json:"images"`
	CategoryIDs      []primitive.ObjectID `bson:"category_ids" json:"categoryIds"`
	AllCategoryIDs   []primitive.ObjectID `bson:"all_category_ids" json:"allCategoryIds"`
	Raw              bson.Raw             `bson:"raw,omitempty" json:"-"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
}

// EffectivePrice - цена продажи, если задана, иначе обычная
func (p *Product) EffectivePrice() *float64 {
	if p.SalePrice != nil {
		return p.SalePrice
	}
	return p.RegularPrice
}

// IsPublic - товар виден на витрине
func (p *Product) IsPublic() bool {
	return p.Visible && p.Published
}

// ProductCategories - проекция товара для пересчёта замыканий
type ProductCategories struct {
	ID             primitive.ObjectID   `bson:"_id"`
	CategoryIDs    []primitive.ObjectID `bson:"category_ids"`
	AllCategoryIDs []primitive.ObjectID `bson:"all_category_ids"`
}

// ProductFilter - нормализованные условия поиска товаров (все условия через AND)
type ProductFilter struct {
	Query         string
	CategoryID    *primitive.ObjectID
	MinPrice      *float64
	MaxPrice      *float64
	InStock       bool
	Brand         string
	IncludeHidden bool
}

// Типы событий товаров в топике product_events
const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
)

// ProductEvent - событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku,omitempty"`
	Name      string    `json:"name"`
	OldPrice  *float64  `json:"old_price,omitempty"`
	NewPrice  *float64  `json:"new_price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
