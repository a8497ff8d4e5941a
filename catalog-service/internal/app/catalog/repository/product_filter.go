package repository

import (
	"regexp"
	"strings"

	"spectre/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// effectivePriceExpr - sale_price, а при его отсутствии regular_price
var effectivePriceExpr = bson.M{"$ifNull": bson.A{"$sale_price", "$regular_price"}}

// productSort - новые первыми, _id разрешает равенство created_at
var productSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// buildProductFilter переводит нормализованный фильтр в запрос MongoDB.
// Все условия объединяются через $and; пустой фильтр даёт bson.M{}.
func buildProductFilter(f entity.ProductFilter) bson.M {
	conditions := bson.A{}

	if !f.IncludeHidden {
		conditions = append(conditions, bson.M{"visible": true}, bson.M{"published": true})
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		conditions = append(conditions, bson.M{"$or": bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
			bson.M{"short_description": rx},
			bson.M{"sku": rx},
		}})
	}

	if f.CategoryID != nil {
		conditions = append(conditions, bson.M{"all_category_ids": *f.CategoryID})
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		// товар без цены не проходит ценовой фильтр
		priceConds := bson.A{bson.M{"$ne": bson.A{effectivePriceExpr, nil}}}
		if f.MinPrice != nil {
			priceConds = append(priceConds, bson.M{"$gte": bson.A{effectivePriceExpr, *f.MinPrice}})
		}
		if f.MaxPrice != nil {
			priceConds = append(priceConds, bson.M{"$lte": bson.A{effectivePriceExpr, *f.MaxPrice}})
		}
		conditions = append(conditions, bson.M{"$expr": bson.M{"$and": priceConds}})
	}

	if f.InStock {
		conditions = append(conditions, bson.M{"stock": bson.M{"$gt": 0}})
	}

	if brand := strings.TrimSpace(f.Brand); brand != "" {
		conditions = append(conditions, bson.M{"brand": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(brand) + "$",
			Options: "i",
		}})
	}

	if len(conditions) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": conditions}
}
