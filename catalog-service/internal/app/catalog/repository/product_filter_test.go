package repository

import (
	"testing"

	"spectre/catalog-service/internal/app/catalog/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func floatPtr(v float64) *float64 { return &v }

func conditionsOf(t *testing.T, filter bson.M) bson.A {
	t.Helper()
	and, ok := filter["$and"].(bson.A)
	require.True(t, ok, "filter must be an $and list")
	return and
}

func TestBuildProductFilter_EmptyPublic_GatesVisibility(t *testing.T) {
	and := conditionsOf(t, buildProductFilter(entity.ProductFilter{}))

	assert.Equal(t, bson.A{bson.M{"visible": true}, bson.M{"published": true}}, and)
}

func TestBuildProductFilter_AdminWithoutConditions(t *testing.T) {
	filter := buildProductFilter(entity.ProductFilter{IncludeHidden: true})

	assert.Equal(t, bson.M{}, filter)
}

func TestBuildProductFilter_CategoryMatchesClosureField(t *testing.T) {
	id := primitive.NewObjectID()

	and := conditionsOf(t, buildProductFilter(entity.ProductFilter{CategoryID: &id, IncludeHidden: true}))

	require.Len(t, and, 1)
	assert.Equal(t, bson.M{"all_category_ids": id}, and[0])
}

func TestBuildProductFilter_TextSearchIsEscapedAndCaseInsensitive(t *testing.T) {
	and := conditionsOf(t, buildProductFilter(entity.ProductFilter{Query: " chaise (bois) ", IncludeHidden: true}))

	require.Len(t, and, 1)
	or := and[0].(bson.M)["$or"].(bson.A)
	require.Len(t, or, 4)

	rx := primitive.Regex{Pattern: `chaise \(bois\)`, Options: "i"}
	assert.Equal(t, bson.M{"name": rx}, or[0])
	assert.Equal(t, bson.M{"description": rx}, or[1])
	assert.Equal(t, bson.M{"short_description": rx}, or[2])
	assert.Equal(t, bson.M{"sku": rx}, or[3])
}

func TestBuildProductFilter_PriceRangeUsesEffectivePrice(t *testing.T) {
	and := conditionsOf(t, buildProductFilter(entity.ProductFilter{
		MinPrice:      floatPtr(10),
		MaxPrice:      floatPtr(50),
		IncludeHidden: true,
	}))

	require.Len(t, and, 1)
	expr := and[0].(bson.M)["$expr"].(bson.M)["$and"].(bson.A)
	require.Len(t, expr, 3)
	assert.Equal(t, bson.M{"$ne": bson.A{effectivePriceExpr, nil}}, expr[0])
	assert.Equal(t, bson.M{"$gte": bson.A{effectivePriceExpr, 10.0}}, expr[1])
	assert.Equal(t, bson.M{"$lte": bson.A{effectivePriceExpr, 50.0}}, expr[2])
}

func TestBuildProductFilter_InStockAndBrand(t *testing.T) {
	and := conditionsOf(t, buildProductFilter(entity.ProductFilter{
		InStock:       true,
		Brand:         "Chiavari+",
		IncludeHidden: true,
	}))

	require.Len(t, and, 2)
	assert.Equal(t, bson.M{"stock": bson.M{"$gt": 0}}, and[0])
	assert.Equal(t, bson.M{"brand": primitive.Regex{Pattern: `^Chiavari\+$`, Options: "i"}}, and[1])
}

func TestBuildProductFilter_AllConditionsCombined(t *testing.T) {
	id := primitive.NewObjectID()

	and := conditionsOf(t, buildProductFilter(entity.ProductFilter{
		Query:      "nappe",
		CategoryID: &id,
		MinPrice:   floatPtr(5),
		InStock:    true,
		Brand:      "Spectre",
	}))

	// visible + published + q + category + price + stock + brand
	assert.Len(t, and, 7)
}
