// Package pricing считает суммы по позициям заявки: подытог, TPS, TVQ и итог.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Налоговые ставки Квебека, применяются к подытогу независимо друг от друга
const (
	TaxRate1 = 0.05    // TPS / GST
	TaxRate2 = 0.09975 // TVQ / QST
)

// Line - позиция для расчёта. UnitPrice == nil означает "цена не назначена",
// что отличается от бесплатной позиции с ценой 0.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice *float64
}

type Totals struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Tax1     float64 `bson:"tax1" json:"tax1"`
	Tax2     float64 `bson:"tax2" json:"tax2"`
	Total    float64 `bson:"total" json:"total"`
}

type UnpricedItem struct {
	Index     int    `json:"index"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
}

// InvalidForSendError - в заявке есть позиции без цены
type InvalidForSendError struct {
	Items []UnpricedItem
}

func (e *InvalidForSendError) Error() string {
	return fmt.Sprintf("quote has %d unpriced item(s)", len(e.Items))
}

// Summarize считает суммы по позициям с ценой и возвращает список позиций без цены
func Summarize(lines []Line) (Totals, []UnpricedItem) {
	var subtotal float64
	unpriced := make([]UnpricedItem, 0)

	for i, line := range lines {
		if line.UnitPrice == nil {
			unpriced = append(unpriced, UnpricedItem{Index: i, ProductID: line.ProductID, Name: line.Name})
			continue
		}
		subtotal += *line.UnitPrice * float64(line.Quantity)
	}

	return totalsFor(subtotal), unpriced
}

// Compute - итоговые суммы для отправки; InvalidForSendError, если хоть одна позиция без цены
func Compute(lines []Line) (Totals, error) {
	totals, unpriced := Summarize(lines)
	if len(unpriced) > 0 {
		return Totals{}, &InvalidForSendError{Items: unpriced}
	}
	return totals, nil
}

func totalsFor(subtotal float64) Totals {
	tax1 := subtotal * TaxRate1
	tax2 := subtotal * TaxRate2
	return Totals{
		Subtotal: subtotal,
		Tax1:     tax1,
		Tax2:     tax2,
		Total:    subtotal + tax1 + tax2,
	}
}

// NormalizeQuantity: целое не меньше 1, дробная часть отбрасывается
func NormalizeQuantity(q float64) int {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 1 {
		return 1
	}
	if q > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(q))
}

// ParseUnitPrice разбирает цену вида "1 234,50 $" или "1,234.50".
// Последний из разделителей "," и "." считается десятичным, остальные - разделителями тысяч.
// Строка без цифр даёт nil.
func ParseUnitPrice(raw string) *float64 {
	var b strings.Builder
	hasDigit := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
			b.WriteRune(r)
		case r == ',' || r == '.':
			b.WriteRune(r)
		}
	}
	if !hasDigit {
		return nil
	}

	cleaned := b.String()
	normalized := cleaned
	if last := strings.LastIndexAny(cleaned, ",."); last >= 0 {
		intPart := strings.NewReplacer(",", "", ".", "").Replace(cleaned[:last])
		normalized = intPart + "." + cleaned[last+1:]
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
