// Package catalog maps the backend's loosely typed product payloads into
// the strict Product shape the cart consumes. All fallback chains live here.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a normalized backend product.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category,omitempty"`
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compareAtPrice"`
	Image          string          `json:"image"`
	Images         []string        `json:"images,omitempty"`
	Stock          int             `json:"stock"`
	Variations     []Variation     `json:"variations,omitempty"`
}

// Variation is one purchasable option of a product.
type Variation struct {
	ID    string              `json:"id"`
	Size  string              `json:"size,omitempty"`
	Color string              `json:"color,omitempty"`
	Stock int                 `json:"stock"`
	Price decimal.NullDecimal `json:"price"`
}

// HasVariations reports whether a variation must be selected before purchase.
func (p Product) HasVariations() bool {
	return len(p.Variations) > 0
}

// FindVariation looks a variation up by id.
func (p Product) FindVariation(id string) (Variation, bool) {
	for _, v := range p.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}

// DiscountPercent is the whole-number discount of price against the
// compare-at price, or 0 when there is no discount.
func DiscountPercent(p Product) int {
	if !p.CompareAtPrice.IsPositive() || !p.Price.LessThan(p.CompareAtPrice) {
		return 0
	}
	off := p.CompareAtPrice.Sub(p.Price).Div(p.CompareAtPrice).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}

// TotalStock sums the variation stock, falling back to the product stock
// when the product has no variations.
func TotalStock(p Product) int {
	if !p.HasVariations() {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variations {
		total += v.Stock
	}
	return total
}
