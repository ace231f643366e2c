package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItem is one cart row. Name, image and price are snapshots taken when
// the product was added and are never re-fetched.
type LineItem struct {
	ID          string          `json:"id"`
	VariationID *string         `json:"variationId"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
}

// UnmarshalJSON accepts ids and variation ids written as numbers, the way
// the catalog sends them, so older snapshots still load.
func (l *LineItem) UnmarshalJSON(data []byte) error {
	type plain LineItem
	var raw struct {
		plain
		ID          FlexID  `json:"id"`
		VariationID *FlexID `json:"variationId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = LineItem(raw.plain)
	l.ID = raw.ID.String()
	l.VariationID = nil
	if raw.VariationID != nil && *raw.VariationID != "" {
		v := raw.VariationID.String()
		l.VariationID = &v
	}
	return nil
}

// LineKey identifies a cart row. An empty VariationID means the product was
// added without a variation.
type LineKey struct {
	ProductID   string
	VariationID string
}

// NewLineKey builds a key from a product id and an optional variation id.
func NewLineKey(productID string, variationID *string) LineKey {
	key := LineKey{ProductID: productID}
	if variationID != nil {
		key.VariationID = *variationID
	}
	return key
}

// Key returns the (id, variationId) pair the cart is unique on.
func (l LineItem) Key() LineKey {
	return NewLineKey(l.ID, l.VariationID)
}

// Subtotal returns price * quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Clone returns a copy that shares no pointers with l.
func (l LineItem) Clone() LineItem {
	out := l
	if l.VariationID != nil {
		v := *l.VariationID
		out.VariationID = &v
	}
	return out
}

// CloneLineItems deep-copies a slice of line items. The result is never nil.
func CloneLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
