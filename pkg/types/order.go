package types

import (
	"time"

	"github.com/goldstore/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is the client-local, non-authoritative record of a completed
// checkout. It is immutable once created.
type Order struct {
	ID            string              `json:"id"`
	Date          time.Time           `json:"date"`
	Status        enums.OrderStatus   `json:"status"`
	StatusLabel   string              `json:"statusLabel"`
	Items         []LineItem          `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	ItemsCount    int                 `json:"itemsCount"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Estimate      time.Time           `json:"estimate"`
}

// Clone returns a deep copy so callers can never mutate a recorded order.
func (o Order) Clone() Order {
	out := o
	out.Items = CloneLineItems(o.Items)
	return out
}

// PaymentData is what checkout hands over when the cart is completed.
type PaymentData struct {
	Total  decimal.Decimal
	Method enums.PaymentMethod
}
