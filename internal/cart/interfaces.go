package cart

import (
	"context"

	"github.com/goldstore/storefront/pkg/types"
)

// OrderRecorder receives the order snapshot produced by CompleteOrder.
type OrderRecorder interface {
	Record(ctx context.Context, order types.Order)
}
