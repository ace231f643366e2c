package orders

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/enums"
	"github.com/goldstore/storefront/pkg/types"
	"github.com/google/uuid"
)

const (
	displayCodePrefix  = "GS-"
	defaultStatusLabel = "Processing"
)

// NewDisplayCode returns a client-side order code such as GS-3F9A0C12. It
// is only a label for the local history, never a backend identifier.
func NewDisplayCode() string {
	id := uuid.New()
	return displayCodePrefix + strings.ToUpper(hex.EncodeToString(id[:4]))
}

// Build snapshots items into an immutable Order completed at now.
func Build(items []types.LineItem, payment types.PaymentData, now time.Time, cfg config.OrderConfig) types.Order {
	snapshot := types.CloneLineItems(items)
	count := 0
	for _, item := range snapshot {
		count += item.Quantity
	}

	label := cfg.StatusLabel
	if label == "" {
		label = defaultStatusLabel
	}

	return types.Order{
		ID:            NewDisplayCode(),
		Date:          now.UTC(),
		Status:        enums.OrderStatusProcessing,
		StatusLabel:   label,
		Items:         snapshot,
		Total:         payment.Total,
		ItemsCount:    count,
		PaymentMethod: payment.Method,
		Estimate:      now.UTC().Add(cfg.EstimateWindow()),
	}
}
