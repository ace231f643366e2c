package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDAcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		A FlexID `json:"a"`
		B FlexID `json:"b"`
		C FlexID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":7,"b":" sku-1 ","c":null}`), &payload))
	assert.Equal(t, FlexID("7"), payload.A)
	assert.Equal(t, FlexID("sku-1"), payload.B)
	assert.Equal(t, FlexID(""), payload.C)

	out, err := json.Marshal(payload.A)
	require.NoError(t, err)
	assert.Equal(t, `"7"`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"a":{}}`), &payload))
}

func TestLineItemKeyAndSubtotal(t *testing.T) {
	size := "42"
	item := LineItem{ID: "7", VariationID: &size, Price: decimal.RequireFromString("19.90"), Quantity: 3}

	assert.Equal(t, LineKey{ProductID: "7", VariationID: "42"}, item.Key())
	assert.Equal(t, LineKey{ProductID: "7"}, NewLineKey("7", nil))
	assert.True(t, item.Subtotal().Equal(decimal.RequireFromString("59.70")))
}

func TestLineItemDecodesNumericIDs(t *testing.T) {
	var items []LineItem
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":7,"variationId":12,"name":"Ring","price":"99.90","quantity":2},
		{"id":"8","variationId":null,"price":5,"quantity":1},
		{"id":"9","variationId":"","price":5,"quantity":1}
	]`), &items))
	require.Len(t, items, 3)

	assert.Equal(t, "7", items[0].ID)
	require.NotNil(t, items[0].VariationID)
	assert.Equal(t, "12", *items[0].VariationID)
	assert.Equal(t, "Ring", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("99.9")))
	assert.Equal(t, 2, items[0].Quantity)

	assert.Nil(t, items[1].VariationID)
	assert.Nil(t, items[2].VariationID)

	out, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":"7"`)
	assert.Contains(t, string(out), `"variationId":"12"`)
}

func TestCloneDetachesVariationPointer(t *testing.T) {
	v := "m"
	items := []LineItem{{ID: "1", VariationID: &v, Quantity: 1}}
	cloned := CloneLineItems(items)
	*items[0].VariationID = "xl"

	require.NotNil(t, cloned[0].VariationID)
	assert.Equal(t, "m", *cloned[0].VariationID)
	assert.NotNil(t, CloneLineItems(nil))
}

func TestOrderCloneDetachesItems(t *testing.T) {
	order := Order{ID: "GS-1", Items: []LineItem{{ID: "1", Quantity: 2}}}
	cloned := order.Clone()
	order.Items[0].Quantity = 9
	assert.Equal(t, 2, cloned.Items[0].Quantity)
}
