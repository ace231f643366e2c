package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNormalizesLooseTypes(t *testing.T) {
	p, err := Decode([]byte(`{
		"id": 7,
		"name": " Tênis Gold ",
		"price": "199.90",
		"old_price": 249.9,
		"image_1": "https://cdn/1.jpg",
		"stock": "3",
		"variations": [
			{"id": 11, "size": "40", "stock": 2},
			{"id": "12", "size": "41", "stock": "4", "price": "209.90"},
			{"id": null, "size": "??"}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "Tênis Gold", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("199.90")))
	assert.True(t, p.CompareAtPrice.Equal(decimal.RequireFromString("249.9")))
	assert.Equal(t, "https://cdn/1.jpg", p.Image)
	assert.Equal(t, 3, p.Stock)
	require.Len(t, p.Variations, 2)
	assert.Equal(t, "11", p.Variations[0].ID)
	assert.False(t, p.Variations[0].Price.Valid)
	assert.True(t, p.Variations[1].Price.Valid)
}

func TestImagePrefersImageURL(t *testing.T) {
	p, err := Normalize(RawProduct{ID: "1", ImageURL: "main.jpg", Image1: "alt.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "main.jpg", p.Image)
	assert.Equal(t, []string{"main.jpg", "alt.jpg"}, p.Images)
}

func TestNormalizeRequiresID(t *testing.T) {
	_, err := Normalize(RawProduct{Name: "nameless"})
	require.ErrorIs(t, err, ErrMissingID)

	_, err = Decode([]byte(`{"id": 1, "price": "abc"}`))
	require.Error(t, err)
}

func TestDecodeListAcceptsEnvelope(t *testing.T) {
	list, err := DecodeList([]byte(`{"data":[{"id":1,"price":10},{"id":"2","price":"5.5"}]}`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[1].ID)

	list, err = DecodeList([]byte(`[{"id":3}]`))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Price.IsZero())

	_, err = DecodeList([]byte(`[{"name":"no id"}]`))
	require.Error(t, err)
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		compare string
		want    int
	}{
		{name: "twenty percent", price: "80", compare: "100", want: 20},
		{name: "rounds", price: "199.90", compare: "249.90", want: 20},
		{name: "no compare price", price: "80", compare: "0", want: 0},
		{name: "compare below price", price: "120", compare: "100", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{
				Price:          decimal.RequireFromString(tc.price),
				CompareAtPrice: decimal.RequireFromString(tc.compare),
			}
			assert.Equal(t, tc.want, DiscountPercent(p))
		})
	}
}

func TestTotalStock(t *testing.T) {
	assert.Equal(t, 5, TotalStock(Product{Stock: 5}))
	assert.Equal(t, 6, TotalStock(Product{Stock: 99, Variations: []Variation{{ID: "a", Stock: 2}, {ID: "b", Stock: 4}}}))

	p := Product{Variations: []Variation{{ID: "a", Size: "M"}}}
	v, ok := p.FindVariation("a")
	assert.True(t, ok)
	assert.Equal(t, "M", v.Size)
	_, ok = p.FindVariation("z")
	assert.False(t, ok)
}
