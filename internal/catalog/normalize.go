package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goldstore/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// ErrMissingID is returned for payloads without a usable product id.
var ErrMissingID = errors.New("catalog: product id is required")

// RawProduct is the product payload as the backend sends it.
type RawProduct struct {
	ID             types.FlexID   `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Price          flexDecimal    `json:"price"`
	CompareAtPrice flexDecimal    `json:"compare_at_price"`
	OldPrice       flexDecimal    `json:"old_price"`
	ImageURL       string         `json:"image_url"`
	Image1         string         `json:"image_1"`
	Image2         string         `json:"image_2"`
	Image3         string         `json:"image_3"`
	Stock          flexInt        `json:"stock"`
	Variations     []RawVariation `json:"variations"`
}

// RawVariation is a variation payload as the backend sends it.
type RawVariation struct {
	ID    types.FlexID `json:"id"`
	Size  string       `json:"size"`
	Color string       `json:"color"`
	Stock flexInt      `json:"stock"`
	Price flexDecimal  `json:"price"`
}

// Decode parses and normalizes a single product payload.
func Decode(data []byte) (Product, error) {
	var raw RawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return Normalize(raw)
}

// DecodeList parses either a bare array or a {"data": [...]} envelope.
func DecodeList(data []byte) ([]Product, error) {
	data = bytes.TrimSpace(data)
	var raws []RawProduct
	if len(data) > 0 && data[0] == '{' {
		var envelope struct {
			Data []RawProduct `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("decode product list: %w", err)
		}
		raws = envelope.Data
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}

	out := make([]Product, 0, len(raws))
	for i, raw := range raws {
		p, err := Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Normalize maps a raw payload into a Product.
func Normalize(raw RawProduct) (Product, error) {
	id := strings.TrimSpace(raw.ID.String())
	if id == "" {
		return Product{}, ErrMissingID
	}

	p := Product{
		ID:             id,
		Name:           strings.TrimSpace(raw.Name),
		Description:    raw.Description,
		Category:       raw.Category,
		Price:          raw.Price.value(),
		CompareAtPrice: raw.CompareAtPrice.value(),
		Image:          firstNonEmpty(raw.ImageURL, raw.Image1),
		Images:         nonEmpty(raw.ImageURL, raw.Image1, raw.Image2, raw.Image3),
		Stock:          int(raw.Stock),
	}
	if !raw.CompareAtPrice.set {
		p.CompareAtPrice = raw.OldPrice.value()
	}

	for _, rv := range raw.Variations {
		v := Variation{
			ID:    strings.TrimSpace(rv.ID.String()),
			Size:  rv.Size,
			Color: rv.Color,
			Stock: int(rv.Stock),
		}
		if rv.Price.set {
			v.Price = decimal.NewNullDecimal(rv.Price.value())
		}
		if v.ID == "" {
			continue
		}
		p.Variations = append(p.Variations, v)
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// flexDecimal accepts numbers, numeric strings, empty strings and null.
type flexDecimal struct {
	d   decimal.Decimal
	set bool
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*f = flexDecimal{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", data, err)
	}
	*f = flexDecimal{d: d, set: true}
	return nil
}

func (f flexDecimal) value() decimal.Decimal {
	if !f.set {
		return decimal.Zero
	}
	return f.d
}

// flexInt accepts integers, integer strings and null.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*f = 0
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	n, err := strconv.Atoi(s)
	if err != nil {
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid integer %s: %w", data, err)
		}
		n = int(fl)
	}
	*f = flexInt(n)
	return nil
}
