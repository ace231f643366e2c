package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goldstore/storefront/api/responses"
	"github.com/goldstore/storefront/api/validators"
	"github.com/goldstore/storefront/internal/catalog"
	"github.com/goldstore/storefront/pkg/enums"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

type addItemRequest struct {
	Product     json.RawMessage `json:"product" validate:"required"`
	VariationID *string         `json:"variation_id" validate:"omitempty,max=128"`
}

type updateItemRequest struct {
	Delta       *int    `json:"delta" validate:"required"`
	VariationID *string `json:"variation_id" validate:"omitempty,max=128"`
}

type completeRequest struct {
	Total  decimal.Decimal `json:"total" validate:"gte=0"`
	Method string          `json:"method" validate:"required,payment_method"`
}

type completeResponse struct {
	Completed bool         `json:"completed"`
	Order     *types.Order `json:"order"`
}

// CartGet returns the cart lines with their totals.
func CartGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, s.Cart.Summary())
	}
}

// CartAddItem normalizes the posted backend product and adds one unit.
func CartAddItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalog.Decode(payload.Product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product").
				WithDetails(map[string]any{"product": err.Error()}))
			return
		}

		var variation *catalog.Variation
		if variationID := trimmedID(payload.VariationID); variationID != nil {
			v, found := product.FindVariation(*variationID)
			if !found {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "variation not found").
					WithDetails(map[string]any{"variation_id": *variationID}))
				return
			}
			variation = &v
		} else if product.HasVariations() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "select a variation first").
				WithDetails(map[string]any{"variation_id": "is required"}))
			return
		}

		s.Cart.AddToCart(r.Context(), product, variation)
		responses.WriteSuccessNotified(r.Context(), w, http.StatusCreated, s.Cart.Summary())
	}
}

// CartUpdateItem applies a quantity delta to one line.
func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := types.NewLineKey(strings.TrimSpace(chi.URLParam(r, "productId")), trimmedID(payload.VariationID))
		s.Cart.UpdateQuantity(r.Context(), key, *payload.Delta)
		responses.WriteSuccessNotified(r.Context(), w, http.StatusOK, s.Cart.Summary())
	}
}

// CartRemoveItem removes a product. With ?variation_id only that line goes.
func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if variationID := validators.QueryPointer(r, "variation_id"); variationID != nil {
			s.Cart.RemoveLine(r.Context(), types.NewLineKey(productID, variationID))
		} else {
			s.Cart.RemoveFromCart(r.Context(), productID)
		}
		responses.WriteSuccessNotified(r.Context(), w, http.StatusOK, s.Cart.Summary())
	}
}

// CartClear empties the cart.
func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		s.Cart.ClearCart(r.Context())
		responses.WriteSuccessNotified(r.Context(), w, http.StatusOK, s.Cart.Summary())
	}
}

// CartComplete turns the cart into a local order. An empty cart is not an
// error; the response just reports completed=false.
func CartComplete(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload completeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, completed := s.Cart.CompleteOrder(r.Context(), types.PaymentData{
			Total:  payload.Total,
			Method: enums.PaymentMethod(payload.Method),
		})
		resp := completeResponse{Completed: completed}
		status := http.StatusOK
		if completed {
			resp.Order = &order
			status = http.StatusCreated
		}
		responses.WriteSuccessNotified(r.Context(), w, status, resp)
	}
}

// trimmedID returns nil for a missing or blank id so it matches lines added
// without a variation.
func trimmedID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}
