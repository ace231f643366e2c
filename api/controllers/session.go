package controllers

import (
	"net/http"

	"github.com/goldstore/storefront/api/responses"
	"github.com/goldstore/storefront/internal/cart"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/types"
)

type sessionResponse struct {
	ClientID    string       `json:"clientId"`
	User        *types.User  `json:"user"`
	Cart        cart.Summary `json:"cart"`
	OrdersCount int          `json:"ordersCount"`
	LastSeen    string       `json:"lastSeen"`
}

// AdminSession dumps the caller's own session state for back-office debugging.
func AdminSession(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		resp := sessionResponse{
			ClientID:    s.ClientID,
			Cart:        s.Cart.Summary(),
			OrdersCount: s.Orders.Len(),
			LastSeen:    s.LastSeen().UTC().Format(http.TimeFormat),
		}
		if user, found := s.Auth.User(); found {
			resp.User = &user
		}
		responses.WriteSuccess(w, resp)
	}
}
