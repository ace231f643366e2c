package controllers

import (
	"net/http"

	"github.com/goldstore/storefront/api/responses"
	"github.com/goldstore/storefront/pkg/logger"
)

// OrdersList returns the local order history, newest first.
func OrdersList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": s.Orders.List()})
	}
}
