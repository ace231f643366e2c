package controllers

import (
	"net/http"

	"github.com/goldstore/storefront/api/middleware"
	"github.com/goldstore/storefront/api/responses"
	"github.com/goldstore/storefront/internal/session"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
	"github.com/goldstore/storefront/pkg/logger"
)

func requireSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Session, bool) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client session missing"))
		return nil, false
	}
	return s, true
}
