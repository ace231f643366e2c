package middleware

import (
	"net/http"

	"github.com/goldstore/storefront/api/responses"
	"github.com/goldstore/storefront/internal/authstate"
	"github.com/goldstore/storefront/pkg/enums"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
	"github.com/goldstore/storefront/pkg/logger"
)

// RequireRoles runs the client's route guard for the request path. Denials
// carry the guard's redirect in the error details.
func RequireRoles(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			if s == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client session missing"))
				return
			}

			decision := s.Guard.Check(r.Context(), r.URL.RequestURI(), roles...)
			switch decision.Outcome {
			case authstate.OutcomeAllow:
				next.ServeHTTP(w, r)
			case authstate.OutcomeRedirectLogin:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required").
					WithDetails(map[string]any{"redirect": decision.Redirect}))
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required").
					WithDetails(map[string]any{"redirect": decision.Redirect}))
			}
		})
	}
}
