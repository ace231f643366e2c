package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/goldstore/storefront/api/responses"
	"github.com/goldstore/storefront/internal/notify"
	"github.com/goldstore/storefront/internal/session"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
	"github.com/goldstore/storefront/pkg/logger"
)

type sessionSource interface {
	Get(ctx context.Context, clientID string) (*session.Session, error)
	Release(s *session.Session)
}

// ClientSession resolves the X-Client-Id header into the client's session and
// attaches a notification recorder for the request.
func ClientSession(reg sessionSource, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := strings.TrimSpace(r.Header.Get(ClientIDHeader))
			if clientID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, ClientIDHeader+" header required"))
				return
			}

			s, err := reg.Get(r.Context(), clientID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			defer reg.Release(s)

			ctx := WithClientID(r.Context(), clientID)
			ctx = session.WithSession(ctx, s)
			ctx, _ = notify.WithRecorder(ctx)
			if logg != nil {
				ctx = logg.WithClientID(ctx, clientID)
				if user, ok := s.Auth.User(); ok {
					ctx = logg.WithUserID(ctx, user.ID.String())
					ctx = logg.WithActorRole(ctx, user.Role.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
