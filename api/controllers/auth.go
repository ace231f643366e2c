package controllers

import (
	"net/http"
	"strings"

	"github.com/goldstore/storefront/api/responses"
	"github.com/goldstore/storefront/api/validators"
	"github.com/goldstore/storefront/pkg/enums"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/types"
)

type loginUser struct {
	ID    types.FlexID `json:"id" validate:"required"`
	Name  string       `json:"name" validate:"max=200"`
	Email string       `json:"email" validate:"omitempty,email"`
	Role  string       `json:"role" validate:"required,role"`
}

type loginRequest struct {
	Token string    `json:"token" validate:"omitempty,max=8192"`
	User  loginUser `json:"user"`
}

type identityResponse struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *types.User `json:"user"`
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}

// AuthLogin stores the token and user the backend issued at sign-in. The
// token may also arrive as an Authorization bearer header.
func AuthLogin(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := strings.TrimSpace(payload.Token)
		if token == "" {
			token = bearerToken(r)
		}
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required").
				WithDetails(map[string]any{"token": "is required"}))
			return
		}

		role, _ := enums.ParseRole(payload.User.Role)
		user := types.User{
			ID:    payload.User.ID,
			Name:  strings.TrimSpace(payload.User.Name),
			Email: strings.TrimSpace(payload.User.Email),
			Role:  role,
		}
		s.Auth.Login(r.Context(), token, user)
		responses.WriteSuccess(w, identityResponse{IsAuthenticated: true, User: &user})
	}
}

// AuthLogout forgets the persisted identity.
func AuthLogout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		s.Auth.Logout(r.Context())
		responses.WriteSuccess(w, identityResponse{IsAuthenticated: false})
	}
}

// AuthMe reports the current identity.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		resp := identityResponse{IsAuthenticated: s.Auth.IsAuthenticated()}
		if user, found := s.Auth.User(); found {
			resp.User = &user
		}
		responses.WriteSuccess(w, resp)
	}
}

// AuthGuard evaluates the route guard for ?from against ?roles and returns
// the decision without enforcing it.
func AuthGuard(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		roles, err := validators.ParseQueryRoles(r, "roles")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryPath(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, s.Guard.Check(r.Context(), from, roles...))
	}
}
