package authstate

import (
	"context"
	"net/url"
	"strings"

	"github.com/goldstore/storefront/pkg/auth"
	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/enums"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/metrics"
)

// Outcome is what the guard decided for a navigation.
type Outcome string

const (
	OutcomeAllow         Outcome = "allow"
	OutcomeRedirectLogin Outcome = "redirect_login"
	OutcomeRedirectHome  Outcome = "redirect_home"
)

// Decision is the guard verdict. Redirect is set for every outcome but allow.
type Decision struct {
	Outcome  Outcome    `json:"outcome"`
	Redirect string     `json:"redirect,omitempty"`
	Role     enums.Role `json:"role,omitempty"`
}

// Allowed reports whether navigation may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Guard gates destinations on the role claimed by the persisted token.
type Guard struct {
	state     *State
	superuser enums.Role
	login     string
	home      string
	logg      *logger.Logger
	metrics   *metrics.StoreMetrics
}

// NewGuard builds a guard over state using the auth routes from cfg.
func NewGuard(state *State, cfg config.AuthConfig, logg *logger.Logger, m *metrics.StoreMetrics) *Guard {
	g := &Guard{
		state:     state,
		superuser: enums.Role(strings.ToLower(strings.TrimSpace(cfg.SuperuserRole))),
		login:     cfg.LoginRoute,
		home:      cfg.HomeRoute,
		logg:      logg,
		metrics:   m,
	}
	if g.login == "" {
		g.login = "/login"
	}
	if g.home == "" {
		g.home = "/"
	}
	return g
}

// Check decides whether the current identity may reach destination. With no
// roles any authenticated identity is allowed. The superuser role bypasses
// the role list. A token that cannot be decoded ends the session.
func (g *Guard) Check(ctx context.Context, destination string, roles ...enums.Role) Decision {
	d := g.decide(ctx, destination, roles)
	g.metrics.IncGuardDecision(string(d.Outcome))
	return d
}

func (g *Guard) decide(ctx context.Context, destination string, roles []enums.Role) Decision {
	token := g.state.Token()
	if token == "" || !g.state.IsAuthenticated() {
		return g.toLogin(destination)
	}

	claims, err := auth.DecodeToken(token)
	if err != nil {
		if g.logg != nil {
			g.logg.Warn(g.logg.WithField(ctx, "reason", err.Error()), "discarding undecodable session token")
		}
		g.state.Logout(ctx)
		return g.toLogin(destination)
	}

	role := claims.Role
	if role == "" {
		if user, ok := g.state.User(); ok {
			role = user.Role
		}
	}
	role = enums.Role(strings.ToLower(strings.TrimSpace(string(role))))

	if g.superuser != "" && role == g.superuser {
		return Decision{Outcome: OutcomeAllow, Role: role}
	}
	if len(roles) == 0 {
		return Decision{Outcome: OutcomeAllow, Role: role}
	}
	for _, allowed := range roles {
		if role == allowed {
			return Decision{Outcome: OutcomeAllow, Role: role}
		}
	}
	return Decision{Outcome: OutcomeRedirectHome, Redirect: g.home, Role: role}
}

func (g *Guard) toLogin(destination string) Decision {
	redirect := g.login
	if destination = strings.TrimSpace(destination); destination != "" {
		sep := "?"
		if strings.Contains(redirect, "?") {
			sep = "&"
		}
		redirect += sep + "from=" + url.QueryEscape(destination)
	}
	return Decision{Outcome: OutcomeRedirectLogin, Redirect: redirect}
}
