package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goldstore/storefront/api/controllers"
	"github.com/goldstore/storefront/api/middleware"
	"github.com/goldstore/storefront/internal/session"
	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/enums"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/storage"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *session.Registry,
	backend storage.Storage,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"storage": backend,
		}))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ClientSession(registry, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(logg))
			r.Delete("/", controllers.CartClear(logg))
			r.Post("/items", controllers.CartAddItem(logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(logg))
			r.With(middleware.Idempotency(backend, logg)).Post("/complete", controllers.CartComplete(logg))
		})

		r.Get("/orders", controllers.OrdersList(logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(logg))
			r.Post("/logout", controllers.AuthLogout(logg))
			r.Get("/me", controllers.AuthMe(logg))
			r.Get("/guard", controllers.AuthGuard(logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.RoleAdmin))
			r.Get("/session", controllers.AdminSession(logg))
		})
	})

	return r
}
