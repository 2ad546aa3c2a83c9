package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcommerce/groupcommerce-backend/api/controllers"
	cartcontrollers "github.com/gcommerce/groupcommerce-backend/api/controllers/carts"
	splitcontrollers "github.com/gcommerce/groupcommerce-backend/api/controllers/splits"
	"github.com/gcommerce/groupcommerce-backend/api/middleware"
	"github.com/gcommerce/groupcommerce-backend/internal/auth"
	"github.com/gcommerce/groupcommerce-backend/internal/orders"
	"github.com/gcommerce/groupcommerce-backend/internal/shoppingcontext"
	"github.com/gcommerce/groupcommerce-backend/pkg/auth/session"
	"github.com/gcommerce/groupcommerce-backend/pkg/config"
	"github.com/gcommerce/groupcommerce-backend/pkg/db"
	"github.com/gcommerce/groupcommerce-backend/pkg/logger"
	"github.com/gcommerce/groupcommerce-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Sessions       sessionManager
	AuthService    auth.Service
	Register       auth.RegisterService
	Orders         orders.Service
	AccessResolver cartcontrollers.AccessResolver
	SplitHandlers  *splitcontrollers.Handlers
	ContextManager *shoppingcontext.Manager
	Registry       *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Redis, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Register, deps.AuthService, logg))
		r.Post("/guest", controllers.AuthGuest(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/context", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(logg))
			r.Get("/", controllers.ContextCurrent(deps.ContextManager, logg))
			r.Put("/", controllers.ContextSet(deps.ContextManager, logg))
			r.Delete("/", controllers.ContextClear(deps.ContextManager, logg))
			r.Get("/default", controllers.ContextDefault(deps.ContextManager, logg))
			r.Put("/default", controllers.ContextSetDefault(deps.ContextManager, logg))
		})

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", cartcontrollers.Create(deps.Orders, deps.AuthService, logg))
			r.Get("/", cartcontrollers.List(deps.Orders, logg))
			r.Route("/{cartId}", func(r chi.Router) {
				r.Get("/", cartcontrollers.Detail(deps.Orders, deps.AccessResolver, logg))
				r.Post("/items", cartcontrollers.UpsertItem(deps.Orders, deps.AccessResolver, logg))
				r.Patch("/items/{itemId}", cartcontrollers.UpsertItem(deps.Orders, deps.AccessResolver, logg))
				r.Delete("/items/{itemId}", cartcontrollers.DeleteItem(deps.Orders, deps.AccessResolver, logg))
				r.Get("/checkout", cartcontrollers.CheckoutAccess(deps.Orders, deps.AccessResolver, logg))
				r.Post("/checkout", cartcontrollers.Checkout(deps.Orders, deps.AccessResolver, deps.AuthService, logg))
			})
		})

		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/", cartcontrollers.Detail(deps.Orders, deps.AccessResolver, logg))
			r.Post("/cancel", cartcontrollers.Cancel(deps.Orders, deps.AccessResolver, logg))
			if deps.SplitHandlers != nil {
				r.Route("/splits", func(r chi.Router) {
					r.Post("/", deps.SplitHandlers.Create)
					r.Route("/{splitId}", func(r chi.Router) {
						r.Get("/", deps.SplitHandlers.Detail)
						r.Patch("/", deps.SplitHandlers.UpdateQuantity)
						r.Delete("/", deps.SplitHandlers.Delete)
					})
				})
			}
		})
	})

	return r
}
