package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farhanmaulana/cetakin-backend/api/controllers"
	"github.com/farhanmaulana/cetakin-backend/api/middleware"
	"github.com/farhanmaulana/cetakin-backend/internal/assets"
	authsvc "github.com/farhanmaulana/cetakin-backend/internal/auth"
	cartsvc "github.com/farhanmaulana/cetakin-backend/internal/cart"
	"github.com/farhanmaulana/cetakin-backend/internal/catalog"
	orderssvc "github.com/farhanmaulana/cetakin-backend/internal/orders"
	storefrontsvc "github.com/farhanmaulana/cetakin-backend/internal/storefront"
	"github.com/farhanmaulana/cetakin-backend/pkg/auth/session"
	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
	"github.com/farhanmaulana/cetakin-backend/pkg/redis"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Registry    *prometheus.Registry
	HealthDeps  map[string]controllers.Pinger
	Catalog     catalog.Service
	Storefront  storefrontsvc.Service
	Auth        authsvc.Service
	Assets      assets.Service
	Orders      orderssvc.Service
	Cart        cartsvc.Service
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

	linkPolicy := middleware.NewAuthRateLimitPolicy(
		"link",
		cfg.AuthRateLimit.LinkWindow,
		cfg.AuthRateLimit.LinkIPLimit,
		cfg.AuthRateLimit.LinkEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.HealthDeps))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/papers", controllers.CatalogPapers(deps.Catalog))
		r.Get("/storefront/categories", controllers.StorefrontCategories(deps.Storefront, logg))
		r.Get("/storefront/promotions", controllers.StorefrontPromotions(deps.Storefront, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(linkPolicy, deps.Redis, logg)).
				Post("/link", controllers.AuthRequestLink(deps.Auth, logg))
			r.Post("/verify", controllers.AuthVerifyLink(deps.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).
				Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Post("/assets/uploads", controllers.AssetsUpload(deps.Assets, cfg.Upload, logg))
			r.Post("/orders/quote", controllers.OrdersQuote(deps.Orders, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Post("/items", controllers.CartAdd(deps.Orders, deps.Cart, logg))
				r.Delete("/items/{orderNo}", controllers.CartRemove(deps.Cart, logg))
			})
		})
	})

	return r
}
