package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velamart/cart-service/api/controllers"
	"github.com/velamart/cart-service/api/middleware"
	"github.com/velamart/cart-service/internal/cart"
	"github.com/velamart/cart-service/internal/catalog"
	"github.com/velamart/cart-service/pkg/config"
	"github.com/velamart/cart-service/pkg/db"
	"github.com/velamart/cart-service/pkg/logger"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	RedisPinger    db.Pinger
	SessionTokens  middleware.SessionTokens
	CartService    cart.Service
	CartStore      middleware.CartChecker
	CatalogService catalog.Service
	Sweeper        controllers.SweepRunner
	Metrics        *prometheus.Registry
}

// NewRouter assembles the chi router.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DBPinger, params.RedisPinger))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	cartSession := middleware.CartSession(middleware.CartSessionParams{
		Logger:     logg,
		Tokens:     params.SessionTokens,
		Carts:      params.CartService,
		Store:      params.CartStore,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.App.IsProd(),
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cart", controllers.CartCreate(params.CartService, params.SessionTokens, cfg.Session, cfg.App.IsProd(), logg))

		r.Group(func(r chi.Router) {
			r.Use(cartSession)
			r.Get("/cart", controllers.CartFetch(params.CartService, logg))
			r.Post("/cart/add_item", controllers.CartAddItem(params.CartService, logg))
			r.Delete("/cart/{productId}", controllers.CartRemoveItem(params.CartService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(params.CatalogService, logg))
			r.Post("/", controllers.ProductCreate(params.CatalogService, logg))
			r.Get("/{productId}", controllers.ProductFetch(params.CatalogService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(params.CatalogService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(params.CatalogService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/sweep", controllers.AdminSweep(params.Sweeper, logg))
	})

	return r
}
