package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidrangel/poscenter-gateway/api/controllers"
	"github.com/davidrangel/poscenter-gateway/api/middleware"
	cartpkg "github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/internal/catalog"
	checkoutsvc "github.com/davidrangel/poscenter-gateway/internal/checkout"
	"github.com/davidrangel/poscenter-gateway/internal/directory"
	"github.com/davidrangel/poscenter-gateway/pkg/config"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
	"github.com/davidrangel/poscenter-gateway/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	CartStore      *cartpkg.Store
	Catalog        catalog.Service
	Directory      directory.Service
	Checkout       checkoutsvc.Service
	Orders         controllers.OrdersUpstream
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsHandler, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(logg))

		r.Get("/products", controllers.CatalogProducts(deps.Catalog, logg))
		r.Get("/categories", controllers.CatalogCategories(deps.Catalog, logg))
		r.Post("/catalog/refresh", controllers.CatalogRefresh(deps.Catalog, logg))

		r.Get("/customers", controllers.DirectoryCustomers(deps.Directory, logg))
		r.Get("/suppliers", controllers.DirectorySuppliers(deps.Directory, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrdersGet(deps.Orders, logg))
			r.Get("/{orderId}/receipt", controllers.OrderReceipt(deps.Orders, deps.Directory, logg))
		})

		r.Route("/carts", func(r chi.Router) {
			mountCartRoutes(r, deps, cartpkg.FlowOrder)
		})
		r.Route("/purchase-carts", func(r chi.Router) {
			mountCartRoutes(r, deps, cartpkg.FlowPurchase)
		})
	})

	return r
}

// mountCartRoutes wires the shared cart surface for one flow. The order flow
// sets its party through /customer, the purchase flow through /supplier.
func mountCartRoutes(r chi.Router, deps Deps, flow cartpkg.Flow) {
	logg := deps.Logger
	store := deps.CartStore

	r.Post("/", controllers.CartCreate(store, flow, logg))
	r.Route("/{cartId}", func(r chi.Router) {
		r.Get("/", controllers.CartGet(store, flow, logg))
		r.Delete("/", controllers.CartDelete(store, flow, logg))

		if flow == cartpkg.FlowPurchase {
			r.Put("/supplier", controllers.CartSetParty(store, flow, deps.Directory, logg))
		} else {
			r.Put("/customer", controllers.CartSetParty(store, flow, deps.Directory, logg))
		}

		r.Post("/items", controllers.CartAddItem(store, flow, deps.Catalog, logg))
		r.Route("/items/{productId}", func(r chi.Router) {
			r.Put("/quantity", controllers.CartUpdateQuantity(store, flow, logg))
			r.Put("/discount", controllers.CartUpdateDiscount(store, flow, logg))
			r.Delete("/", controllers.CartRemoveItem(store, flow, logg))
		})

		r.Put("/delivery", controllers.CartSetDelivery(store, flow, logg))
		r.Post("/checkout", controllers.CartCheckout(store, flow, deps.Checkout, logg))
	})
}
