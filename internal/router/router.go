package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Menu  *handler.MenuHandler
	Cart  *handler.CartHandler
	Order *handler.OrderHandler
	Admin *handler.AdminHandler
}

// Options configures authentication and instrumentation.
type Options struct {
	APIKey   string
	Resolver middleware.ActorResolver
	Metrics  *metrics.Metrics
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> RealIP -> Logging -> Metrics -> CORS -> APIKeyAuth -> Identity
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(opts.APIKey, logger))
	r.Use(middleware.Identity(opts.Resolver, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.Menu.Categories)
		r.Get("/menu", h.Menu.List)
		r.Get("/menu/{id}", h.Menu.GetByID)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{itemId}", h.Cart.SetQuantity)
			r.Delete("/items/{itemId}", h.Cart.RemoveItem)
		})

		r.Post("/checkout", h.Order.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Order.History)
			r.Post("/{id}/cancel", h.Order.Cancel)
			r.Get("/{id}/countdown", h.Order.Countdown)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logger))

			r.Get("/orders", h.Admin.ListOrders)
			r.Put("/orders/{id}/status", h.Admin.TransitionOrder)
			r.Post("/menu", h.Admin.CreateMenuItem)
			r.Put("/menu/{id}", h.Admin.UpdateMenuItem)
			r.Delete("/menu/{id}", h.Admin.DeleteMenuItem)
			r.Post("/categories", h.Admin.CreateCategory)
			r.Put("/categories/{id}", h.Admin.UpdateCategory)
			r.Delete("/categories/{id}", h.Admin.DeleteCategory)
			r.Get("/users", h.Admin.ListUsers)
			r.Put("/users/{id}/role", h.Admin.SetRole)
		})
	})

	return r
}
