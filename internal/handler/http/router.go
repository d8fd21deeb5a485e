package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openshelf/storefront/internal/session"
	"github.com/openshelf/storefront/pkg/health"
	"github.com/openshelf/storefront/pkg/middleware"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Views     *ViewsHandler
	Cart      *CartHandler
	Favorites *FavoritesHandler
	Auth      *AuthHandler
	Orders    *OrdersHandler
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(h Handlers, healthHandler *health.Handler, store *session.Store, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(logger, store))
	r.Use(CORS)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Catalog browsing, no session required
		r.Route("/views", func(r chi.Router) {
			r.Get("/products", h.Views.ListProducts)
			r.Get("/products/{id}", h.Views.GetProduct)
			r.Get("/categories", h.Views.ListCategories)
			r.Get("/collections", h.Views.ListCollections)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)

			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productId}/{color}/{size}", h.Cart.UpdateItemQuantity)
			r.Delete("/items/{productId}/{color}/{size}", h.Cart.RemoveItem)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Favorites.List)
			r.Put("/{productId}", h.Favorites.Add)
			r.Delete("/{productId}", h.Favorites.Remove)
			r.Post("/{productId}/toggle", h.Favorites.Toggle)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.List)
			r.Post("/", h.Orders.Place)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/session", h.Auth.GetSession)
			r.Get("/profile", h.Auth.GetProfile)
			r.Put("/profile", h.Auth.UpdateProfile)
		})
	})

	return r
}
