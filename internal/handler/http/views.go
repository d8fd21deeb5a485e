package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/remote"
	"github.com/openshelf/storefront/internal/view"
	apperrors "github.com/openshelf/storefront/pkg/errors"
	"github.com/openshelf/storefront/pkg/httputil"
)

// Catalog is the read side the view endpoints consume.
type Catalog interface {
	Products(ctx context.Context, filter remote.ProductFilter) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Collections(ctx context.Context) ([]domain.Collection, error)
}

// ViewsHandler serves composed product views for the rendering layer.
type ViewsHandler struct {
	catalog  Catalog
	composer *view.Composer
	logger   *slog.Logger
}

func NewViewsHandler(catalog Catalog, composer *view.Composer, logger *slog.Logger) *ViewsHandler {
	return &ViewsHandler{catalog: catalog, composer: composer, logger: logger}
}

// ListProducts handles GET /api/v1/views/products
func (h *ViewsHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := remote.ProductFilter{
		Category:    r.URL.Query().Get("category"),
		Subcategory: r.URL.Query().Get("subcategory"),
		Collection:  r.URL.Query().Get("collection"),
	}
	if v := r.URL.Query().Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("featured must be true or false"), h.logger)
			return
		}
		filter.Featured = &featured
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("active must be true or false"), h.logger)
			return
		}
		filter.Active = &active
	}

	products, err := h.catalog.Products(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.composer.Cards(products)})
}

// GetProduct handles GET /api/v1/views/products/{id}. The optional color and
// size query parameters carry the shopper's in-progress variant selection.
func (h *ViewsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sel := domain.Selection{
		Color: r.URL.Query().Get("color"),
		Size:  r.URL.Query().Get("size"),
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.composer.Detail(product, sel)})
}

// ListCategories handles GET /api/v1/views/categories
func (h *ViewsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// ListCollections handles GET /api/v1/views/collections
func (h *ViewsHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.catalog.Collections(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: collections})
}
