package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/pkg/httputil"
)

// Favorites is the set surface the favorites endpoints drive.
type Favorites interface {
	Entries() []domain.FavoriteEntry
	IsFavorite(productID string) bool
	Toggle(ctx context.Context, productID string) error
	Add(ctx context.Context, productID string) error
	Remove(ctx context.Context, productID string) error
}

// FavoritesHandler handles HTTP requests for favorites endpoints.
type FavoritesHandler struct {
	favorites Favorites
	logger    *slog.Logger
}

func NewFavoritesHandler(favorites Favorites, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, logger: logger}
}

type favoritesView struct {
	Entries []domain.FavoriteEntry `json:"entries"`
}

type favoriteStatus struct {
	ProductID  string `json:"product_id"`
	IsFavorite bool   `json:"is_favorite"`
}

// List handles GET /api/v1/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: favoritesView{Entries: h.favorites.Entries()},
	})
}

// Toggle handles POST /api/v1/favorites/{productId}/toggle
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.favorites.Toggle(r.Context(), productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: favoriteStatus{ProductID: productID, IsFavorite: h.favorites.IsFavorite(productID)},
	})
}

// Add handles PUT /api/v1/favorites/{productId}
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.favorites.Add(r.Context(), productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: favoriteStatus{ProductID: productID, IsFavorite: true},
	})
}

// Remove handles DELETE /api/v1/favorites/{productId}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.favorites.Remove(r.Context(), productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: favoriteStatus{ProductID: productID, IsFavorite: false},
	})
}
