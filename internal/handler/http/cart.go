package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/storefront/internal/domain"
	apperrors "github.com/openshelf/storefront/pkg/errors"
	"github.com/openshelf/storefront/pkg/httputil"
	"github.com/openshelf/storefront/pkg/validator"
)

// Cart is the aggregate surface the cart endpoints drive.
type Cart interface {
	Snapshot() domain.Cart
	Total() int64
	Add(ctx context.Context, product domain.Product, color, size string, quantity int) error
	UpdateQuantity(ctx context.Context, productID, color, size string, quantity int) error
	Remove(ctx context.Context, productID, color, size string) error
	Clear(ctx context.Context) error
}

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	cart    Cart
	catalog Catalog
	logger  *slog.Logger
}

func NewCartHandler(cart Cart, catalog Catalog, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a variant to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the JSON request body for changing a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// cartView is the cart response shape: lines plus derived totals.
type cartView struct {
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Total     int64             `json:"total"`
}

func (h *CartHandler) currentView() cartView {
	snap := h.cart.Snapshot()
	return cartView{
		Lines:     snap.Lines,
		ItemCount: snap.ItemCount,
		Total:     h.cart.Total(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.currentView()})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.cart.Add(r.Context(), product, req.Color, req.Size, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: h.currentView()})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}/{color}/{size}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	productID := chi.URLParam(r, "productId")
	err := h.cart.UpdateQuantity(r.Context(),
		productID, chi.URLParam(r, "color"), chi.URLParam(r, "size"),
		req.Quantity,
	)
	if err != nil {
		// A zero quantity means remove, and removing a line that is already
		// gone is the state the caller asked for.
		if req.Quantity <= 0 && errors.Is(err, apperrors.ErrNotFound) {
			h.logger.Info("cart line already absent", slog.String("product_id", productID))
			httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.currentView()})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.currentView()})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}/{color}/{size}.
// Removing a line that does not exist is a no-op success: the cart is
// already in the requested state.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	err := h.cart.Remove(r.Context(),
		productID, chi.URLParam(r, "color"), chi.URLParam(r, "size"),
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.logger.Info("cart line already absent", slog.String("product_id", productID))
			httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.currentView()})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.currentView()})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.currentView()})
}
