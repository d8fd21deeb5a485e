package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/pkg/httputil"
)

// Checkout places an order from the current cart.
type Checkout interface {
	Checkout(ctx context.Context) (domain.Order, error)
}

// OrderHistory lists the shopper's past orders.
type OrderHistory interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// OrdersHandler handles HTTP requests for order endpoints.
type OrdersHandler struct {
	checkout Checkout
	history  OrderHistory
	logger   *slog.Logger
}

func NewOrdersHandler(checkout Checkout, history OrderHistory, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{checkout: checkout, history: history, logger: logger}
}

// Place handles POST /api/v1/orders
func (h *OrdersHandler) Place(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Checkout(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// List handles GET /api/v1/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.history.ListOrders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}
