package remote

import (
	"context"
	"net/http"

	"github.com/openshelf/storefront/internal/domain"
)

// PlaceOrder creates an order from the shopper's current server cart. The
// backend empties the cart on success.
func (c *Client) PlaceOrder(ctx context.Context) (domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", nil, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// ListOrders fetches the shopper's order history.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, "/api/v1/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
