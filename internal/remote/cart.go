package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/openshelf/storefront/internal/domain"
)

// cartLineWire is the backend's cart line shape.
type cartLineWire struct {
	ID        string                 `json:"id"`
	ProductID string                 `json:"product_id"`
	Color     string                 `json:"color"`
	Size      string                 `json:"size"`
	Quantity  int                    `json:"quantity"`
	UnitPrice int64                  `json:"unit_price"`
	Product   domain.ProductSnapshot `json:"product"`
}

// cartWire accepts both shapes the cart endpoint is known to return: a
// wrapper object with items and a server-computed summary, or a bare item
// list. Normalized to domain.Cart here and nowhere else.
type cartWire struct {
	Items   []cartLineWire `json:"items"`
	Summary *struct {
		ItemCount int `json:"item_count"`
	} `json:"summary"`
}

func normalizeCart(raw json.RawMessage) (domain.Cart, error) {
	var wrapper cartWire
	if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper.Items == nil {
		// Bare list fallback.
		var bare []cartLineWire
		if err := json.Unmarshal(raw, &bare); err != nil {
			return domain.Cart{}, fmt.Errorf("unrecognized cart payload: %w", err)
		}
		wrapper = cartWire{Items: bare}
	}

	cart := domain.Cart{Lines: make([]domain.CartLine, 0, len(wrapper.Items))}
	for _, item := range wrapper.Items {
		line := domain.CartLine{
			LineID:    item.ID,
			ProductID: item.ProductID,
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Snapshot:  item.Product,
		}
		if line.UnitPrice == 0 {
			line.UnitPrice = line.Snapshot.UnitPrice()
		}
		cart.Lines = append(cart.Lines, line)
	}

	if wrapper.Summary != nil {
		cart.ItemCount = wrapper.Summary.ItemCount
	} else {
		for _, l := range cart.Lines {
			cart.ItemCount += l.Quantity
		}
	}
	return cart, nil
}

// GetCart fetches the shopper's cart.
func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/v1/cart", nil, &raw); err != nil {
		return domain.Cart{}, err
	}
	return normalizeCart(raw)
}

// AddCartItem adds a (product, color, size, quantity) to the server cart.
func (c *Client) AddCartItem(ctx context.Context, productID, color, size string, quantity int) error {
	body := map[string]any{
		"product_id": productID,
		"color":      color,
		"size":       size,
		"quantity":   quantity,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/cart/items", nil, body, nil)
}

// UpdateCartItem updates a line's quantity by its server-assigned line ID.
func (c *Client) UpdateCartItem(ctx context.Context, lineID string, quantity int) error {
	body := map[string]any{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "/api/v1/cart/items/"+url.PathEscape(lineID), nil, body, nil)
}

// RemoveCartItem removes a line by its server-assigned line ID.
func (c *Client) RemoveCartItem(ctx context.Context, lineID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+url.PathEscape(lineID), nil, nil, nil)
}

// ClearCart removes every line from the server cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart", nil, nil, nil)
}
