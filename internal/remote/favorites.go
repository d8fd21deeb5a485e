package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/openshelf/storefront/internal/domain"
)

// favoriteWire is the backend's favorite entry shape.
type favoriteWire struct {
	ID        string                 `json:"id"`
	ProductID string                 `json:"product_id"`
	Product   domain.ProductSnapshot `json:"product"`
}

// ListFavorites fetches the shopper's full favorites list.
func (c *Client) ListFavorites(ctx context.Context) ([]domain.FavoriteEntry, error) {
	var wire []favoriteWire
	if err := c.get(ctx, "/api/v1/favorites", nil, &wire); err != nil {
		return nil, err
	}

	entries := make([]domain.FavoriteEntry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, domain.FavoriteEntry{
			ID:        w.ID,
			ProductID: w.ProductID,
			Snapshot:  w.Product,
		})
	}
	return entries, nil
}

// AddFavorite adds a product to the shopper's favorites.
func (c *Client) AddFavorite(ctx context.Context, productID string) error {
	body := map[string]any{"product_id": productID}
	return c.do(ctx, http.MethodPost, "/api/v1/favorites", nil, body, nil)
}

// RemoveFavorite removes a product from the shopper's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/favorites/"+url.PathEscape(productID), nil, nil, nil)
}
